// Package httputil provides HTTP method constants and media type helpers.
package httputil

import (
	"mime"
	"strings"
)

// HTTP Method Constants, lowercase as they appear in a contract's path items.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
)

// Methods is the fixed set of methods a path item may declare, in the order
// operations are indexed.
var Methods = []string{
	MethodGet,
	MethodPut,
	MethodPost,
	MethodDelete,
	MethodOptions,
	MethodHead,
	MethodPatch,
}

// Media types recognised by the request parsers.
const (
	MediaTypeJSON      = "application/json"
	MediaTypeForm      = "application/x-www-form-urlencoded"
	MediaTypeMultipart = "multipart/form-data"
	MediaTypeText      = "text/plain"
)

// MediaType returns the lowercased media type of a Content-Type header value
// without its parameters. An empty or unparsable header yields "".
func MediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Fall back to the text before the first ';' so that a header with a
		// broken parameter list still routes to the right parser.
		mt = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
		if !strings.Contains(mt, "/") {
			return ""
		}
	}
	return strings.ToLower(mt)
}

// Charset returns the charset parameter of a Content-Type header value, or "".
func Charset(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// IsJSON reports whether mediaType is application/json or a +json suffix type.
func IsJSON(mediaType string) bool {
	return mediaType == MediaTypeJSON || strings.HasSuffix(mediaType, "+json")
}

// IsForm reports whether mediaType is a urlencoded form.
func IsForm(mediaType string) bool {
	return mediaType == MediaTypeForm
}

// IsMultipart reports whether mediaType is multipart/form-data.
func IsMultipart(mediaType string) bool {
	return mediaType == MediaTypeMultipart
}

// IsValidMediaType validates a media type string according to RFC 2045/2046.
// Handles wildcards (*/* and type/*) and prevents invalid combinations (*/subtype).
func IsValidMediaType(mediaType string) bool {
	if mediaType == "*/*" {
		return true
	}

	if strings.HasSuffix(mediaType, "/*") {
		// Check format: type/* (e.g., application/*)
		parts := strings.Split(mediaType, "/")
		if len(parts) == 2 && parts[0] != "" && parts[0] != "*" {
			return true
		}
		return false
	}

	// Use standard MIME type parser for regular types
	_, _, err := mime.ParseMediaType(mediaType)
	return err == nil
}
