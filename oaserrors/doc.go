// Package oaserrors provides structured error types for the oasmeta module.
//
// Import path: github.com/erraggy/oasmeta/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between failures that must stop a process at
// startup and failures that only terminate a single request.
//
// # Error Types
//
//   - [ConfigError]: a missing or malformed contract handed to cache construction,
//     or an invalid option. Raised before any request is served.
//   - [ParseError]: a contract document that cannot be decoded, or a malformed
//     request body, query string or multipart payload.
//   - [ResourceLimitError]: a request payload exceeding a configured limit.
//
// # Sentinel Errors
//
//   - [ErrConfig]: Matches any [ConfigError]
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//
// # HTTP Status
//
// [StatusCode] maps an error chain onto the status a middleware should answer
// with: 413 for resource limits, 400 for parse errors and 500 for anything else.
//
//	req, err := mw.Process(req)
//	if err != nil {
//	    http.Error(w, err.Error(), oaserrors.StatusCode(err))
//	    return
//	}
package oaserrors
