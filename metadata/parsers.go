package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/erraggy/oasmeta/contract"
	"github.com/erraggy/oasmeta/internal/httputil"
	"github.com/erraggy/oasmeta/oaserrors"
)

// ParserKind identifies one upstream request parser.
type ParserKind int

const (
	// ParserNone means the parameter needs no parser (path and header
	// values) or is left to multipart handling.
	ParserNone ParserKind = iota
	// ParserQuery parses the query string.
	ParserQuery
	// ParserBody parses urlencoded and JSON bodies.
	ParserBody
	// ParserText reads the body as text.
	ParserText
	// ParserMultipart parses multipart/form-data fields and files.
	ParserMultipart
)

// String returns the name used in logs and metric labels.
func (k ParserKind) String() string {
	switch k {
	case ParserQuery:
		return "query"
	case ParserBody:
		return "body"
	case ParserText:
		return "text"
	case ParserMultipart:
		return "multipart"
	default:
		return "none"
	}
}

// Parser populates one part of a request's RequestState.
//
// Implementations must be safe for concurrent use; one instance serves every
// request. Parse is only called when the state the parser fills is still
// unset, and must set it (even to nil) on success.
type Parser interface {
	Kind() ParserKind
	Parse(r *http.Request, state *RequestState, plan *Plan) error
}

// RequestState holds the parsed parts of one request. It lives in the request
// context so that a request processed twice is parsed once.
//
// The query lane and the body lane of the pipeline write disjoint fields.
type RequestState struct {
	query       map[string]any
	queryParsed bool

	body       any
	bodyParsed bool

	files       map[string]*multipart.FileHeader
	filesParsed bool
}

// Query returns the parsed query string.
func (s *RequestState) Query() map[string]any { return s.query }

// QueryParsed reports whether the query string was parsed.
func (s *RequestState) QueryParsed() bool { return s.queryParsed }

// SetQuery stores the parsed query string.
func (s *RequestState) SetQuery(q map[string]any) {
	s.query = q
	s.queryParsed = true
}

// Body returns the parsed body: a map for forms, the decoded value for JSON,
// a string for text bodies, or nil.
func (s *RequestState) Body() any { return s.body }

// BodyParsed reports whether the body was parsed.
func (s *RequestState) BodyParsed() bool { return s.bodyParsed }

// SetBody stores the parsed body.
func (s *RequestState) SetBody(b any) {
	s.body = b
	s.bodyParsed = true
}

// Files returns the uploaded files keyed by field name.
func (s *RequestState) Files() map[string]*multipart.FileHeader { return s.files }

// FilesParsed reports whether multipart files were parsed.
func (s *RequestState) FilesParsed() bool { return s.filesParsed }

// SetFiles stores the uploaded files.
func (s *RequestState) SetFiles(f map[string]*multipart.FileHeader) {
	s.files = f
	s.filesParsed = true
}

func (s *RequestState) parsed(k ParserKind) bool {
	switch k {
	case ParserQuery:
		return s.queryParsed
	case ParserBody, ParserText:
		return s.bodyParsed
	case ParserMultipart:
		return s.filesParsed
	default:
		return true
	}
}

// stateFor returns the state attached to r, attaching a new one when r has
// none. Form data parsed by an earlier handler through net/http is reused.
func stateFor(r *http.Request) (*RequestState, *http.Request) {
	if s, ok := r.Context().Value(stateKey).(*RequestState); ok {
		return s, r
	}

	s := &RequestState{}
	switch {
	case r.MultipartForm != nil:
		s.SetBody(foldValues(r.MultipartForm.Value))
		s.SetFiles(firstFiles(r.MultipartForm.File))
	case r.PostForm != nil && httputil.IsForm(httputil.MediaType(r.Header.Get("Content-Type"))):
		s.SetBody(foldValues(r.PostForm))
	}
	return s, r.WithContext(context.WithValue(r.Context(), stateKey, s))
}

// MultipartField is a file field accepted by the multipart parser.
type MultipartField struct {
	Name     string
	MaxCount int
}

// Plan lists the parsers one request needs.
type Plan struct {
	// Parsers holds each required kind once, in first-needed order.
	Parsers []ParserKind
	// Fields restricts the multipart parser to these file fields. When empty
	// and the request is multipart, only text fields are accepted.
	Fields []MultipartField
}

// parserCase is the input of the parser capability table.
type parserCase struct {
	In         string
	Type       contract.TypeInfo
	Structured bool
	Multipart  bool
}

// parserRule maps parameters to the parser their value comes from.
type parserRule struct {
	name string
	in   []string
	when func(parserCase) bool
	kind ParserKind
}

var bodyLocations = []string{contract.InBody, contract.InForm, contract.InFormData}

// parserRules is evaluated in order; the first rule that applies decides.
var parserRules = []parserRule{
	{
		name: "multipart deferred",
		in:   bodyLocations,
		when: func(c parserCase) bool { return c.Type.IsFile() || c.Multipart },
		kind: ParserNone,
	},
	{
		name: "form field",
		in:   []string{contract.InForm, contract.InFormData},
		kind: ParserBody,
	},
	{
		name: "structured body",
		in:   []string{contract.InBody},
		when: func(c parserCase) bool { return c.Structured },
		kind: ParserBody,
	},
	{
		name: "text body",
		in:   []string{contract.InBody},
		kind: ParserText,
	},
	{
		name: "query",
		in:   []string{contract.InQuery},
		kind: ParserQuery,
	},
}

func selectParser(c parserCase) ParserKind {
	for _, rule := range parserRules {
		if !containsString(rule.in, c.In) {
			continue
		}
		if rule.when == nil || rule.when(c) {
			return rule.kind
		}
	}
	return ParserNone
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// PlanRequest selects the parsers needed to extract params from a request
// with the given Content-Type. definitions names the document's models; a
// body parameter typed by one of them is structured.
func PlanRequest(params []ComposedParameter, contentType string, definitions map[string]*contract.Schema) *Plan {
	multipartRequest := httputil.IsMultipart(httputil.MediaType(contentType))
	plan := &Plan{}

	for _, cp := range params {
		p := cp.Parameter
		info := p.TypeInfo()
		_, model := definitions[info.Type]

		kind := selectParser(parserCase{
			In:         p.In,
			Type:       info,
			Structured: info.IsStructured() || model,
			Multipart:  multipartRequest,
		})
		if kind != ParserNone && !containsKind(plan.Parsers, kind) {
			plan.Parsers = append(plan.Parsers, kind)
		}

		// Array-of-file parameters cannot be declared, so one file per field.
		if containsString(bodyLocations, p.In) && info.IsFile() {
			plan.Fields = append(plan.Fields, MultipartField{Name: p.Name, MaxCount: 1})
		}
	}

	if len(plan.Fields) > 0 || multipartRequest {
		plan.Parsers = append(plan.Parsers, ParserMultipart)
	}

	return plan
}

func containsKind(kinds []ParserKind, k ParserKind) bool {
	for _, v := range kinds {
		if v == k {
			return true
		}
	}
	return false
}

// defaultParsers returns the built-in parser for every kind.
func defaultParsers(cfg *config) map[ParserKind]Parser {
	parsers := map[ParserKind]Parser{
		ParserQuery:     queryParser{logger: cfg.logger},
		ParserBody:      bodyParser{maxSize: cfg.maxBodySize},
		ParserText:      textParser{maxSize: cfg.maxBodySize},
		ParserMultipart: multipartParser{maxMemory: cfg.maxMultipartMemory, maxSize: cfg.maxMultipartSize, logger: cfg.logger},
	}
	for _, p := range cfg.parsers {
		parsers[p.Kind()] = p
	}
	return parsers
}

type queryParser struct {
	logger Logger
}

func (queryParser) Kind() ParserKind { return ParserQuery }

// Parse reads the query string leniently: pairs with bad escapes are dropped
// and the rest is kept.
func (p queryParser) Parse(r *http.Request, state *RequestState, _ *Plan) error {
	values, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		p.logger.Debug("ignoring malformed query pairs", "error", err)
	}
	state.SetQuery(foldValues(values))
	return nil
}

type bodyParser struct {
	maxSize int64
}

func (bodyParser) Kind() ParserKind { return ParserBody }

// Parse decodes urlencoded and JSON bodies. Bodies of any other media type
// are left unread.
func (p bodyParser) Parse(r *http.Request, state *RequestState, _ *Plan) error {
	mediaType := httputil.MediaType(r.Header.Get("Content-Type"))
	if !hasBody(r) || (!httputil.IsForm(mediaType) && !httputil.IsJSON(mediaType)) {
		state.SetBody(nil)
		return nil
	}

	data, err := readBody(r, p.maxSize)
	if err != nil {
		return err
	}

	if httputil.IsForm(mediaType) {
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return &oaserrors.ParseError{Path: "body", Message: "invalid urlencoded body", Cause: err}
		}
		state.SetBody(foldValues(values))
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		state.SetBody(nil)
		return nil
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return &oaserrors.ParseError{Path: "body", Message: "invalid JSON body", Cause: err}
	}
	state.SetBody(decoded)
	return nil
}

type textParser struct {
	maxSize int64
}

func (textParser) Kind() ParserKind { return ParserText }

// Parse reads a body of any media type as text, decoding it from the declared
// charset.
func (p textParser) Parse(r *http.Request, state *RequestState, _ *Plan) error {
	if !hasBody(r) {
		state.SetBody(nil)
		return nil
	}

	data, err := readBody(r, p.maxSize)
	if err != nil {
		return err
	}

	charset := strings.ToLower(httputil.Charset(r.Header.Get("Content-Type")))
	if charset != "" && charset != "utf-8" && charset != "utf8" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return &oaserrors.ParseError{Path: "body", Message: fmt.Sprintf("unsupported charset %q", charset), Cause: err}
		}
		if data, err = enc.NewDecoder().Bytes(data); err != nil {
			return &oaserrors.ParseError{Path: "body", Message: fmt.Sprintf("invalid %s text", charset), Cause: err}
		}
	}

	state.SetBody(string(data))
	return nil
}

type multipartParser struct {
	maxMemory int64
	maxSize   int64
	logger    Logger
}

func (multipartParser) Kind() ParserKind { return ParserMultipart }

// Parse reads multipart/form-data text fields into the body and files into
// the file map. Files outside plan.Fields, or more files than a field allows,
// are rejected. Requests of other media types are skipped.
//
// File parts beyond maxMemory are spooled to temporary files; callers remove
// them with the form (Handler does so once the wrapped handler returns).
func (p multipartParser) Parse(r *http.Request, state *RequestState, plan *Plan) error {
	if !httputil.IsMultipart(httputil.MediaType(r.Header.Get("Content-Type"))) {
		state.SetFiles(nil)
		return nil
	}

	if r.ContentLength > p.maxSize {
		return &oaserrors.ResourceLimitError{ResourceType: "multipart_size", Limit: p.maxSize, Actual: r.ContentLength, Message: "multipart form too large"}
	}
	r.Body = http.MaxBytesReader(nil, r.Body, p.maxSize)

	if err := r.ParseMultipartForm(p.maxMemory); err != nil {
		p.removeForm(r)
		var maxBytes *http.MaxBytesError
		switch {
		case errors.Is(err, multipart.ErrMessageTooLarge):
			return &oaserrors.ResourceLimitError{ResourceType: "multipart_size", Limit: p.maxMemory, Message: "multipart form too large"}
		case errors.As(err, &maxBytes):
			return &oaserrors.ResourceLimitError{ResourceType: "multipart_size", Limit: maxBytes.Limit, Message: "multipart form too large"}
		default:
			return &oaserrors.ParseError{Path: "multipart", Message: "invalid multipart body", Cause: err}
		}
	}

	allowed := make(map[string]int, len(plan.Fields))
	for _, f := range plan.Fields {
		allowed[f.Name] = f.MaxCount
	}
	for field, headers := range r.MultipartForm.File {
		limit, ok := allowed[field]
		if !ok {
			p.removeForm(r)
			return &oaserrors.ParseError{Path: "multipart", Message: fmt.Sprintf("unexpected file field %q", field)}
		}
		if len(headers) > limit {
			p.removeForm(r)
			return &oaserrors.ParseError{Path: "multipart", Message: fmt.Sprintf("too many files for field %q", field)}
		}
	}

	state.SetBody(foldValues(r.MultipartForm.Value))
	state.SetFiles(firstFiles(r.MultipartForm.File))
	return nil
}

func (p multipartParser) removeForm(r *http.Request) {
	removeMultipartForm(r, p.logger)
}

// removeMultipartForm deletes the temporary files of r's multipart form.
func removeMultipartForm(r *http.Request, logger Logger) {
	if r.MultipartForm == nil {
		return
	}
	if err := r.MultipartForm.RemoveAll(); err != nil {
		logger.Error("failed to remove multipart temporary files", "path", r.URL.Path, "error", err)
	}
	r.MultipartForm = nil
}

// hasBody reports whether r carries a body; a chunked body has an unknown
// length and counts.
func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

// readBody reads at most limit bytes of r's body and leaves a replay of the
// bytes read in place for downstream handlers.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.ContentLength > limit {
		return nil, &oaserrors.ResourceLimitError{ResourceType: "body_size", Limit: limit, Actual: r.ContentLength, Message: "request body too large"}
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, &oaserrors.ResourceLimitError{ResourceType: "body_size", Limit: maxBytes.Limit, Message: "request body too large"}
		}
		return nil, &oaserrors.ParseError{Path: "body", Message: "failed to read request body", Cause: err}
	}
	if int64(len(data)) > limit {
		return nil, &oaserrors.ResourceLimitError{ResourceType: "body_size", Limit: limit, Message: "request body too large"}
	}

	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// foldValues flattens url.Values: a key seen once maps to its string and a
// repeated key to all of its values. Bracket keys ("ids[]") fold into their
// base name and always map to a list.
func foldValues(values map[string][]string) map[string]any {
	merged := make(map[string][]string, len(values))
	lists := make(map[string]bool)
	for key, vs := range values {
		name := key
		if strings.HasSuffix(key, "[]") {
			name = strings.TrimSuffix(key, "[]")
			lists[name] = true
		}
		merged[name] = append(merged[name], vs...)
	}

	folded := make(map[string]any, len(merged))
	for name, vs := range merged {
		if len(vs) == 1 && !lists[name] {
			folded[name] = vs[0]
			continue
		}
		folded[name] = vs
	}
	return folded
}

func firstFiles(files map[string][]*multipart.FileHeader) map[string]*multipart.FileHeader {
	first := make(map[string]*multipart.FileHeader, len(files))
	for field, headers := range files {
		if len(headers) > 0 {
			first[field] = headers[0]
		}
	}
	return first
}
