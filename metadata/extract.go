package metadata

import (
	"net/http"
	"strings"

	"github.com/erraggy/oasmeta/contract"
)

// extract fills md.Params from the parsed request, one entry per composed
// parameter in order. Parameters sharing a name overwrite earlier ones.
func (p *Pipeline) extract(md *Metadata, match *Match, r *http.Request, state *RequestState, log Logger) {
	for _, cp := range match.Operation.Parameters {
		param := cp.Parameter
		info := param.TypeInfo()

		raw := rawValue(param, info, match, r, state)
		value := raw
		if !info.IsFile() {
			value = Convert(raw, info)
		}

		log.Debug("extracted parameter",
			"name", param.Name, "in", param.In, "type", info.Type, "format", info.Format, "present", raw != nil)

		md.Params[param.Name] = &ParamValue{
			Path:          cp.Path,
			Schema:        param,
			OriginalValue: raw,
			Value:         value,
		}
	}
}

// rawValue returns the unconverted value of param, or nil when the request
// does not carry one.
func rawValue(param *contract.Parameter, info contract.TypeInfo, match *Match, r *http.Request, state *RequestState) any {
	switch param.In {
	case contract.InPath:
		if v, ok := match.Captures[param.Name]; ok {
			return v
		}
	case contract.InQuery:
		if v, ok := state.Query()[param.Name]; ok {
			return v
		}
	case contract.InHeader:
		if values := r.Header.Values(param.Name); len(values) > 0 {
			return strings.Join(values, ", ")
		}
	case contract.InBody:
		return state.Body()
	case contract.InForm, contract.InFormData:
		if info.IsFile() {
			if f, ok := state.Files()[param.Name]; ok && f != nil {
				return f
			}
			return nil
		}
		if fields, ok := state.Body().(map[string]any); ok {
			if v, ok := fields[param.Name]; ok {
				return v
			}
		}
	}
	return nil
}
