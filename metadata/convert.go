package metadata

import (
	"math"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/erraggy/oasmeta/contract"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Date layouts accepted for string parameters with a date or date-time format.
const (
	dateLayout = "2006-01-02"
)

// Convert coerces a raw request value to the declared type.
//
// Conversion never fails. A value that does not fit its declaration is
// returned unchanged, except for integer and number declarations where a
// non-numeric value becomes NaN. Rejecting such values is left to validation.
//
// A nil raw value stays nil. File declarations pass the raw value through.
func Convert(raw any, info contract.TypeInfo) any {
	if raw == nil {
		return nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}

	switch strings.ToLower(info.Type) {
	case contract.TypeArray:
		return convertArray(raw, info)
	case contract.TypeBoolean:
		return convertBoolean(raw)
	case contract.TypeInteger:
		return convertInteger(raw)
	case contract.TypeNumber:
		return convertNumber(raw)
	case contract.TypeObject:
		return convertObject(raw)
	case contract.TypeString:
		return convertString(raw, info.Format)
	default:
		// file, unknown and missing types
		return raw
	}
}

func convertArray(raw any, info contract.TypeInfo) any {
	var items []any

	switch v := raw.(type) {
	case string:
		items = splitCollection(v, info.CollectionFormat)
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	case []any:
		items = v
	case []*multipart.FileHeader:
		items = make([]any, len(v))
		for i, f := range v {
			items[i] = f
		}
	default:
		items = []any{raw}
	}

	itemInfo := contract.TypeInfo{Type: contract.TypeString}
	if info.Items != nil {
		itemInfo = *info.Items
	}

	converted := make([]any, len(items))
	for i, item := range items {
		converted[i] = Convert(item, itemInfo)
	}
	return converted
}

// splitCollection splits a single string carrying several values. The csv
// format also accepts a JSON array literal.
func splitCollection(s, format string) []any {
	var parts []string

	switch strings.ToLower(format) {
	case "", contract.CollectionCSV:
		if strings.HasPrefix(strings.TrimSpace(s), "[") {
			var decoded []any
			if err := json.UnmarshalFromString(s, &decoded); err == nil {
				return decoded
			}
		}
		parts = strings.Split(s, ",")
	case contract.CollectionSSV:
		parts = strings.Split(s, " ")
	case contract.CollectionTSV:
		parts = strings.Split(s, "\t")
	case contract.CollectionPipes:
		parts = strings.Split(s, "|")
	default:
		// multi arrives as repeated values; a lone string is one item
		return []any{s}
	}

	items := make([]any, len(parts))
	for i, p := range parts {
		items[i] = p
	}
	return items
}

func convertBoolean(raw any) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	default:
		return raw
	}
}

func convertInteger(raw any) any {
	f, ok := toFloat(raw)
	if !ok {
		return math.NaN()
	}
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<63 {
		return int64(f)
	}
	return f
}

func convertNumber(raw any) any {
	f, ok := toFloat(raw)
	if !ok {
		return math.NaN()
	}
	return f
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		// ParseFloat also accepts "Inf", "Infinity" and "NaN".
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case jsoniter.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func convertObject(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	var decoded any
	if err := json.UnmarshalFromString(s, &decoded); err != nil {
		return raw
	}
	return decoded
}

func convertString(raw any, format string) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	switch format {
	case "date":
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t
		}
	case "date-time":
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return raw
}
