package grading

import (
	"encoding/json"
	"strconv"
	"strings"
)

// unwrap decodes raw JSON into the generic shapes handled below. Anything
// that fails to decode becomes nil, which every strategy treats as unanswered.
func unwrap(raw interface{}) interface{} {
	var b []byte
	switch t := raw.(type) {
	case json.RawMessage:
		b = t
	case []byte:
		b = t
	default:
		return raw
	}
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	return v
}

// toStringSlice accepts the shapes JSON decoding and Go callers produce.
// Non-string elements are skipped.
func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := scalarString(e); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func toStringMap(v interface{}) (map[string]string, bool) {
	switch t := v.(type) {
	case map[string]string:
		return t, true
	case map[string]interface{}:
		out := make(map[string]string, len(t))
		for k, e := range t {
			if s, ok := scalarString(e); ok {
				out[k] = s
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// scalarString turns a label or id into its string form. Integral numbers
// are accepted because JSON clients often send numeric ids.
func scalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if t != float64(int64(t)) {
			return "", false
		}
		return strconv.FormatInt(int64(t), 10), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		if _, err := t.Int64(); err != nil {
			return "", false
		}
		return t.String(), true
	default:
		return "", false
	}
}
