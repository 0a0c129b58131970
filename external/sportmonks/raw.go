package sportmonks

import (
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
)

// Raw is one untyped provider record. Mappers walk it with the ordered
// accessors below instead of decoding into fixed structs, because the
// provider varies field shapes between plans and includes.
type Raw map[string]any

func decodeRaw(data []byte) (Raw, error) {
	var out map[string]any
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return Raw(out), nil
}

// Encode renders the record back to canonical JSON. Used to preserve
// source payloads verbatim in extra/raw columns and as hash input, so
// map keys must come out sorted (ConfigStd matches encoding/json).
func (r Raw) Encode() string {
	if r == nil {
		return ""
	}
	data, err := sonic.ConfigStd.Marshal(map[string]any(r))
	if err != nil {
		return ""
	}
	return string(data)
}

func (r Raw) Map(key string) Raw {
	if r == nil {
		return nil
	}
	if m, ok := r[key].(map[string]any); ok {
		return Raw(m)
	}
	return nil
}

func (r Raw) Slice(key string) []Raw {
	if r == nil {
		return nil
	}
	items, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Raw, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Raw(m))
		}
	}
	return out
}

func (r Raw) String(key string) string {
	if r == nil {
		return ""
	}
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (r Raw) Bool(key string) bool {
	if r == nil {
		return false
	}
	b, ok := r[key].(bool)
	return ok && b
}

// Int64 returns the value coerced to int64, false when absent or not
// numeric. String digits are accepted because some provider ids arrive
// quoted.
func (r Raw) Int64(key string) (int64, bool) {
	if r == nil {
		return 0, false
	}
	return coerceInt64(r[key])
}

func (r Raw) Float(key string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	return coerceFloat(r[key])
}

func (r Raw) OptInt64(key string) *int64 {
	if v, ok := r.Int64(key); ok {
		return &v
	}
	return nil
}

func (r Raw) OptFloat(key string) *float64 {
	if v, ok := r.Float(key); ok {
		return &v
	}
	return nil
}

func (r Raw) Time(key string) *time.Time {
	return parseProviderDateTime(r.String(key))
}

func coerceInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}
