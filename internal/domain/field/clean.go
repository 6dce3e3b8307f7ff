package field

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/solrmap/internal/domain"
)

// TimestampLayout is the timestamp pattern of the index.
const TimestampLayout = "2006-01-02T15:04:05Z"

// serializeLayout is how time values are written; Clean accepts it back.
const serializeLayout = "2006-01-02T15:04:05.000Z"

// Clean coerces a raw response value into the field's typed value.
// List input is collapsed to a single space-joined string first.
func (f Field) Clean(raw any, env Env) (any, error) {
	if raw == nil {
		return nil, nil
	}
	if s, ok := joinList(raw); ok {
		raw = s
	}

	switch f.kind {
	case Date, DateTime:
		return f.cleanTime(raw)
	case Integer, Long, Site:
		return f.cleanInt(raw)
	case Float, Double:
		return f.cleanFloat(raw)
	case Boolean:
		return f.cleanBool(raw)
	case PrimaryKey:
		s := FormatValue(raw)
		if env.Separator != "" {
			if i := strings.LastIndex(s, env.Separator); i >= 0 {
				s = s[i+len(env.Separator):]
			}
		}
		return s, nil
	default:
		return FormatValue(raw), nil
	}
}

func joinList(raw any) (string, bool) {
	switch t := raw.(type) {
	case []string:
		return strings.Join(t, " "), true
	case []any:
		parts := make([]string, len(t))
		for i, v := range t {
			parts[i] = FormatValue(v)
		}
		return strings.Join(parts, " "), true
	}
	return "", false
}

func (f Field) conversionErr(raw any, cause error) error {
	return domain.NewConversion(f.name, string(f.kind), raw, cause)
}

func (f Field) cleanTime(raw any) (any, error) {
	var t time.Time
	switch v := raw.(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return nil, f.conversionErr(raw, err)
		}
		t = parsed
	default:
		return nil, f.conversionErr(raw, fmt.Errorf("unsupported type %T", raw))
	}
	if f.kind == Date {
		return truncateDay(t), nil
	}
	return t.UTC(), nil
}

// ParseTimestamp parses the index timestamp pattern, tolerating fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(TimestampLayout, s)
	if err == nil {
		return t, nil
	}
	if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
		return t2.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("parse timestamp: %w", err)
}

func (f Field) cleanInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, f.conversionErr(raw, err)
		}
		return n, nil
	}
	return nil, f.conversionErr(raw, fmt.Errorf("unsupported type %T", raw))
}

func (f Field) cleanFloat(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, f.conversionErr(raw, err)
		}
		return n, nil
	}
	return nil, f.conversionErr(raw, fmt.Errorf("unsupported type %T", raw))
}

func (f Field) cleanBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return nil, f.conversionErr(raw, fmt.Errorf("expected \"true\" or \"false\""))
}
