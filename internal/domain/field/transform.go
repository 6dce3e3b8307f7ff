package field

import (
	"math"
	"time"
)

// Transform computes the field value from a record.
// Special kinds ignore the record attributes and compute their value from identity or settings.
func (f Field) Transform(rec Record, env Env) any {
	switch f.kind {
	case PrimaryKey:
		return ModelKey(rec, env.Separator) + env.Separator + rec.PK()
	case ModelTag:
		return ModelKey(rec, env.Separator)
	case Site:
		return env.SiteID
	case URL:
		if u, ok := rec.(URLer); ok {
			return u.AbsoluteURL()
		}
		return nil
	}
	if f.derived {
		return nil
	}
	v, ok := rec.Attr(f.name)
	if !ok {
		return nil
	}
	return f.Normalize(v)
}

// Normalize brings a record-supplied value into the field's canonical Go representation
// and strips markup from text.
func (f Field) Normalize(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t) //nolint:gosec // record ids fit in int64
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	case float64:
		if (f.kind == Integer || f.kind == Long) && t == math.Trunc(t) {
			return int64(t)
		}
		return t
	case string:
		if f.kind == Date || f.kind == DateTime {
			if ts, err := ParseTimestamp(t); err == nil {
				return f.Normalize(ts)
			}
		}
	case time.Time:
		if f.kind == Date {
			return truncateDay(t)
		}
		return t.UTC()
	case *string:
		if t == nil {
			return nil
		}
		return Sanitize(*t)
	case []any:
		// Decoded JSON lists: one wire value per item.
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = FormatValue(item)
		}
		return sanitizeValue(out)
	}
	return sanitizeValue(v)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
