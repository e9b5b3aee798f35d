package recordstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pulse-platform/production-service/pkg/errors"
)

// Field values come back untyped: numbers as float64, dates as unix
// seconds, reference lists as ["L", id...]. These helpers normalize
// them without failing on absent or oddly typed cells.

func fieldString(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func fieldInt(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func fieldFloat(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func fieldBool(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "True" || v == "1"
	case float64:
		return v != 0
	default:
		return false
	}
}

// fieldBoolPtr distinguishes an absent cell from an explicit value.
func fieldBoolPtr(fields map[string]any, key string) *bool {
	if _, ok := fields[key]; !ok {
		return nil
	}
	if fields[key] == nil {
		return nil
	}
	v := fieldBool(fields, key)
	return &v
}

func fieldTime(fields map[string]any, key string) *time.Time {
	switch v := fields[key].(type) {
	case float64:
		if v == 0 {
			return nil
		}
		t := time.Unix(int64(v), 0).UTC()
		return &t
	case string:
		if v == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				t = t.UTC()
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}

// fieldRefIDs normalizes a reference cell: a bare id, or a list
// encoded as ["L", id1, id2, ...].
func fieldRefIDs(fields map[string]any, key string) []int {
	switch v := fields[key].(type) {
	case float64:
		if v == 0 {
			return nil
		}
		return []int{int(v)}
	case []any:
		var ids []int
		for i, item := range v {
			if i == 0 {
				if marker, ok := item.(string); ok && marker == "L" {
					continue
				}
			}
			if n, ok := item.(float64); ok {
				ids = append(ids, int(n))
			}
		}
		return ids
	default:
		return nil
	}
}

// decodeError reports a row that cannot be mapped onto its entity.
// Rows are decoded loudly: a missing required field fails the read
// instead of yielding a half-empty entity.
func decodeError(table string, recordID int, field string) error {
	return errors.ErrRemoteStore("decode "+table,
		fmt.Errorf("record %d missing required field %q", recordID, field))
}

func timeField(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Unix()
}
