package dto

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Row плоская запись из билдера или документ из документного бэкенда.
// Ключи при чтении реляционных join-ов имеют префикс таблицы в единственном числе.
type Row map[string]any

// Has сообщает, есть ли непустое значение под ключом
func (r Row) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}

func (r Row) Str(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", fmt.Errorf("dto: missing required field %q", key)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case uuid.UUID:
		return s.String(), nil
	default:
		return fmt.Sprintf("%v", s), nil
	}
}

func (r Row) OptStr(key string) string {
	s, err := r.Str(key)
	if err != nil {
		return ""
	}
	return s
}

func (r Row) OptStrPtr(key string) *string {
	if !r.Has(key) {
		return nil
	}
	s := r.OptStr(key)
	return &s
}

func (r Row) Int64(key string) (int64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("dto: missing required field %q", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		var out int64
		if _, err := fmt.Sscan(string(n), &out); err != nil {
			return 0, fmt.Errorf("dto: field %q is not an integer: %w", key, err)
		}
		return out, nil
	case string:
		var out int64
		if _, err := fmt.Sscan(n, &out); err != nil {
			return 0, fmt.Errorf("dto: field %q is not an integer: %w", key, err)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("dto: field %q has unsupported type %T", key, v)
	}
}

// OptBool терпит числовые булевы значения sqlite
func (r Row) OptBool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case string:
		return v == "true" || v == "1"
	default:
		return false
	}
}

func (r Row) Time(key string) (time.Time, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("dto: missing required field %q", key)
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := parseTime(t)
		if err != nil {
			return time.Time{}, fmt.Errorf("dto: field %q: %w", key, err)
		}
		return parsed, nil
	case []byte:
		parsed, err := parseTime(string(t))
		if err != nil {
			return time.Time{}, fmt.Errorf("dto: field %q: %w", key, err)
		}
		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("dto: field %q has unsupported time type %T", key, v)
	}
}

func (r Row) OptTimePtr(key string) *time.Time {
	if !r.Has(key) {
		return nil
	}
	t, err := r.Time(key)
	if err != nil {
		return nil
	}
	return &t
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

// BytesToMB переводит байты в мегабайты с округлением до сотых
func BytesToMB(b int64) float64 {
	return math.Round(float64(b)/(1024*1024)*100) / 100
}
