package wizard

import (
	"time"
)

const dateLayout = "2006-01-02"

// StringValue reads a string field from a payload
func StringValue(values map[string]interface{}, key string) string {
	s, _ := values[key].(string)
	return s
}

// FloatValue reads a numeric field. JSON numbers arrive as float64.
func FloatValue(values map[string]interface{}, key string) (float64, bool) {
	switch v := values[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// IntValue reads an integral field
func IntValue(values map[string]interface{}, key string) (int, bool) {
	f, ok := FloatValue(values, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// UintValue reads an id field
func UintValue(values map[string]interface{}, key string) (uint, bool) {
	f, ok := FloatValue(values, key)
	if !ok || f < 0 {
		return 0, false
	}
	return uint(f), true
}

// DateValue reads a YYYY-MM-DD date field
func DateValue(values map[string]interface{}, key string) (time.Time, bool) {
	s := StringValue(values, key)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
