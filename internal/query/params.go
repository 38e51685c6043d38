package query

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// UintParam parses a single id parameter; returns 0 when absent or invalid
func UintParam(value string) uint {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// UintListParam parses a comma-separated id list, skipping invalid entries
func UintListParam(value string) []uint {
	if value == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// FloatParam parses a numeric bound; returns nil when absent or invalid
func FloatParam(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

// BoolParam parses a boolean flag; returns nil when absent or invalid
func BoolParam(value string) *bool {
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &b
}

// DateParam parses a YYYY-MM-DD date; returns nil when absent or invalid
func DateParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}
