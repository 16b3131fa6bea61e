package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

// FromQuery returns limit 0 (no paging) when neither page nor size is given.
func FromQuery(page, size string) (offset, limit int) {
	if page == "" && size == "" {
		return 0, 0
	}
	return Calculate(ParseIntDefault(page, 1), ParseIntDefault(size, DefaultPageSize))
}
