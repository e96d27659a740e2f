// Package utils holds small helpers shared by the HTTP layer.
package utils

import "strconv"

// Page bounds used by list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AtoiDefault parses s, returning def when s is empty or not an integer.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ParsePage reads 1-based page and page size query values, clamping the
// page to >= 1 and the size to [1, MaxPageSize].
func ParsePage(pageStr, sizeStr string) (page, size int) {
	page = max(AtoiDefault(pageStr, 1), 1)
	size = AtoiDefault(sizeStr, DefaultPageSize)
	size = min(max(size, 1), MaxPageSize)
	return page, size
}

// TotalPages is ceil(total/size); zero when size is not positive.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
