// Package utils holds the page-window arithmetic shared by the HTTP
// handlers and the request service.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int, falling back to def when s is empty
// or malformed. No trimming is applied.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampPage bounds a 1-based page number and a page size. A size below 1
// becomes def; maxSize <= 0 disables the upper bound.
func ClampPage(page, size, def, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = def
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return page, size
}

// Offset returns the number of rows to skip for a clamped page window.
func Offset(page, size int) int {
	return (page - 1) * size
}

// TotalPages returns ceil(total/size), or 0 when size is not positive.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
