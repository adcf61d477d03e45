package common

import (
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination extracts page and limit query parameters, falling back to
// the provided defaults and clamping limit to maxPerPage when positive.
func ParsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}

// PageSlice returns the window of items for the given page along with the
// pagination metadata describing the full collection.
func PageSlice[T any](items []T, page, perPage int) ([]T, Pagination) {
	meta := Pagination{Page: page, PerPage: perPage, TotalItems: len(items)}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
