package models

// Page is the envelope of every paged list endpoint.
type Page[T any] struct {
	Content       []T  `json:"content"`
	Page          int  `json:"page"`
	Size          int  `json:"size"`
	TotalElements int  `json:"totalElements"`
	HasNext       bool `json:"hasNext"`
}

// Paginate cuts page number page (zero-based) of the given size out of all.
func Paginate[T any](all []T, page, size int) Page[T] {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = len(all)
	}
	out := Page[T]{Content: []T{}, Page: page, Size: size, TotalElements: len(all)}
	start := page * size
	if start >= len(all) {
		return out
	}
	end := min(start+size, len(all))
	out.Content = append(out.Content, all[start:end]...)
	out.HasNext = end < len(all)
	return out
}
