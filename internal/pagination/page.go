package pagination

// Page is one slice of a larger ordered result.
type Page[T any] struct {
	Content []T
	Total   int64
	Number  int
	Size    int
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages()
}

// AppendPage merges a freshly loaded page into the items already shown.
// A single-page result, or nothing shown yet, replaces the old items.
func AppendPage[T any](old, next []T, links map[string]int) []T {
	if links["first"] == links["last"] || len(old) == 0 {
		return next
	}
	out := make([]T, 0, len(old)+len(next))
	out = append(out, old...)
	return append(out, next...)
}
