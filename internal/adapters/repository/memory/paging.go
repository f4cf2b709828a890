package memory

import "strconv"

// paginate は offset/limit で切り出し、続きがあれば次のオフセットをトークンとして返します。
func paginate[T any](items []T, limit, offset int) ([]T, string) {
	if offset >= len(items) {
		return []T{}, ""
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}

	var next string
	if end < len(items) {
		next = strconv.Itoa(end)
	}
	return items[offset:end], next
}
