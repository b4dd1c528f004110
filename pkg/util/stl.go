package util

// RemoveIf removes the one that pred is true.
// The kept elements are compacted to the front in their original order.
func RemoveIf[T any](data []T, pred func(t T) bool) []T {
	if len(data) == 0 {
		return data
	}
	res := 0
	for i := 0; i < len(data); i++ {
		if !pred(data[i]) {
			if res != i {
				data[res] = data[i]
			}
			res++
		}
	}
	clear(data[res:])
	return data[:res]
}

// Concat flattens parts into one slice in part order.
func Concat[T any](parts [][]T) []T {
	total := 0
	for _, part := range parts {
		total += len(part)
	}
	ret := make([]T, 0, total)
	for _, part := range parts {
		ret = append(ret, part...)
	}
	return ret
}
