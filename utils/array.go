package utils

// SafeSlice returns at most the first limit elements.
func SafeSlice[T any](slice []T, limit int) []T {
	if limit < 0 || len(slice) < limit {
		return slice
	}
	return slice[:limit]
}

// LastN returns at most the final n elements.
func LastN[T any](slice []T, n int) []T {
	if n < 0 || len(slice) <= n {
		return slice
	}
	return slice[len(slice)-n:]
}
