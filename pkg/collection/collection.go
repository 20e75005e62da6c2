// Package collection has small generic slice helpers used where models and
// listeners reshape lists of ids and line items.
//
//	farmers := collection.Unique(collection.Map(o.Items, func(it models.OrderItem) uint { return it.FarmerID }))
//	others := collection.Reject(ids, func(id uint) bool { return id == actorID })
//
// Results are never nil, so they encode as [] rather than null.
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reject is Filter with fn inverted.
func Reject[T any](s []T, fn func(T) bool) []T {
	return Filter(s, func(v T) bool { return !fn(v) })
}

// Contains reports whether any element of s satisfies fn.
func Contains[T any](s []T, fn func(T) bool) bool {
	for _, v := range s {
		if fn(v) {
			return true
		}
	}
	return false
}

// Unique drops repeated elements, keeping first occurrences in order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
