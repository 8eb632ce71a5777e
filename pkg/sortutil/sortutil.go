// Package sortutil provides a stable merge sort for ordered values and
// for arbitrary types under a caller-supplied comparison.
package sortutil

import "cmp"

// MergeSort returns a sorted copy of s. The input slice is not
// modified. The sort is stable.
func MergeSort[T cmp.Ordered](s []T) []T {
	return MergeSortFunc(s, cmp.Compare[T])
}

// MergeSortFunc returns a sorted copy of s ordered by compare, which
// must return a negative number when a < b, zero when a == b, and a
// positive number when a > b. The sort is stable.
func MergeSortFunc[T any](s []T, compare func(a, b T) int) []T {
	if len(s) <= 1 {
		out := make([]T, len(s))
		copy(out, s)
		return out
	}
	mid := len(s) / 2
	left := MergeSortFunc(s[:mid], compare)
	right := MergeSortFunc(s[mid:], compare)
	return merge(left, right, compare)
}

func merge[T any](left, right []T, compare func(a, b T) int) []T {
	out := make([]T, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if compare(left[i], right[j]) <= 0 {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out
}
