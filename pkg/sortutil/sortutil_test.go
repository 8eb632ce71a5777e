package sortutil

import (
	"reflect"
	"strings"
	"testing"
)

func TestMergeSort(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty", nil, []int{}},
		{"single", []int{1}, []int{1}},
		{"reversed", []int{5, 4, 3, 2, 1}, []int{1, 2, 3, 4, 5}},
		{"duplicates", []int{3, 1, 3, 2, 1}, []int{1, 1, 2, 3, 3}},
		{"sorted", []int{1, 2, 3}, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSort(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeSort(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMergeSortDoesNotModifyInput(t *testing.T) {
	in := []string{"c", "a", "b"}
	got := MergeSort(in)

	if !reflect.DeepEqual(in, []string{"c", "a", "b"}) {
		t.Errorf("input modified: %v", in)
	}
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("got %v", got)
	}
}

func TestMergeSortFuncStable(t *testing.T) {
	type rec struct {
		key  string
		tier int
	}
	in := []rec{
		{"b", 1}, {"a", 1}, {"b", 2}, {"a", 2}, {"a", 3},
	}

	got := MergeSortFunc(in, func(x, y rec) int {
		return strings.Compare(x.key, y.key)
	})

	want := []rec{
		{"a", 1}, {"a", 2}, {"a", 3}, {"b", 1}, {"b", 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
