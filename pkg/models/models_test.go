package models

import "testing"

func intPtr(n int) *int { return &n }

func TestMismatchSevere(t *testing.T) {
	tests := []struct {
		name string
		m    Mismatch
		want bool
	}{
		{
			name: "plain arity issue is not severe",
			m:    Mismatch{Issue: "1 positional args, expected 2"},
			want: false,
		},
		{
			name: "undefined substring is severe",
			m:    Mismatch{Issue: "call to UNDEFINED symbol"},
			want: true,
		},
		{
			name: "undefined is matched case-insensitively",
			m:    Mismatch{Issue: "Undefined function foo"},
			want: true,
		},
		{
			name: "arity delta of one is not severe",
			m:    Mismatch{Issue: "arity", Actual: intPtr(3), Expected: intPtr(2)},
			want: false,
		},
		{
			name: "arity delta above one is severe",
			m:    Mismatch{Issue: "arity", Actual: intPtr(5), Expected: intPtr(2)},
			want: true,
		},
		{
			name: "negative delta above one is severe",
			m:    Mismatch{Issue: "arity", Actual: intPtr(0), Expected: intPtr(4)},
			want: true,
		},
		{
			name: "only one numeric field present is not severe",
			m:    Mismatch{Issue: "arity", Actual: intPtr(9)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Severe(); got != tt.want {
				t.Errorf("Severe() = %v, want %v", got, tt.want)
			}
		})
	}
}
