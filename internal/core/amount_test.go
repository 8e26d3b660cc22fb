package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"5к", 5000},
		{"2кк", 2000000},
		{"+10", 10},
		{"-10", -10},
		{"1,5к", 1500},
		{"1.5к", 1500},
		{"", 0},
		{"abc", 0},
		{"7", 7},
		{"3.5", 3},
		{"3,5", 3},
		{"-100", -100},
		{"5k", 5000},
		{"2kk", 2000000},
		{"2KK", 2000000},
		{"5К", 5000}, // upper-case Cyrillic
		{" 10 000 ", 10000},
		{"-2к", -2000},
		{"-1,5к", -1500},
		{"0,9кк", 900000},
		{"к", 0},
		{"кк", 0},
		{"+", 0},
		{"-", 0},
		{"1.2.3", 0},
		{"12abc", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Errorf("ParseAmount(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}
