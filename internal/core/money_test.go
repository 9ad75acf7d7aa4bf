package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{123, "1.23"},
		{100000, "1000.00"},
		{-50, "-0.50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("cents %d expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyUnmarshalLenient(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{`12.34`, 1234},
		{`"12.34"`, 1234},
		{`0`, 0},
		{`null`, 0},
		{`"garbage"`, 0}, // malformed amounts degrade to zero, not error
		{`-5`, 0},
	}
	for _, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
			t.Fatalf("%s: unexpected error %v", tc.in, err)
		}
		if m.Cents != tc.want {
			t.Fatalf("%s: expected %d cents, got %d", tc.in, tc.want, m.Cents)
		}
	}
}

func TestMoneyMarshal(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "12.34" {
		t.Fatalf("expected 12.34, got %s", b)
	}
}
