package language_test

import (
	"testing"

	"filmwatch/internal/language"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"english", "en"},
		{"en-US", "en"},
		{"ru_RU", "ru"},
		{" de ", "de"},
		{"pt-BR", "pt"},
		{"xx", "xx"},
		{"klingon", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := language.Normalize(tc.input); got != tc.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"ru", "Russian"},
		{"ukr", "Ukrainian"},
		{"xx", "XX"},
		{"", "Unknown"},
	}
	for _, tc := range cases {
		if got := language.DisplayName(tc.input); got != tc.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
