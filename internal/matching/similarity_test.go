package matching

import (
	"math"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"dots to spaces", "The.Dark.Knight.2008", "the dark knight 2008"},
		{"parentheses and year", "It (2017)", "it 2017"},
		{"multiple spaces", "  Multiple   Spaces  ", "multiple spaces"},
		{"empty string", "", ""},
		{"special characters", "Spider-Man: Into the Spider-Verse", "spider man into the spider verse"},
		{"apostrophe dropped", "Schitt's Creek", "schitts creek"},
		{"curly apostrophe dropped", "Schitt’s Creek", "schitts creek"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.input); got != tt.expected {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTitleScore(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"The Matrix", "the matrix", 1.0},
		{"", "", 1.0},
		{"Heat", "", 0.0},
		{"The Dark Knight", "The Dark Knight Rises", 0.75},
		{"Alpha", "Bravo", 0.0},
	}

	for _, tt := range tests {
		got := TitleScore(tt.a, tt.b)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("TitleScore(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
		}
	}
}
