package schedule

import "testing"

func TestNormalizeHexColor(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  string
		ok    bool
	}{
		{"six digit", "#4285f4", "#4285f4", true},
		{"three digit expands", "#f80", "#ff8800", true},
		{"four digit drops alpha", "#f80a", "#ff8800", true},
		{"eight digit drops alpha", "#4285f4cc", "#4285f4", true},
		{"named color", "blue", "", false},
		{"missing hash", "4285f4", "", false},
		{"bad hex digits", "#zzzzzz", "", false},
		{"wrong length", "#12345", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeHexColor(tt.color)
			if got != tt.want || ok != tt.ok {
				t.Errorf("NormalizeHexColor(%q) = %q, %v; want %q, %v", tt.color, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPickEventTextColor(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  string
	}{
		{"black background", "#000000", lightForeground},
		{"white background", "#ffffff", darkForeground},
		{"google blue", "#4285f4", lightForeground},
		{"pale yellow", "#fff3cd", darkForeground},
		{"short form", "#fff", darkForeground},
		{"malformed falls back to light", "blue", lightForeground},
		{"empty falls back to light", "", lightForeground},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickEventTextColor(tt.color); got != tt.want {
				t.Errorf("PickEventTextColor(%q) = %q, want %q", tt.color, got, tt.want)
			}
		})
	}
}
