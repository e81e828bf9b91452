package schedule

import "strconv"

// Colors used when a calendar supplies none, or an unreadable one.
const (
	DefaultEventColor = "#3b82f6"
	darkForeground    = "#111827"
	lightForeground   = "#ffffff"
)

// NormalizeHexColor expands a #rgb/#rgba/#rrggbb/#rrggbbaa color to
// canonical #rrggbb form, dropping any alpha channel. The second
// return value is false for anything else (named colors, missing '#',
// odd lengths).
func NormalizeHexColor(color string) (string, bool) {
	if len(color) == 0 || color[0] != '#' {
		return "", false
	}
	hex := color[1:]
	switch len(hex) {
	case 4:
		hex = hex[:3]
		fallthrough
	case 3:
		expanded := make([]byte, 0, 6)
		for i := 0; i < 3; i++ {
			expanded = append(expanded, hex[i], hex[i])
		}
		hex = string(expanded)
	case 8:
		hex = hex[:6]
	case 6:
	default:
		return "", false
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", false
	}
	return "#" + hex, true
}

// PickEventTextColor chooses a readable foreground for a background
// color using YIQ relative luminance. Bright backgrounds get the dark
// foreground; dark or unreadable backgrounds get the light one.
func PickEventTextColor(backgroundColor string) string {
	hex, ok := NormalizeHexColor(backgroundColor)
	if !ok {
		return lightForeground
	}
	r, _ := strconv.ParseUint(hex[1:3], 16, 16)
	g, _ := strconv.ParseUint(hex[3:5], 16, 16)
	b, _ := strconv.ParseUint(hex[5:7], 16, 16)
	yiq := (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000
	if yiq >= 160 {
		return darkForeground
	}
	return lightForeground
}
