// Package phone formats Romanian phone numbers for display and for tel: and
// wa.me links.
package phone

import "strings"

const countryCode = "40"

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Display normalises a number for rendering. Local numbers starting with 0
// are kept as typed; bare subscriber numbers gain the +40 prefix.
func Display(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := stripSpaces(raw)
	switch {
	case strings.HasPrefix(cleaned, "+"+countryCode):
		return cleaned
	case strings.HasPrefix(cleaned, countryCode) && len(cleaned) >= 11:
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "0"):
		return cleaned
	case len(cleaned) >= 9 && !strings.HasPrefix(cleaned, "+"):
		return "+" + countryCode + cleaned
	}
	return raw
}

// WhatsApp returns the digits-only international form used by wa.me links.
func WhatsApp(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := strings.ReplaceAll(stripSpaces(raw), "+", "")
	if strings.HasPrefix(cleaned, "0") {
		cleaned = countryCode + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, countryCode) && len(cleaned) >= 9 {
		cleaned = countryCode + cleaned
	}
	return cleaned
}

// Tel returns the value for a tel: href.
func Tel(raw string) string {
	return stripSpaces(raw)
}

// WhatsAppLink builds the https://wa.me/ link for raw, or "" when empty.
func WhatsAppLink(raw string) string {
	n := WhatsApp(raw)
	if n == "" {
		return ""
	}
	return "https://wa.me/" + n
}

// TelLink builds the tel: link for raw, or "" when empty.
func TelLink(raw string) string {
	n := Tel(raw)
	if n == "" {
		return ""
	}
	return "tel:" + n
}
