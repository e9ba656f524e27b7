package media

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ssmdetailing/ssm-backend/pkg/enums"
)

func buildGCSKey(kind enums.MediaKind, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("media/%s/%s/%s", kind, id.String(), cleanName)
}

// stripDiacritics turns "Plafon Înstelat" into "Plafon Instelat".
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// sanitizeFileName lowercases, strips diacritics and keeps [a-z0-9._-].
func sanitizeFileName(name string) string {
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	clean = strings.ToLower(stripDiacritics(clean))
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-_.")
}

// withExtension swaps the extension of name, used after re-encoding.
func withExtension(name, ext string) string {
	if name == "" {
		return name
	}
	return strings.TrimSuffix(name, path.Ext(name)) + ext
}
