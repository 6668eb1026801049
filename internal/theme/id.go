package theme

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jmylchreest/loginthemes/internal/store"
)

// DefaultThemeID is the id of the built-in theme backed by the original stylesheet.
const DefaultThemeID = store.DefaultThemeID

// MaxIDLength is the maximum length of a generated theme id, in runes.
const MaxIDLength = 50

// SanitizeID derives a theme id from a human supplied name.
// The name is lower-cased, every rune outside a-z, 0-9, '_', '-' and the CJK
// unified ideographs U+4E00..U+9FA5 becomes '-', runs of '-' collapse, and
// leading/trailing '-' are trimmed. The result is at most MaxIDLength runes.
// SanitizeID(SanitizeID(s)) == SanitizeID(s).
func SanitizeID(name string) string {
	name = strings.ToLower(norm.NFC.String(name))

	var b strings.Builder
	lastHyphen := false
	for _, r := range name {
		if !isIDRune(r) {
			r = '-'
		}
		if r == '-' {
			if lastHyphen {
				continue
			}
			lastHyphen = true
		} else {
			lastHyphen = false
		}
		b.WriteRune(r)
	}

	id := strings.Trim(b.String(), "-")
	if runes := []rune(id); len(runes) > MaxIDLength {
		id = strings.TrimRight(string(runes[:MaxIDLength]), "-")
	}
	return id
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	case r >= 0x4E00 && r <= 0x9FA5:
		return true
	}
	return false
}

// isLookupID reports whether id may name a custom theme file.
// Reserved names and anything that would escape the themes directory are rejected.
func isLookupID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.HasPrefix(id, ReservedPrefix) {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.ContainsRune(id, 0)
}
