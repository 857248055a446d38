package payload

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxIdentifierLength is Redmine's limit for project identifiers.
const MaxIdentifierLength = 100

var umlauts = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

// Slugify turns a heading name into a project identifier fragment.
// German umlauts are transliterated before other accents are dropped, so
// "Übergänge" becomes "uebergaenge" and "Café" becomes "cafe". Only
// [a-z0-9] survive, joined by single hyphens.
func Slugify(name string) string {
	s := norm.NFC.String(strings.ToLower(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = umlauts.Replace(s)

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		switch {
		case r == '-':
			pendingHyphen = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Identifier builds a sub-project identifier below parent, capped at
// MaxIdentifierLength runes.
func Identifier(parent, name string) string {
	id := parent + "-" + Slugify(name)
	if utf8.RuneCountInString(id) > MaxIdentifierLength {
		id = string([]rune(id)[:MaxIdentifierLength])
	}
	return strings.TrimRight(id, "-")
}
