package namekit

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Discord caps channel names well above this, but slugs are also embedded in
// log lines and audit messages, so they stay within 90 bytes.
const maxSlugLen = 90

// Slugify maps a display name to a channel-name-safe token: accents folded
// to their base letters, lowercased, every run of non-alphanumerics collapsed
// to a single hyphen, no leading or trailing hyphen, at most 90 bytes.
// Slugify(Slugify(x)) == Slugify(x) for all x.
func Slugify(name string) string {
	folded, _, err := transform.String(foldTransformer(), name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// foldTransformer decomposes accented characters and strips the combining
// marks. Transformers carry internal state, so each call builds its own.
func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// SplitName splits a candidate name into its first name and the remainder.
// ok is false when the name has fewer than two whitespace-separated parts.
func SplitName(name string) (first, last string, ok bool) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		if len(parts) == 1 {
			return parts[0], "", false
		}
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], " "), true
}

// FirstName returns the leading whitespace-separated token of name, or ""
// when name is blank.
func FirstName(name string) string {
	if parts := strings.Fields(name); len(parts) > 0 {
		return parts[0]
	}
	return ""
}
