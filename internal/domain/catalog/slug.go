package catalog

import "strings"

// Slugify derives a lowercase, hyphenated, URL-safe token from the given
// parts. Parts are joined with a hyphen before normalization, so
// Slugify("Engineering Chemistry", "CH 1101 N") yields
// "engineering-chemistry-ch-1101-n". An ampersand becomes the word "and";
// the result contains only [a-z0-9-] with no leading, trailing, or
// repeated hyphens.
func Slugify(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, "-"))
	joined = strings.ReplaceAll(joined, "&", "and")

	var b strings.Builder
	b.Grow(len(joined))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range joined {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		// Any other rune is dropped.
	}

	return strings.TrimSuffix(b.String(), "-")
}
