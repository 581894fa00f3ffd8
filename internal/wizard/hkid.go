package wizard

import "regexp"

// 1-2 letters, 6 digits, then a bracketed check character.
var hkidRe = regexp.MustCompile(`(?i)^[A-Z]{1,2}[0-9]{6}\([0-9A]\)$`)

// ValidateHKID reports whether s is a well-formed HKID. The check digit
// itself is not verified.
func ValidateHKID(s string) bool {
	return hkidRe.MatchString(s)
}
