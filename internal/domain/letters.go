package domain

import "strings"

// NormalizeLetter trims and upper-cases an answer letter.
func NormalizeLetter(letter string) string {
	return strings.ToUpper(strings.TrimSpace(letter))
}

// ValidLetter reports whether letter (after normalization) is A-D.
func ValidLetter(letter string) bool {
	return LetterIndex(NormalizeLetter(letter)) >= 0
}
