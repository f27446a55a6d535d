// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// validation, records, storage and every view can import types without
// depending on each other.
package types

import "strings"

// Student represents one student record.
//
// The json:"..." tags are the persisted shape: the whole list is stored as
// a JSON array of these objects under a single storage key, so the tag
// names must not change.
//
// There is no database-generated key. ID is entered by the user, must be
// unique across the list, and a record is addressed by its position in
// the list, not by ID.
type Student struct {
	Name    string `json:"name"    yaml:"name"`
	ID      string `json:"id"      yaml:"id"`
	Email   string `json:"email"   yaml:"email"`
	Contact string `json:"contact" yaml:"contact"`
}

// Trimmed returns a copy with surrounding whitespace removed from every
// field. Views call this on raw input before validating it.
func (s Student) Trimmed() Student {
	return Student{
		Name:    TrimSpace(s.Name),
		ID:      TrimSpace(s.ID),
		Email:   TrimSpace(s.Email),
		Contact: TrimSpace(s.Contact),
	}
}

// IsSpace reports whether r counts as whitespace in record fields. It is
// unicode.IsSpace plus U+FEFF and minus U+0085, the set browsers trim.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// TrimSpace removes leading and trailing IsSpace runes from v.
func TrimSpace(v string) string {
	return strings.TrimFunc(v, IsSpace)
}
