// Package contact validates the contact form.
//
// Submissions are checked and acknowledged but never sent anywhere.
package contact

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMessageLength is the longest message accepted on submit. Typing past it
// is allowed; the counter just keeps counting.
const MaxMessageLength = 300

// Messages shown next to the fields and on success.
const (
	ErrEmailEmpty     = "Email cannot be empty."
	ErrEmailFormat    = "Please enter a valid email address."
	ErrEmailIllegal   = "Email contains illegal characters."
	ErrMessageEmpty   = "Message cannot be empty."
	ErrMessageIllegal = "Message contains illegal characters."
	ErrMessageLength  = "Message must be 300 characters or fewer."
	SuccessMessage    = "Form submitted successfully!"
)

// space matches what browsers treat as whitespace. U+0085 is not included.
const space = `\t\n\v\f\r\p{Z}\x{FEFF}`

var (
	emailPattern = regexp.MustCompile(`^[^` + space + `@]+@[^` + space + `@]+\.[^` + space + `@]+$`)

	// DefaultIllegal matches any character outside letters, digits and @._-
	DefaultIllegal = regexp.MustCompile(`[^a-zA-Z0-9@._-]`)
)

// Result holds the first failing message per field; empty means valid.
type Result struct {
	Email   string
	Message string
}

// Valid reports whether both fields passed.
func (r Result) Valid() bool {
	return r.Email == "" && r.Message == ""
}

// Validator applies the field rules. The zero value is not usable; use
// NewValidator.
type Validator struct {
	messageIllegal *regexp.Regexp
}

// NewValidator returns a Validator. A nil messageIllegal uses DefaultIllegal,
// the same set email addresses are held to.
func NewValidator(messageIllegal *regexp.Regexp) *Validator {
	if messageIllegal == nil {
		messageIllegal = DefaultIllegal
	}
	return &Validator{messageIllegal: messageIllegal}
}

// Validate checks both fields after trimming surrounding whitespace. Both
// fields are always evaluated; each keeps only its first failure.
func (v *Validator) Validate(email, message string) Result {
	return Result{
		Email:   validateEmail(trim(email)),
		Message: v.validateMessage(trim(message)),
	}
}

func validateEmail(email string) string {
	switch {
	case email == "":
		return ErrEmailEmpty
	case !emailPattern.MatchString(email):
		return ErrEmailFormat
	case DefaultIllegal.MatchString(email):
		return ErrEmailIllegal
	}
	return ""
}

func (v *Validator) validateMessage(message string) string {
	switch {
	case message == "":
		return ErrMessageEmpty
	case v.messageIllegal.MatchString(message):
		return ErrMessageIllegal
	case Length(message) > MaxMessageLength:
		return ErrMessageLength
	}
	return ""
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF':
		return true
	}
	return unicode.In(r, unicode.Z)
}

// Length counts characters, not bytes.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// CounterText is the character counter display for n characters.
func CounterText(n int) string {
	return fmt.Sprintf("Characters: %d/%d", n, MaxMessageLength)
}
