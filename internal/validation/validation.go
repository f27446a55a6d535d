// Package validation checks a candidate student record's fields against
// the format rules before it is allowed into the record store.
//
// The rules are registered as custom tags on a go-playground validator and
// applied one field at a time, so the order in which failures are reported
// is fixed: the missing-field check runs over all four fields first, then
// the format checks run name → id → email → contact and the first failure
// wins.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Validation errors. Every error returned by Validate unwraps to exactly
// one of these.
var (
	ErrMissingField   = errors.New("missing field")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidID      = errors.New("invalid id")
	ErrInvalidEmail   = errors.New("invalid email")
	ErrInvalidContact = errors.New("invalid contact")
)

// Custom validator tags.
const (
	TagName    = "personname"
	TagDigits  = "digits"
	TagEmail   = "simpleemail"
	TagContact = "contact"
)

// space is the whitespace set of types.IsSpace. Go's \s is narrower, so it
// is spelled out and used in its place.
const space = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

var (
	nameRegex    = regexp.MustCompile(`^[A-Za-z` + space + `]+$`)
	idRegex      = regexp.MustCompile(`^\d+$`)
	emailRegex   = regexp.MustCompile(`^[^@` + space + `]+@[^@` + space + `]+\.[^@` + space + `]+$`)
	contactRegex = regexp.MustCompile(`^\d{10,}$`)
)

// FieldError reports which field failed and why.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validator wraps a go-playground validator with the student rules
// registered. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the custom tags registered.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	rules := map[string]*regexp.Regexp{
		TagName:    nameRegex,
		TagDigits:  idRegex,
		TagEmail:   emailRegex,
		TagContact: contactRegex,
	}
	for tag, re := range rules {
		if err := v.RegisterValidation(tag, matches(re)); err != nil {
			return nil, fmt.Errorf("validation.New: register %s: %w", tag, err)
		}
	}

	return &Validator{v: v}, nil
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

type check struct {
	field string
	value string
	tag   string
	err   error
}

// Validate checks the four fields and returns the first failure, or nil.
func (v *Validator) Validate(name, id, email, contact string) error {
	checks := []check{
		{field: "name", value: name, tag: TagName, err: ErrInvalidName},
		{field: "id", value: id, tag: TagDigits, err: ErrInvalidID},
		{field: "email", value: email, tag: TagEmail, err: ErrInvalidEmail},
		{field: "contact", value: contact, tag: TagContact, err: ErrInvalidContact},
	}

	for _, c := range checks {
		if err := v.v.Var(types.TrimSpace(c.value), "required"); err != nil {
			return &FieldError{Field: c.field, Err: ErrMissingField}
		}
	}

	for _, c := range checks {
		if err := v.v.Var(c.value, c.tag); err != nil {
			return &FieldError{Field: c.field, Err: c.err}
		}
	}

	return nil
}

// ValidateStudent validates all fields of s.
func (v *Validator) ValidateStudent(s types.Student) error {
	return v.Validate(s.Name, s.ID, s.Email, s.Contact)
}

var defaultValidator = mustNew()

func mustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the fields with the package default Validator.
func Validate(name, id, email, contact string) error {
	return defaultValidator.Validate(name, id, email, contact)
}

// ValidateStudent validates s with the package default Validator.
func ValidateStudent(s types.Student) error {
	return defaultValidator.ValidateStudent(s)
}
