// Package form is the view-side interaction state shared by every front
// end: it trims raw input, validates it, routes a submit to add or update
// depending on whether a record is being edited, and turns errors into the
// messages shown to the user.
package form

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// User-facing text.
const (
	ConfirmDeletePrompt = "Are you sure you want to delete this record?"
	EmptyTableText      = "No student records found."
	AddLabel            = "Add Student"
	UpdateLabel         = "Update Student"
)

// Recorder is the part of the record store a Session drives.
type Recorder interface {
	List() []types.Student
	Get(index int) (types.Student, error)
	Add(ctx context.Context, s types.Student) (int, error)
	Update(ctx context.Context, index int, s types.Student) error
	Delete(ctx context.Context, index int) error
}

// Outcome says what a successful Submit did.
type Outcome int

const (
	Added Outcome = iota + 1
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// Session is one user's form. It is not safe for concurrent use; each
// interactive front end owns its own.
type Session struct {
	store   Recorder
	editing *int
}

// NewSession returns a Session in add mode.
func NewSession(store Recorder) *Session {
	return &Session{store: store}
}

// Editing reports the position being edited, if any.
func (s *Session) Editing() (int, bool) {
	if s.editing == nil {
		return 0, false
	}
	return *s.editing, true
}

// SubmitLabel is the text for the submit button in the current mode.
func (s *Session) SubmitLabel() string {
	if s.editing != nil {
		return UpdateLabel
	}
	return AddLabel
}

// StartEdit switches to edit mode for index and returns the record so the
// caller can fill its inputs.
func (s *Session) StartEdit(index int) (types.Student, error) {
	st, err := s.store.Get(index)
	if err != nil {
		return types.Student{}, err
	}
	s.editing = &index
	return st, nil
}

// CancelEdit returns to add mode.
func (s *Session) CancelEdit() {
	s.editing = nil
}

// Submit trims and validates in, then adds it or updates the record being
// edited. On success the session is back in add mode; on failure the mode
// is unchanged so the user can correct the input.
func (s *Session) Submit(ctx context.Context, in types.Student) (Outcome, error) {
	st := in.Trimmed()

	if err := validation.ValidateStudent(st); err != nil {
		return 0, err
	}

	if s.editing == nil {
		if _, err := s.store.Add(ctx, st); err != nil {
			return 0, err
		}
		return Added, nil
	}

	if err := s.store.Update(ctx, *s.editing, st); err != nil {
		return 0, err
	}
	s.editing = nil
	return Updated, nil
}

// Delete removes the record at index once confirm agrees. It reports
// whether anything was deleted. An edit in progress on the deleted row is
// cancelled; one on a later row follows its record down by one.
func (s *Session) Delete(ctx context.Context, index int, confirm func() bool) (bool, error) {
	if confirm != nil && !confirm() {
		return false, nil
	}

	if err := s.store.Delete(ctx, index); err != nil {
		return false, err
	}

	if s.editing != nil {
		switch {
		case *s.editing == index:
			s.editing = nil
		case *s.editing > index:
			shifted := *s.editing - 1
			s.editing = &shifted
		}
	}

	return true, nil
}

// Message maps an error from Submit, StartEdit or Delete to the text shown
// to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, validation.ErrMissingField):
		return "All fields are required."
	case errors.Is(err, validation.ErrInvalidName):
		return "Student name must contain only letters and spaces."
	case errors.Is(err, validation.ErrInvalidID):
		return "Student ID must contain only numbers."
	case errors.Is(err, validation.ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, validation.ErrInvalidContact):
		return "Contact number must be at least 10 digits."
	case errors.Is(err, records.ErrDuplicateID):
		return "Student ID already exists. Please use a unique Student ID."
	case errors.Is(err, records.ErrIndexOutOfRange):
		return "That record no longer exists. Refresh and try again."
	default:
		return "Something went wrong saving the records. Please try again."
	}
}

// SuccessMessage is the status text after a successful Submit.
func SuccessMessage(o Outcome) string {
	switch o {
	case Added:
		return "Student added."
	case Updated:
		return "Student updated."
	default:
		return ""
	}
}
