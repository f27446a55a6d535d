package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSession(t *testing.T, seed ...types.Student) (*Session, *records.Store) {
	t.Helper()
	store := records.New(memory.New())
	ctx := context.Background()
	_, err := store.Load(ctx)
	require.NoError(t, err)
	for _, st := range seed {
		_, err = store.Add(ctx, st)
		require.NoError(t, err)
	}
	return NewSession(store), store
}

func rec(name, id string) types.Student {
	return types.Student{Name: name, ID: id, Email: id + "@example.com", Contact: "1234567890"}
}

func TestSession_SubmitAddsTrimmed(t *testing.T) {
	s, store := newSession(t)

	outcome, err := s.Submit(context.Background(), types.Student{
		Name:    "  Jane Doe ",
		ID:      " 101",
		Email:   "jane@example.com  ",
		Contact: "\t5551234567\n",
	})

	require.NoError(t, err)
	assert.Equal(t, Added, outcome)
	assert.Equal(t, []types.Student{{
		Name: "Jane Doe", ID: "101", Email: "jane@example.com", Contact: "5551234567",
	}}, store.List())
}

func TestSession_SubmitValidationError(t *testing.T) {
	s, store := newSession(t)

	_, err := s.Submit(context.Background(), types.Student{Name: "Jane1", ID: "101", Email: "jane@example.com", Contact: "5551234567"})

	assert.ErrorIs(t, err, validation.ErrInvalidName)
	assert.Empty(t, store.List())
}

func TestSession_EditFlow(t *testing.T) {
	s, store := newSession(t, rec("A", "1"), rec("B", "2"))
	ctx := context.Background()

	assert.Equal(t, AddLabel, s.SubmitLabel())

	got, err := s.StartEdit(1)
	require.NoError(t, err)
	assert.Equal(t, rec("B", "2"), got)

	idx, editing := s.Editing()
	assert.True(t, editing)
	assert.Equal(t, 1, idx)
	assert.Equal(t, UpdateLabel, s.SubmitLabel())

	// Taking another record's id keeps the session in edit mode.
	_, err = s.Submit(ctx, rec("Bee", "1"))
	assert.ErrorIs(t, err, records.ErrDuplicateID)
	_, editing = s.Editing()
	assert.True(t, editing)

	outcome, err := s.Submit(ctx, rec("Bee", "2"))
	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)
	_, editing = s.Editing()
	assert.False(t, editing)

	assert.Equal(t, []types.Student{rec("A", "1"), rec("Bee", "2")}, store.List())
}

func TestSession_StartEditOutOfRange(t *testing.T) {
	s, _ := newSession(t)

	_, err := s.StartEdit(0)

	assert.ErrorIs(t, err, records.ErrIndexOutOfRange)
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestSession_CancelEdit(t *testing.T) {
	s, store := newSession(t, rec("A", "1"))

	_, err := s.StartEdit(0)
	require.NoError(t, err)
	s.CancelEdit()

	outcome, err := s.Submit(context.Background(), rec("B", "2"))
	require.NoError(t, err)
	assert.Equal(t, Added, outcome)
	assert.Len(t, store.List(), 2)
}

func TestSession_Delete(t *testing.T) {
	tests := []struct {
		name        string
		editing     int
		deleteIndex int
		wantEditing bool
		wantIndex   int
	}{
		{name: "deleting the edited row cancels the edit", editing: 1, deleteIndex: 1},
		{name: "deleting an earlier row shifts the edit", editing: 2, deleteIndex: 0, wantEditing: true, wantIndex: 1},
		{name: "deleting a later row leaves the edit", editing: 0, deleteIndex: 2, wantEditing: true, wantIndex: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newSession(t, rec("A", "1"), rec("B", "2"), rec("C", "3"))
			_, err := s.StartEdit(tt.editing)
			require.NoError(t, err)

			deleted, err := s.Delete(context.Background(), tt.deleteIndex, func() bool { return true })
			require.NoError(t, err)
			assert.True(t, deleted)
			assert.Len(t, store.List(), 2)

			idx, editing := s.Editing()
			assert.Equal(t, tt.wantEditing, editing)
			if tt.wantEditing {
				assert.Equal(t, tt.wantIndex, idx)
			}
		})
	}
}

func TestSession_DeleteDeclined(t *testing.T) {
	s, store := newSession(t, rec("A", "1"))

	deleted, err := s.Delete(context.Background(), 0, func() bool { return false })

	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, store.List(), 1)
}

func TestSession_DeleteStaleIndex(t *testing.T) {
	s, _ := newSession(t, rec("A", "1"))

	deleted, err := s.Delete(context.Background(), 3, nil)

	assert.False(t, deleted)
	assert.ErrorIs(t, err, records.ErrIndexOutOfRange)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&validation.FieldError{Field: "name", Err: validation.ErrMissingField}, "All fields are required."},
		{validation.ErrInvalidName, "Student name must contain only letters and spaces."},
		{validation.ErrInvalidID, "Student ID must contain only numbers."},
		{validation.ErrInvalidEmail, "Please enter a valid email address."},
		{validation.ErrInvalidContact, "Contact number must be at least 10 digits."},
		{records.ErrDuplicateID, "Student ID already exists. Please use a unique Student ID."},
		{records.ErrIndexOutOfRange, "That record no longer exists. Refresh and try again."},
		{errors.New("disk full"), "Something went wrong saving the records. Please try again."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err))
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "updated", Updated.String())
	assert.Equal(t, "Student added.", SuccessMessage(Added))
	assert.Equal(t, "Student updated.", SuccessMessage(Updated))
}
