// Package records is the authoritative holder of the ordered student
// record list.
//
// The list lives in memory and is mirrored to a storage.Storage after
// every mutation: the whole list is encoded as one JSON array and written
// under a single key, replacing the previous value. A mutation is only
// applied in memory once that write has succeeded, so memory and storage
// never disagree.
//
// Records are addressed by position. A position is only meaningful
// against the list it was read from; callers re-resolve positions after
// every mutation instead of caching them.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// DefaultKey is the storage key the list is kept under unless overridden.
const DefaultKey = "students"

// Store errors.
var (
	ErrDuplicateID     = errors.New("student id already exists")
	ErrIndexOutOfRange = errors.New("record index out of range")
	ErrCorruptData     = errors.New("stored student data is corrupt")
)

func isDuplicate(err error) bool  { return errors.Is(err, ErrDuplicateID) }
func isOutOfRange(err error) bool { return errors.Is(err, ErrIndexOutOfRange) }

// Listener receives a snapshot of the list after every successful
// mutation. It is called with the store lock held and must not call back
// into the store.
type Listener func([]types.Student)

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithResetOnCorrupt makes Load start from an empty list, with a warning,
// when the stored blob cannot be decoded. Without it Load fails with
// ErrCorruptData.
func WithResetOnCorrupt(reset bool) Option {
	return func(s *Store) { s.resetOnCorrupt = reset }
}

// Store owns the record list.
type Store struct {
	mu             sync.Mutex
	kv             storage.Storage
	key            string
	resetOnCorrupt bool
	logger         *zap.Logger
	students       []types.Student
	listeners      []Listener
}

// New creates a Store over kv. The list is empty until Load is called.
func New(kv storage.Storage, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		key:      DefaultKey,
		logger:   zap.NewNop(),
		students: []types.Student{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one. A key that was
// never written yields an empty list.
func (s *Store) Load(ctx context.Context) ([]types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("records.Load: get %q: %w", s.key, err)
	}

	students := []types.Student{}
	if ok {
		decoded, err := Decode(raw)
		switch {
		case err == nil:
			students = decoded
		case s.resetOnCorrupt:
			s.logger.Warn("stored student data is corrupt, starting empty",
				zap.String("key", s.key),
				zap.Error(err),
			)
		default:
			return nil, fmt.Errorf("records.Load: key %q: %w", s.key, err)
		}
	}

	s.students = students
	recordsGauge.Set(float64(len(students)))

	s.logger.Debug("student records loaded",
		zap.String("key", s.key),
		zap.Int("count", len(students)),
	)

	return clone(students), nil
}

// List returns a copy of the current list in insertion order.
func (s *Store) List() []types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	return clone(s.students)
}

// Get returns the record at index.
func (s *Store) Get(index int) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex("get", index); err != nil {
		return types.Student{}, err
	}
	return s.students[index], nil
}

// Add appends student unless its ID is already taken and returns the
// position it was stored at.
func (s *Store) Add(ctx context.Context, student types.Student) (index int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { mutationsTotal.WithLabelValues(opAdd, resultLabel(err)).Inc() }()

	if s.indexOfID(student.ID, -1) >= 0 {
		return -1, fmt.Errorf("records.Add: id %q: %w", student.ID, ErrDuplicateID)
	}

	next := make([]types.Student, 0, len(s.students)+1)
	next = append(next, s.students...)
	next = append(next, student)

	if err := s.commit(ctx, "records.Add", next); err != nil {
		return -1, err
	}
	return len(next) - 1, nil
}

// Update replaces the record at index. Keeping the record's own ID is
// allowed; taking the ID of any other record is not.
func (s *Store) Update(ctx context.Context, index int, student types.Student) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { mutationsTotal.WithLabelValues(opUpdate, resultLabel(err)).Inc() }()

	if s.indexOfID(student.ID, index) >= 0 {
		return fmt.Errorf("records.Update: id %q: %w", student.ID, ErrDuplicateID)
	}
	if err := s.checkIndex(opUpdate, index); err != nil {
		return err
	}

	next := clone(s.students)
	next[index] = student

	return s.commit(ctx, "records.Update", next)
}

// Delete removes the record at index; later records shift down by one.
func (s *Store) Delete(ctx context.Context, index int) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { mutationsTotal.WithLabelValues(opDelete, resultLabel(err)).Inc() }()

	if err := s.checkIndex(opDelete, index); err != nil {
		return err
	}

	next := make([]types.Student, 0, len(s.students)-1)
	next = append(next, s.students[:index]...)
	next = append(next, s.students[index+1:]...)

	return s.commit(ctx, "records.Delete", next)
}

// Subscribe registers l to be called after every successful mutation.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
}

// commit persists next and, only if that succeeds, makes it the current
// list.
func (s *Store) commit(ctx context.Context, op string, next []types.Student) error {
	raw, err := Encode(next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.logger.Error("persisting student records failed",
			zap.String("op", op),
			zap.String("key", s.key),
			zap.Error(err),
		)
		return fmt.Errorf("%s: set %q: %w", op, s.key, err)
	}

	s.students = next
	recordsGauge.Set(float64(len(next)))

	for _, l := range s.listeners {
		l(clone(next))
	}

	return nil
}

// indexOfID returns the position of the first record with id, skipping
// position skip, or -1.
func (s *Store) indexOfID(id string, skip int) int {
	for i, st := range s.students {
		if i != skip && st.ID == id {
			return i
		}
	}
	return -1
}

// checkIndex reports a stale or bogus position. That is a caller bug, so
// it is logged as well as returned.
func (s *Store) checkIndex(op string, index int) error {
	if index >= 0 && index < len(s.students) {
		return nil
	}

	s.logger.Warn("record index out of range",
		zap.String("op", op),
		zap.Int("index", index),
		zap.Int("len", len(s.students)),
	)
	return fmt.Errorf("records.%s: index %d of %d: %w", op, index, len(s.students), ErrIndexOutOfRange)
}

// Encode serializes a list as the JSON array stored under the key.
func Encode(students []types.Student) (string, error) {
	if students == nil {
		students = []types.Student{}
	}

	raw, err := json.Marshal(students)
	if err != nil {
		return "", fmt.Errorf("encode students: %w", err)
	}
	return string(raw), nil
}

// Decode parses a stored blob. A JSON null decodes to an empty list.
func Decode(raw string) ([]types.Student, error) {
	var students []types.Student
	if err := json.Unmarshal([]byte(raw), &students); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	if students == nil {
		students = []types.Student{}
	}
	return students, nil
}

func clone(students []types.Student) []types.Student {
	out := make([]types.Student, len(students))
	copy(out, students)
	return out
}
