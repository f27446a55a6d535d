package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudent_Trimmed(t *testing.T) {
	in := Student{
		Name:    "\ufeff Jane Doe\u00a0",
		ID:      "\v101\t",
		Email:   "\u3000jane@example.com\u2028",
		Contact: " 5551234567 ",
	}

	got := in.Trimmed()

	assert.Equal(t, Student{Name: "Jane Doe", ID: "101", Email: "jane@example.com", Contact: "5551234567"}, got)
}

func TestIsSpace(t *testing.T) {
	for _, r := range "\t\n\v\f\r \u00a0\u1680\u2000\u200a\u2028\u2029\u202f\u205f\u3000\ufeff" {
		assert.True(t, IsSpace(r), "%U", r)
	}
	for _, r := range "a0_\u0085\u200b" {
		assert.False(t, IsSpace(r), "%U", r)
	}
}
