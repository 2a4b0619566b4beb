package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

func TestCollectionAddDoesNotTouchReceiver(t *testing.T) {
	base := NewCollection([]string{"a", "b"})
	grown := base.Add("c")

	assert.Equal(t, []string{"a", "b"}, base.Items())
	assert.Equal(t, []string{"a", "b", "c"}, grown.Items())

	// appending to two siblings must not share storage
	left := base.Add("x")
	right := base.Add("y")
	assert.Equal(t, "x", left.Items()[2])
	assert.Equal(t, "y", right.Items()[2])
}

func TestNewCollectionCopiesInput(t *testing.T) {
	source := []string{"a"}
	c := NewCollection(source)
	source[0] = "mutated"
	assert.Equal(t, []string{"a"}, c.Items())

	items := c.Items()
	items[0] = "mutated"
	assert.Equal(t, []string{"a"}, c.Items())
}

func TestCollectionReplace(t *testing.T) {
	base := NewCollection([]string{"a", "b"})
	next, err := base.Replace(1, "z")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, next.Items())
	assert.Equal(t, []string{"a", "b"}, base.Items())

	_, err = base.Replace(5, "z")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCollectionRemoveRequiresConfirmation(t *testing.T) {
	base := NewCollection([]string{"a", "b", "c"})

	for name, confirm := range map[string]Confirmation{"nil": nil, "declined": Confirmed(false)} {
		t.Run(name, func(t *testing.T) {
			same, err := base.Remove(1, confirm)
			assert.True(t, errors.Is(err, appErrors.ErrConfirmationRequired))
			assert.Equal(t, []string{"a", "b", "c"}, same.Items())
		})
	}

	next, err := base.Remove(1, Confirmed(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, next.Items())
	assert.Equal(t, []string{"a", "b", "c"}, base.Items())
}

func TestCollectionRemoveOutOfRange(t *testing.T) {
	base := NewCollection([]string{"a"})
	_, err := base.Remove(-1, Confirmed(true))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCollectionIndexOf(t *testing.T) {
	c := NewCollection([]int{3, 5, 7})
	assert.Equal(t, 1, c.IndexOf(func(v int) bool { return v == 5 }))
	assert.Equal(t, -1, c.IndexOf(func(v int) bool { return v == 9 }))
}
