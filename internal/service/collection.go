package service

import (
	"fmt"

	appErrors "github.com/noah-isme/smart-edu-api/pkg/errors"
)

// Confirmation is asked before a destructive change. Returning false aborts the change.
type Confirmation func() bool

// Confirmed returns a Confirmation that answers ok.
func Confirmed(ok bool) Confirmation {
	return func() bool { return ok }
}

// Collection is an immutable ordered list. Every change returns a new Collection and the
// receiver's backing array is never written.
type Collection[T any] struct {
	items []T
}

// NewCollection copies items into a new collection.
func NewCollection[T any](items []T) Collection[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return Collection[T]{items: cp}
}

// Len returns the number of items.
func (c Collection[T]) Len() int { return len(c.items) }

// At returns the item at index.
func (c Collection[T]) At(index int) (T, error) {
	var zero T
	if err := c.checkIndex(index); err != nil {
		return zero, err
	}
	return c.items[index], nil
}

// Items returns a copy of the items.
func (c Collection[T]) Items() []T {
	cp := make([]T, len(c.items))
	copy(cp, c.items)
	return cp
}

// Add returns a new collection with item appended.
func (c Collection[T]) Add(item T) Collection[T] {
	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)
	return Collection[T]{items: append(next, item)}
}

// Replace returns a new collection with the item at index swapped for item.
func (c Collection[T]) Replace(index int, item T) (Collection[T], error) {
	if err := c.checkIndex(index); err != nil {
		return c, err
	}
	next := c.Items()
	next[index] = item
	return Collection[T]{items: next}, nil
}

// Remove returns a new collection without the item at index once confirm agrees.
func (c Collection[T]) Remove(index int, confirm Confirmation) (Collection[T], error) {
	if err := c.checkIndex(index); err != nil {
		return c, err
	}
	if confirm == nil || !confirm() {
		return c, appErrors.ErrConfirmationRequired
	}
	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:index]...)
	next = append(next, c.items[index+1:]...)
	return Collection[T]{items: next}, nil
}

// IndexOf returns the index of the first item matching pred, or -1.
func (c Collection[T]) IndexOf(pred func(T) bool) int {
	for i, item := range c.items {
		if pred(item) {
			return i
		}
	}
	return -1
}

func (c Collection[T]) checkIndex(index int) error {
	if index < 0 || index >= len(c.items) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no item at index %d", index))
	}
	return nil
}
