package tui

import (
	"context"
	"time"

	"datepick/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
)

// inputTarget is the picker target for one form input. A selection lands in
// the input and, when a store is attached, in the stored field.
type inputTarget struct {
	name  string
	input *textinput.Model
	store *store.Store
}

func (t inputTarget) Value() string { return t.input.Value() }

func (t inputTarget) SetValue(v string) error {
	t.input.SetValue(v)
	t.input.CursorEnd()
	if t.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return t.store.SetField(ctx, t.name, v)
}
