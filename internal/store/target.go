package store

import (
	"context"
	"errors"
	"time"
)

const targetTimeout = 2 * time.Second

// FieldTarget is a picker target backed by a stored field. It satisfies the
// widget's Field and Valuer interfaces.
type FieldTarget struct {
	s    *Store
	name string
}

// Target returns the picker target for name. The name is validated on write.
func (s *Store) Target(name string) *FieldTarget {
	return &FieldTarget{s: s, name: name}
}

func (t *FieldTarget) Name() string { return t.name }

func (t *FieldTarget) SetValue(v string) error {
	if t == nil || t.s == nil {
		return errors.New("store: detached field target")
	}
	ctx, cancel := context.WithTimeout(context.Background(), targetTimeout)
	defer cancel()
	return t.s.SetField(ctx, t.name, v)
}

// Value returns the stored value, or "" when the field is unset.
func (t *FieldTarget) Value() string {
	if t == nil || t.s == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), targetTimeout)
	defer cancel()
	fv, err := t.s.Field(ctx, t.name)
	if err != nil {
		return ""
	}
	return fv.Value
}
