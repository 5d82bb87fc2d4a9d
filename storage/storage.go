// Package storage is a small persistence interface for a library
// of named spec sources.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Storage stores spec sources by name.
type Storage interface {
	// Put stores the source, replacing any previous source with
	// the same name.
	Put(ctx context.Context, name string, src []byte) error

	// Get returns the source or a *NotFound error.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the named source.  Deleting something that
	// isn't there isn't an error.
	Delete(ctx context.Context, name string) error

	// List returns the names in ascending order.
	List(ctx context.Context) ([]string, error)
}

// NotFound is returned by Get for a name that isn't stored.
type NotFound struct {
	Name string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("spec %q not found", e.Name)
}

// BadName is returned for a name that can't be stored.
type BadName struct {
	Name string
}

func (e *BadName) Error() string {
	return fmt.Sprintf("bad spec name %q", e.Name)
}

// CheckName returns a *BadName unless the name is usable.
func CheckName(name string) error {
	if name == "" {
		return &BadName{name}
	}
	return nil
}

// Mem is an in-memory Storage.
type Mem struct {
	sync.RWMutex
	srcs map[string][]byte
}

func NewMem() *Mem {
	return &Mem{
		srcs: make(map[string][]byte),
	}
}

func (s *Mem) Put(ctx context.Context, name string, src []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	s.Lock()
	s.srcs[name] = append([]byte(nil), src...)
	s.Unlock()
	return nil
}

func (s *Mem) Get(ctx context.Context, name string) ([]byte, error) {
	s.RLock()
	src, have := s.srcs[name]
	s.RUnlock()
	if !have {
		return nil, &NotFound{name}
	}
	return append([]byte(nil), src...), nil
}

func (s *Mem) Delete(ctx context.Context, name string) error {
	s.Lock()
	delete(s.srcs, name)
	s.Unlock()
	return nil
}

func (s *Mem) List(ctx context.Context) ([]string, error) {
	s.RLock()
	acc := make([]string, 0, len(s.srcs))
	for name := range s.srcs {
		acc = append(acc, name)
	}
	s.RUnlock()
	sort.Strings(acc)
	return acc, nil
}
