// Package store provides in-memory storage for named Lox scripts.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a script does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a script whose name is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Script represents a stored Lox source file.
type Script struct {
	Name        string    `json:"name"`
	UID         string    `json:"uid"`
	Description string    `json:"description,omitempty"`
	RevisionID  string    `json:"revisionId"`
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
	Source      string    `json:"source"`
}

// Store is a thread-safe in-memory storage for scripts. Callers receive copies;
// mutating a returned Script does not affect the store.
type Store struct {
	mu      sync.RWMutex
	scripts map[string]*Script

	revCounter int64
	now        func() time.Time
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		scripts: make(map[string]*Script),
		now:     time.Now,
	}
}

// CreateScript stores a new script under name.
func (s *Store) CreateScript(name, source, description string) (*Script, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scripts[name]; exists {
		return nil, fmt.Errorf("script %q: %w", name, ErrAlreadyExists)
	}

	now := s.now()
	sc := &Script{
		Name:        name,
		UID:         uuid.NewString(),
		Description: description,
		RevisionID:  s.nextRevision(),
		CreateTime:  now,
		UpdateTime:  now,
		Source:      source,
	}
	s.scripts[name] = sc
	cp := *sc
	return &cp, nil
}

// GetScript retrieves a script by name.
func (s *Store) GetScript(name string) (*Script, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.scripts[name]
	if !ok {
		return nil, fmt.Errorf("script %q: %w", name, ErrNotFound)
	}
	cp := *sc
	return &cp, nil
}

// ListScripts returns all scripts sorted by name.
func (s *Store) ListScripts() []*Script {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Script, 0, len(s.scripts))
	for _, sc := range s.scripts {
		cp := *sc
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UpdateScript replaces a script's source and bumps its revision. An empty
// description keeps the current one.
func (s *Store) UpdateScript(name, source, description string) (*Script, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scripts[name]
	if !ok {
		return nil, fmt.Errorf("script %q: %w", name, ErrNotFound)
	}

	sc.Source = source
	if description != "" {
		sc.Description = description
	}
	sc.RevisionID = s.nextRevision()
	sc.UpdateTime = s.now()

	cp := *sc
	return &cp, nil
}

// DeleteScript removes a script.
func (s *Store) DeleteScript(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scripts[name]; !ok {
		return fmt.Errorf("script %q: %w", name, ErrNotFound)
	}
	delete(s.scripts, name)
	return nil
}

// Len returns the number of stored scripts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scripts)
}

// nextRevision must be called with mu held.
func (s *Store) nextRevision() string {
	s.revCounter++
	return fmt.Sprintf("%06d-%s", s.revCounter, uuid.NewString()[:3])
}
