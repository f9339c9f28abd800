package panel

import (
	"sync/atomic"
)

// Store holds the copy in use and swaps it on Reload, so staff can edit
// the panel file without restarting the bot.
type Store struct {
	loader  *Loader
	current atomic.Pointer[Copy]
}

// NewStore loads the copy once. A load error is returned as-is so startup
// fails on a broken panel file.
func NewStore(loader *Loader) (*Store, error) {
	c, err := loader.Load()
	if err != nil {
		return nil, err
	}
	s := &Store{loader: loader}
	s.current.Store(c)
	return s, nil
}

// Static returns a Store that always serves c and cannot reload.
func Static(c *Copy) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

// Current returns the copy in use.
func (s *Store) Current() *Copy { return s.current.Load() }

// Reload re-reads the panel file. On error the previous copy stays.
func (s *Store) Reload() error {
	if s.loader == nil {
		return nil
	}
	c, err := s.loader.Load()
	if err != nil {
		return err
	}
	s.current.Store(c)
	return nil
}
