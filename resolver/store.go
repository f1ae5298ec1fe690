package resolver

import "sync"

// Store holds the title and redirect maps shared by the workers of one batch.
// Writers for the same key race benignly: the last write wins.
type Store struct {
	mu        sync.RWMutex
	titles    map[string]string
	redirects map[string]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		titles:    make(map[string]string),
		redirects: make(map[string]string),
	}
}

// SetTitle records the display title for link.
func (s *Store) SetTitle(link, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles[link] = title
}

// Title returns the display title recorded for link.
func (s *Store) Title(link string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	title, ok := s.titles[link]
	return title, ok
}

// SetRedirect records that link resolved to target.
func (s *Store) SetRedirect(link, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirects[link] = target
}

// Redirect returns the canonical URL link redirected to, if any.
func (s *Store) Redirect(link string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target, ok := s.redirects[link]
	return target, ok
}

// Titles returns a copy of the title map.
func (s *Store) Titles() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.titles))
	for k, v := range s.titles {
		out[k] = v
	}
	return out
}

// Redirects returns a copy of the redirect map.
func (s *Store) Redirects() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.redirects))
	for k, v := range s.redirects {
		out[k] = v
	}
	return out
}
