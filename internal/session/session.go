// Package session holds per-session presentation state: the free-usage
// counter and the pending language-preference confirmation. This state
// belongs to the UI surfaces, not to the core pipeline, and is passed into
// the orchestrator boundary explicitly instead of living in globals.
package session

import "sync"

type state struct {
	queries         int
	language        string
	pendingLanguage string
}

type Manager struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string]*state
}

// NewManager creates a session manager. limit <= 0 means unlimited usage.
func NewManager(limit int) *Manager {
	return &Manager{limit: limit, sessions: make(map[string]*state)}
}

// Use consumes one free query for the session and reports whether the
// session is still within its limit.
func (m *Manager) Use(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(id)
	if m.limit > 0 && s.queries >= m.limit {
		return false
	}
	s.queries++
	return true
}

// Remaining reports how many free queries the session has left, or -1 when
// usage is unlimited.
func (m *Manager) Remaining(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.limit <= 0 {
		return -1
	}
	s, ok := m.sessions[id]
	if !ok {
		return m.limit
	}
	left := m.limit - s.queries
	if left < 0 {
		return 0
	}
	return left
}

// SuggestLanguage stores a detected language for the session until the user
// confirms or overrides it.
func (m *Manager) SuggestLanguage(id, lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(id).pendingLanguage = lang
}

// PendingLanguage returns the unconfirmed suggestion, if any.
func (m *Manager) PendingLanguage(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s.pendingLanguage
	}
	return ""
}

// ConfirmLanguage fixes the session's language preference and clears any
// pending suggestion.
func (m *Manager) ConfirmLanguage(id, lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(id)
	s.language = lang
	s.pendingLanguage = ""
}

// Language returns the confirmed language preference, empty if none.
func (m *Manager) Language(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s.language
	}
	return ""
}

func (m *Manager) Reset(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// get must be called with the write lock held.
func (m *Manager) get(id string) *state {
	s, ok := m.sessions[id]
	if !ok {
		s = &state{}
		m.sessions[id] = s
	}
	return s
}
