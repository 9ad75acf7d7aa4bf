package client

import "sync"

// User is the authenticated account as reported by the store.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session holds the bearer token and user for one client lifetime. It
// replaces ambient token storage: it is created explicitly, threaded
// into the client, and cleared on 401 or logout.
type Session struct {
	mu    sync.Mutex
	token string
	user  User
}

func NewSession() *Session {
	return &Session{}
}

// SetAuth installs the token and user after a successful login or
// register.
func (s *Session) SetAuth(token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) User() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Clear tears the session down. Called on logout and on any 401.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = User{}
}
