package services

import (
	"sync"

	"github.com/desertthunder/dzshuffled/internal/models"
)

// Session holds the credentials and identity shared by the API client and the authorization manager.
//
// It is created once and passed by reference. Only [AuthService] mutates it.
type Session struct {
	mu     sync.RWMutex
	token  string
	appID  string
	secret string
	port   int
	user   *models.User
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Token returns the current access token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) AppID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appID
}

func (s *Session) Secret() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secret
}

func (s *Session) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port
}

// User returns the cached user, or nil when the token has not been checked yet.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) configure(port int, secret, appID, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = port
	s.secret = secret
	s.appID = appID
	if s.token != token {
		s.user = nil
	}
	s.token = token
}

func (s *Session) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = nil
}

func (s *Session) setUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}
