package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Store keeps user records in memory and mirrors them to a JSON file.
type Store struct {
	mu    sync.Mutex
	path  string
	users map[string]*User // user id -> record
	log   *slog.Logger
}

// NewStore loads the user file at path, creating an empty store when the
// file does not exist yet.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:  path,
		users: make(map[string]*User),
		log:   logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Create registers a new user and rewrites the user file.
func (s *Store) Create(username, password string) (*User, error) {
	if !Validate(username, password) {
		return nil, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	s.users[u.ID] = u

	if err := s.dump(); err != nil {
		delete(s.users, u.ID)
		return nil, err
	}

	s.log.Info("user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Authenticate returns the user matching the credentials, if any.
func (s *Store) Authenticate(username, password string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.matches(username, password) {
			return u, true
		}
	}
	return nil, false
}

// Get returns the user with the given id, if any.
func (s *Store) Get(id string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	return u, ok
}

// Count returns the number of registered users.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read user file: %w", err)
	}

	var records []*User
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse user file %s: %w", s.path, err)
	}
	for _, u := range records {
		s.users[u.ID] = u
	}
	s.log.Info("users loaded", "path", s.path, "count", len(s.users))
	return nil
}

// dump rewrites the whole user file. Caller holds the lock.
func (s *Store) dump() error {
	records := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		records = append(records, u)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write user file: %w", err)
	}
	return nil
}
