// Package auth is the local credential service: a users.json file of
// bcrypt-hashed PINs. It knows nothing about caches or config; account
// deletion cascades are coordinated by the caller.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Credential errors.
var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	ErrInvalidPin    = errors.New("invalid PIN")
)

type userRecord struct {
	Username  string `json:"username"`
	PinHash   string `json:"pin_hash"`
	CreatedAt string `json:"created_at"`
}

type usersFile struct {
	Users []userRecord `json:"users"`
}

// Service stores credentials in a single JSON file.
type Service struct {
	path string
	mu   sync.Mutex
}

// New creates a credential service backed by dir/users.json.
func New(dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating auth directory: %w", err)
	}
	return &Service{path: filepath.Join(dir, "users.json")}, nil
}

// Register creates a new account. Hashing is CPU-bound; callers on a UI loop
// should run this off it.
func (s *Service) Register(username, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uf, err := s.load()
	if err != nil {
		return err
	}
	for _, u := range uf.Users {
		if u.Username == username {
			return ErrAlreadyExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing pin: %w", err)
	}

	uf.Users = append(uf.Users, userRecord{
		Username:  username,
		PinHash:   string(hash),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return s.save(uf)
}

// Verify checks a login attempt. Returns ErrNotFound for an unknown user and
// ErrInvalidPin for a bad PIN.
func (s *Service) Verify(username, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uf, err := s.load()
	if err != nil {
		return err
	}
	for _, u := range uf.Users {
		if u.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PinHash), []byte(pin)) != nil {
			return ErrInvalidPin
		}
		return nil
	}
	return ErrNotFound
}

// List returns all registered usernames in registration order.
func (s *Service) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uf, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(uf.Users))
	for _, u := range uf.Users {
		names = append(names, u.Username)
	}
	return names, nil
}

// Delete removes an account. Returns ErrNotFound when it does not exist.
func (s *Service) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uf, err := s.load()
	if err != nil {
		return err
	}
	kept := uf.Users[:0]
	for _, u := range uf.Users {
		if u.Username != username {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(uf.Users) {
		return ErrNotFound
	}
	uf.Users = kept
	return s.save(uf)
}

func (s *Service) load() (*usersFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &usersFile{}, nil
		}
		return nil, fmt.Errorf("reading users file: %w", err)
	}
	var uf usersFile
	if err := json.Unmarshal(data, &uf); err != nil {
		return nil, fmt.Errorf("parsing users file: %w", err)
	}
	return &uf, nil
}

func (s *Service) save(uf *usersFile) error {
	data, err := json.MarshalIndent(uf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling users file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing users file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing users file: %w", err)
	}
	return nil
}
