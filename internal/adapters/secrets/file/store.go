package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

const (
	storeDirMode   = 0o700
	secretFileMode = 0o600
)

// Store keeps one password file per username below root.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Put(ctx context.Context, credentials domain.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForUsername(credentials.Username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(credentials.Password), secretFileMode); err != nil {
		return fmt.Errorf("write credentials for %q: %w", credentials.Username, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, username string) (domain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credentials{}, err
	}

	path, err := s.pathForUsername(username)
	if err != nil {
		return domain.Credentials{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Credentials{}, fmt.Errorf("credentials for %q: %w", username, domain.ErrSecretNotFound)
		}
		return domain.Credentials{}, fmt.Errorf("read credentials for %q: %w", username, err)
	}

	return domain.Credentials{Username: strings.TrimSpace(username), Password: string(data)}, nil
}

// Delete is idempotent.
func (s *Store) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForUsername(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete credentials for %q: %w", username, err)
	}

	return nil
}

func (s *Store) pathForUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "", domain.ErrMissingUsername
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." || strings.ContainsRune(cleaned, filepath.Separator) {
		return "", fmt.Errorf("invalid username %q", username)
	}

	return filepath.Join(s.root, cleaned), nil
}
