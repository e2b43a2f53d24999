package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/suitetecsa/suitetecsa-cli/internal/adapters/secrets/file"
	passstore "github.com/suitetecsa/suitetecsa-cli/internal/adapters/secrets/pass"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

// Store tries the primary credential backend and falls back to the secondary
// one when the primary fails for a reason other than cancellation or bad input.
type Store struct {
	primary  ports.CredentialStore
	fallback ports.CredentialStore
}

var _ ports.CredentialStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary credential store is nil")
	errNilFallbackStore = errors.New("fallback credential store is nil")
)

func NewStore(primary ports.CredentialStore, fallback ports.CredentialStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.CredentialStore, fallback ports.CredentialStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(), filestore.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, credentials domain.Credentials) error {
	err := s.primary.Put(ctx, credentials)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, credentials)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, username string) (domain.Credentials, error) {
	credentials, err := s.primary.Get(ctx, username)
	if err == nil {
		return credentials, nil
	}
	if shouldSkipFallback(err) {
		return domain.Credentials{}, err
	}

	fallbackCredentials, fallbackErr := s.fallback.Get(ctx, username)
	if fallbackErr == nil {
		return fallbackCredentials, nil
	}

	return domain.Credentials{}, fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// Delete removes the credentials from both backends so a stale copy never
// shadows a later Put.
func (s *Store) Delete(ctx context.Context, username string) error {
	err := s.primary.Delete(ctx, username)
	if err != nil && shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, username)
	switch {
	case err == nil && fallbackErr == nil:
		return nil
	case err == nil:
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	case fallbackErr == nil:
		return nil
	}

	return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrMissingUsername)
}
