package ports

import (
	"context"

	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

type CredentialStore interface {
	Get(ctx context.Context, username string) (domain.Credentials, error)
	Put(ctx context.Context, credentials domain.Credentials) error
	Delete(ctx context.Context, username string) error
}
