package ports

import (
	"context"

	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

// SessionStore keeps the last session of each portal.
type SessionStore interface {
	Exists(ctx context.Context, portal domain.Portal) (bool, error)
	Load(ctx context.Context, portal domain.Portal) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, portal domain.Portal) error
}
