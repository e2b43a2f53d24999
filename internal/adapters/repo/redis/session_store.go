package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

const DefaultKeyPrefix = "suitetecsa:"

// SessionStore keeps one JSON-encoded session per portal under
// "<prefix>session:<portal>".
type SessionStore struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore returns a store on client. A zero ttl keeps sessions until
// they are deleted.
func NewSessionStore(client goredis.UniversalClient, prefix string, ttl time.Duration) (*SessionStore, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}

	return &SessionStore{client: client, prefix: prefix, ttl: ttl}, nil
}

type sessionPayload struct {
	ID            string             `json:"id"`
	Portal        string             `json:"portal"`
	Cookies       map[string]string  `json:"cookies,omitempty"`
	CSRF          string             `json:"csrf,omitempty"`
	AttributeUUID string             `json:"attribute_uuid,omitempty"`
	WLANUserIP    string             `json:"wlan_user_ip,omitempty"`
	Account       domain.AccountInfo `json:"account"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (s *SessionStore) Exists(ctx context.Context, portal domain.Portal) (bool, error) {
	count, err := s.client.Exists(ctx, s.key(portal)).Result()
	if err != nil {
		return false, fmt.Errorf("check redis session: %w", err)
	}

	return count > 0, nil
}

func (s *SessionStore) Load(ctx context.Context, portal domain.Portal) (domain.Session, error) {
	data, err := s.client.Get(ctx, s.key(portal)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("read redis session: %w", err)
	}

	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Session{}, fmt.Errorf("decode redis session: %w", err)
	}

	return domain.Session{
		ID:            payload.ID,
		Portal:        domain.Portal(payload.Portal),
		Cookies:       payload.Cookies,
		CSRF:          payload.CSRF,
		AttributeUUID: payload.AttributeUUID,
		WLANUserIP:    payload.WLANUserIP,
		Account:       payload.Account,
		CreatedAt:     payload.CreatedAt,
	}, nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if !session.Portal.Valid() {
		return fmt.Errorf("save session: unsupported portal %q", session.Portal)
	}

	data, err := json.Marshal(sessionPayload{
		ID:            session.ID,
		Portal:        string(session.Portal),
		Cookies:       session.Cookies,
		CSRF:          session.CSRF,
		AttributeUUID: session.AttributeUUID,
		WLANUserIP:    session.WLANUserIP,
		Account:       session.Account,
		CreatedAt:     session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode redis session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.Portal), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("write redis session: %w", err)
	}

	return nil
}

func (s *SessionStore) Delete(ctx context.Context, portal domain.Portal) error {
	if err := s.client.Del(ctx, s.key(portal)).Err(); err != nil {
		return fmt.Errorf("delete redis session: %w", err)
	}

	return nil
}

func (s *SessionStore) key(portal domain.Portal) string {
	return s.prefix + "session:" + string(portal)
}
