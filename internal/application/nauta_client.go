package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

// ProgramName is the command suggested to users when logout cannot reach the portal.
const ProgramName = "suitetecsa"

// NautaClient drives the network access session lifecycle. It is not safe for
// concurrent use. Close logs out, so a logged-in client can be released with
// defer client.Close().
type NautaClient struct {
	nauta   ports.Nauta
	store   ports.SessionStore
	creds   domain.Credentials
	logger  zerolog.Logger
	session *domain.Session
}

func NewNautaClient(nauta ports.Nauta, store ports.SessionStore, creds domain.Credentials, logger *zerolog.Logger) *NautaClient {
	return &NautaClient{
		nauta:  nauta,
		store:  store,
		creds:  creds,
		logger: componentLogger(logger, domain.PortalNauta),
	}
}

func (c *NautaClient) InitSession(ctx context.Context) error {
	session, err := c.nauta.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("create nauta session: %w", err)
	}

	if err := c.persist(ctx, session); err != nil {
		return err
	}

	c.logger.Debug().Str("session_id", session.ID).Msg("nauta session created")
	return nil
}

// IsLoggedIn reports whether a logged-in session is persisted, regardless of
// the session this client currently holds.
func (c *NautaClient) IsLoggedIn(ctx context.Context) (bool, error) {
	exists, err := c.store.Exists(ctx, domain.PortalNauta)
	if err != nil {
		return false, fmt.Errorf("check persisted nauta session: %w", err)
	}
	if !exists {
		return false, nil
	}

	session, err := c.store.Load(ctx, domain.PortalNauta)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load persisted nauta session: %w", err)
	}

	return session.LoggedIn(), nil
}

func (c *NautaClient) Login(ctx context.Context) (*NautaClient, error) {
	if err := c.creds.Validate(); err != nil {
		return nil, err
	}
	created := c.session == nil
	if created {
		if err := c.InitSession(ctx); err != nil {
			return nil, err
		}
	}

	attributeUUID, err := c.nauta.Login(ctx, *c.session, c.creds.Username, c.creds.Password)
	if err != nil {
		err = fmt.Errorf("login to nauta: %w", err)
		if created {
			return nil, errors.Join(err, c.discardSession(ctx))
		}
		return nil, err
	}

	if err := c.persist(ctx, c.session.WithAttributeUUID(attributeUUID)); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("username", c.creds.Username).Msg("nauta login succeeded")
	return c, nil
}

// UserCredit returns the available credit. Without a current session it runs
// on an ephemeral one that is never persisted and is dropped on return.
func (c *NautaClient) UserCredit(ctx context.Context) (string, error) {
	session, release, err := c.borrowSession(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	credit, err := c.nauta.UserCredit(ctx, session, c.creds.Username, c.creds.Password)
	if err != nil {
		return "", fmt.Errorf("get user credit: %w", err)
	}

	return credit, nil
}

// RemainingTime returns the connection time left, with the same ephemeral
// session handling as UserCredit.
func (c *NautaClient) RemainingTime(ctx context.Context) (string, error) {
	session, release, err := c.borrowSession(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	remaining, err := c.nauta.UserTime(ctx, session, c.creds.Username)
	if err != nil {
		return "", fmt.Errorf("get remaining time: %w", err)
	}

	return remaining, nil
}

// Logout closes the network session. The session is deleted only after the
// portal confirms; transport failures come back as *domain.LogoutError and
// leave the session in place so the logout can be retried.
func (c *NautaClient) Logout(ctx context.Context) error {
	if c.session == nil {
		return domain.ErrNoSession
	}

	if err := c.nauta.Logout(ctx, *c.session, c.creds.Username); err != nil {
		if errors.Is(err, domain.ErrTransport) {
			c.logger.Warn().Err(err).Msg("nauta logout failed on transport")
			return &domain.LogoutError{Program: ProgramName, Err: err}
		}
		return fmt.Errorf("logout from nauta: %w", err)
	}

	if err := c.store.Delete(ctx, domain.PortalNauta); err != nil {
		return fmt.Errorf("delete nauta session: %w", err)
	}
	c.session = nil

	c.logger.Debug().Str("username", c.creds.Username).Msg("nauta logout succeeded")
	return nil
}

// LoadLastSession replaces the current session with the persisted one.
func (c *NautaClient) LoadLastSession(ctx context.Context) error {
	session, err := c.store.Load(ctx, domain.PortalNauta)
	if err != nil {
		return fmt.Errorf("load last nauta session: %w", err)
	}

	c.session = &session
	return nil
}

// Close logs out the current session. Without a logged-in session there is
// nothing to close and it returns nil, so a deferred Close never masks an
// earlier Login error.
func (c *NautaClient) Close() error {
	if c.session == nil || !c.session.LoggedIn() {
		return nil
	}
	return c.Logout(context.Background())
}

func (c *NautaClient) Session() (domain.Session, bool) {
	if c.session == nil {
		return domain.Session{}, false
	}
	return c.session.Clone(), true
}

// Status gathers login state, credit and remaining time in one view.
func (c *NautaClient) Status(ctx context.Context) (AccountStatus, error) {
	status := AccountStatus{
		Username:   c.creds.Username,
		Portal:     domain.PortalNauta,
		HasSession: c.session != nil,
	}

	loggedIn, err := c.IsLoggedIn(ctx)
	if err != nil {
		return AccountStatus{}, err
	}
	status.LoggedIn = loggedIn

	if status.Credit, err = c.UserCredit(ctx); err != nil {
		return AccountStatus{}, err
	}
	if status.RemainingTime, err = c.RemainingTime(ctx); err != nil {
		return AccountStatus{}, err
	}
	status.Account.Credit = status.Credit
	status.Account.Time = status.RemainingTime

	return status, nil
}

func (c *NautaClient) borrowSession(ctx context.Context) (domain.Session, func(), error) {
	if c.session != nil {
		return *c.session, func() {}, nil
	}

	session, err := c.nauta.CreateSession(ctx)
	if err != nil {
		return domain.Session{}, nil, fmt.Errorf("create ephemeral nauta session: %w", err)
	}
	c.session = &session

	release := func() {
		c.session = nil
		c.logger.Debug().Str("session_id", session.ID).Msg("ephemeral nauta session disposed")
	}

	return session, release, nil
}

// discardSession drops a session that never logged in, in memory and in the store.
func (c *NautaClient) discardSession(ctx context.Context) error {
	c.session = nil
	if err := c.store.Delete(ctx, domain.PortalNauta); err != nil {
		return fmt.Errorf("discard nauta session: %w", err)
	}
	return nil
}

func (c *NautaClient) persist(ctx context.Context, session domain.Session) error {
	c.session = &session

	if err := c.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save nauta session: %w", err)
	}

	return nil
}
