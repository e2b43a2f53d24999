package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

// UserPortalClient drives account-management operations against the user
// portal. It is not safe for concurrent use.
type UserPortalClient struct {
	portal  ports.UserPortal
	store   ports.SessionStore
	creds   domain.Credentials
	logger  zerolog.Logger
	session *domain.Session
}

func NewUserPortalClient(portal ports.UserPortal, store ports.SessionStore, creds domain.Credentials, logger *zerolog.Logger) *UserPortalClient {
	return &UserPortalClient{
		portal: portal,
		store:  store,
		creds:  creds,
		logger: componentLogger(logger, domain.PortalUser),
	}
}

// InitSession always creates and persists a fresh session.
func (c *UserPortalClient) InitSession(ctx context.Context) error {
	session, err := c.portal.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("create user portal session: %w", err)
	}

	if err := c.persist(ctx, session); err != nil {
		return err
	}

	c.logger.Debug().Str("session_id", session.ID).Msg("user portal session created")
	return nil
}

// Captcha returns the login captcha image tied to the current session,
// creating a session first when none exists.
func (c *UserPortalClient) Captcha(ctx context.Context) ([]byte, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	image, err := c.portal.Captcha(ctx, *c.session)
	if err != nil {
		return nil, fmt.Errorf("get captcha: %w", err)
	}

	return image, nil
}

func (c *UserPortalClient) Login(ctx context.Context, captchaCode string) (*UserPortalClient, error) {
	if err := c.creds.Validate(); err != nil {
		return nil, err
	}
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	session, err := c.portal.Login(ctx, *c.session, c.creds.Username, c.creds.Password, captchaCode)
	if err != nil {
		return nil, fmt.Errorf("login to user portal: %w", err)
	}

	if err := c.persist(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("username", c.creds.Username).Msg("user portal login succeeded")
	return c, nil
}

// Recharge submits a recharge code, then refreshes the account info because
// the recharge response does not carry the new balance.
func (c *UserPortalClient) Recharge(ctx context.Context, code string) error {
	session, err := c.requireSession()
	if err != nil {
		return err
	}

	if err := c.portal.Recharge(ctx, session, code); err != nil {
		return fmt.Errorf("recharge account: %w", err)
	}

	return c.refresh(ctx, session)
}

func (c *UserPortalClient) Transfer(ctx context.Context, amount, targetAccount string) error {
	session, err := c.requireSession()
	if err != nil {
		return err
	}

	if err := c.portal.Transfer(ctx, session, amount, targetAccount, c.creds.Password); err != nil {
		return fmt.Errorf("transfer balance: %w", err)
	}

	return c.refresh(ctx, session)
}

func (c *UserPortalClient) ChangePassword(ctx context.Context, newPassword string) error {
	session, err := c.requireSession()
	if err != nil {
		return err
	}

	if err := c.portal.ChangePassword(ctx, session, c.creds.Password, newPassword); err != nil {
		return fmt.Errorf("change account password: %w", err)
	}

	return nil
}

func (c *UserPortalClient) ChangeEmailPassword(ctx context.Context, newPassword string) error {
	session, err := c.requireSession()
	if err != nil {
		return err
	}

	if err := c.portal.ChangeEmailPassword(ctx, session, c.creds.Password, newPassword); err != nil {
		return fmt.Errorf("change email password: %w", err)
	}

	return nil
}

// Lasts returns the last `large` records of the given kind. A non-positive
// large falls back to domain.DefaultLastsLarge.
func (c *UserPortalClient) Lasts(ctx context.Context, action domain.Action, large int) ([]domain.Record, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	if large <= 0 {
		large = domain.DefaultLastsLarge
	}

	records, err := c.portal.Lasts(ctx, session, action, large)
	if err != nil {
		return nil, fmt.Errorf("get last %s: %w", action, err)
	}

	return records, nil
}

func (c *UserPortalClient) Connections(ctx context.Context, year, month int) ([]domain.Connection, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, err
	}

	connections, err := c.portal.Connections(ctx, session, year, month)
	if err != nil {
		return nil, fmt.Errorf("get connections: %w", err)
	}
	if connections == nil {
		connections = []domain.Connection{}
	}

	return connections, nil
}

func (c *UserPortalClient) Recharges(ctx context.Context, year, month int) ([]domain.Recharge, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, err
	}

	recharges, err := c.portal.Recharges(ctx, session, year, month)
	if err != nil {
		return nil, fmt.Errorf("get recharges: %w", err)
	}
	if recharges == nil {
		recharges = []domain.Recharge{}
	}

	return recharges, nil
}

func (c *UserPortalClient) Transfers(ctx context.Context, year, month int) ([]domain.Transfer, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, err
	}

	transfers, err := c.portal.Transfers(ctx, session, year, month)
	if err != nil {
		return nil, fmt.Errorf("get transfers: %w", err)
	}
	if transfers == nil {
		transfers = []domain.Transfer{}
	}

	return transfers, nil
}

// LoadLastSession replaces the current session with the persisted one.
func (c *UserPortalClient) LoadLastSession(ctx context.Context) error {
	session, err := c.store.Load(ctx, domain.PortalUser)
	if err != nil {
		return fmt.Errorf("load last user portal session: %w", err)
	}

	c.session = &session
	return nil
}

// Close does nothing: the user portal client holds no resource that needs
// releasing, and closing it does not log out or clear the persisted session.
func (c *UserPortalClient) Close() error {
	return nil
}

func (c *UserPortalClient) Session() (domain.Session, bool) {
	if c.session == nil {
		return domain.Session{}, false
	}
	return c.session.Clone(), true
}

func (c *UserPortalClient) Status() AccountStatus {
	status := AccountStatus{
		Username: c.creds.Username,
		Portal:   domain.PortalUser,
	}
	if c.session == nil {
		return status
	}

	status.HasSession = true
	status.Account = c.session.Account
	status.Credit = c.session.Account.Credit
	status.RemainingTime = c.session.Account.Time
	if status.Account.Username != "" {
		status.Username = status.Account.Username
	}

	return status
}

// The accessors below report false when no session exists; they never create one.

func (c *UserPortalClient) BlockDate() (string, bool) {
	return c.accountField(func(a domain.AccountInfo) string { return a.BlockDate })
}

func (c *UserPortalClient) DeleteDate() (string, bool) {
	return c.accountField(func(a domain.AccountInfo) string { return a.DeleteDate })
}

func (c *UserPortalClient) AccountType() (string, bool) {
	return c.accountField(func(a domain.AccountInfo) string { return a.AccountType })
}

func (c *UserPortalClient) ServiceType() (string, bool) {
	return c.accountField(func(a domain.AccountInfo) string { return a.ServiceType })
}

func (c *UserPortalClient) Credit() (string, bool) {
	return c.accountField(func(a domain.AccountInfo) string { return a.Credit })
}

func (c *UserPortalClient) Time() (string, bool) {
	return c.accountField(func(a domain.AccountInfo) string { return a.Time })
}

func (c *UserPortalClient) MailAccount() (string, bool) {
	return c.accountField(func(a domain.AccountInfo) string { return a.MailAccount })
}

func (c *UserPortalClient) accountField(get func(domain.AccountInfo) string) (string, bool) {
	if c.session == nil {
		return "", false
	}
	return get(c.session.Account), true
}

func (c *UserPortalClient) ensureSession(ctx context.Context) error {
	if c.session != nil {
		return nil
	}
	return c.InitSession(ctx)
}

func (c *UserPortalClient) requireSession() (domain.Session, error) {
	if c.session == nil {
		return domain.Session{}, domain.ErrNoSession
	}
	return *c.session, nil
}

func (c *UserPortalClient) refresh(ctx context.Context, session domain.Session) error {
	refreshed, err := c.portal.UserInfo(ctx, session)
	if err != nil {
		return fmt.Errorf("refresh user info: %w", err)
	}

	return c.persist(ctx, refreshed)
}

// persist swaps the session in as the current one, then saves it.
func (c *UserPortalClient) persist(ctx context.Context, session domain.Session) error {
	c.session = &session

	if err := c.store.Save(ctx, session); err != nil {
		return fmt.Errorf("save user portal session: %w", err)
	}

	return nil
}
