package ports

import (
	"context"

	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

// UserPortal is the stateless protocol for the account-management portal.
// Calls returning a domain.Session hand back a new value; the input is never
// modified.
type UserPortal interface {
	CreateSession(ctx context.Context) (domain.Session, error)
	Captcha(ctx context.Context, session domain.Session) ([]byte, error)
	Login(ctx context.Context, session domain.Session, username, password, captchaCode string) (domain.Session, error)
	Recharge(ctx context.Context, session domain.Session, code string) error
	Transfer(ctx context.Context, session domain.Session, amount, targetAccount, password string) error
	UserInfo(ctx context.Context, session domain.Session) (domain.Session, error)
	ChangePassword(ctx context.Context, session domain.Session, oldPassword, newPassword string) error
	ChangeEmailPassword(ctx context.Context, session domain.Session, oldPassword, newPassword string) error
	// Lasts returns the most recent records of one kind, most recent first.
	Lasts(ctx context.Context, session domain.Session, action domain.Action, large int) ([]domain.Record, error)
	Connections(ctx context.Context, session domain.Session, year, month int) ([]domain.Connection, error)
	Recharges(ctx context.Context, session domain.Session, year, month int) ([]domain.Recharge, error)
	Transfers(ctx context.Context, session domain.Session, year, month int) ([]domain.Transfer, error)
}

// Nauta is the stateless protocol for the network access portal.
type Nauta interface {
	CreateSession(ctx context.Context) (domain.Session, error)
	Login(ctx context.Context, session domain.Session, username, password string) (string, error)
	UserCredit(ctx context.Context, session domain.Session, username, password string) (string, error)
	UserTime(ctx context.Context, session domain.Session, username string) (string, error)
	Logout(ctx context.Context, session domain.Session, username string) error
}
