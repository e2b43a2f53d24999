package application

import (
	"context"
	"fmt"

	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

type inMemorySessionStore struct {
	sessions map[domain.Portal]domain.Session
	saves    int
	deletes  int
	saveErr  error
}

func newInMemorySessionStore() *inMemorySessionStore {
	return &inMemorySessionStore{sessions: map[domain.Portal]domain.Session{}}
}

func (s *inMemorySessionStore) Exists(_ context.Context, portal domain.Portal) (bool, error) {
	_, ok := s.sessions[portal]
	return ok, nil
}

func (s *inMemorySessionStore) Load(_ context.Context, portal domain.Portal) (domain.Session, error) {
	session, ok := s.sessions[portal]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *inMemorySessionStore) Save(_ context.Context, session domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.sessions[session.Portal] = session.Clone()
	return nil
}

func (s *inMemorySessionStore) Delete(_ context.Context, portal domain.Portal) error {
	s.deletes++
	delete(s.sessions, portal)
	return nil
}

type fakeUserPortal struct {
	created      int
	account      domain.AccountInfo
	loginErr     error
	rechargeErr  error
	recharged    []string
	transfers    []string
	passwordOps  []string
	lastsAction  domain.Action
	lastsLarge   int
	records      []domain.Record
	connections  []domain.Connection
	infoRequests int
}

func (p *fakeUserPortal) CreateSession(_ context.Context) (domain.Session, error) {
	p.created++
	return domain.Session{
		ID:      fmt.Sprintf("up-%d", p.created),
		Portal:  domain.PortalUser,
		Cookies: map[string]string{"session": "anonymous"},
	}, nil
}

func (p *fakeUserPortal) Captcha(_ context.Context, session domain.Session) ([]byte, error) {
	return []byte("captcha-for-" + session.ID), nil
}

func (p *fakeUserPortal) Login(_ context.Context, session domain.Session, username, password, captchaCode string) (domain.Session, error) {
	if p.loginErr != nil {
		return domain.Session{}, p.loginErr
	}
	if captchaCode != "1234" {
		return domain.Session{}, domain.ErrInvalidCaptcha
	}
	account := p.account
	account.Username = username
	return domain.Session{
		ID:      session.ID,
		Portal:  domain.PortalUser,
		Cookies: map[string]string{"session": "authenticated"},
		CSRF:    "csrf-" + password,
		Account: account,
	}, nil
}

func (p *fakeUserPortal) Recharge(_ context.Context, _ domain.Session, code string) error {
	if p.rechargeErr != nil {
		return p.rechargeErr
	}
	p.recharged = append(p.recharged, code)
	p.account.Credit = "$25.00 CUP"
	return nil
}

func (p *fakeUserPortal) Transfer(_ context.Context, _ domain.Session, amount, targetAccount, password string) error {
	p.transfers = append(p.transfers, amount+"->"+targetAccount+"/"+password)
	p.account.Credit = "$5.00 CUP"
	return nil
}

func (p *fakeUserPortal) UserInfo(_ context.Context, session domain.Session) (domain.Session, error) {
	p.infoRequests++
	next := session.Clone()
	username := next.Account.Username
	next.Account = p.account
	next.Account.Username = username
	return next, nil
}

func (p *fakeUserPortal) ChangePassword(_ context.Context, _ domain.Session, oldPassword, newPassword string) error {
	p.passwordOps = append(p.passwordOps, "account:"+oldPassword+"->"+newPassword)
	return nil
}

func (p *fakeUserPortal) ChangeEmailPassword(_ context.Context, _ domain.Session, oldPassword, newPassword string) error {
	p.passwordOps = append(p.passwordOps, "email:"+oldPassword+"->"+newPassword)
	return nil
}

func (p *fakeUserPortal) Lasts(_ context.Context, _ domain.Session, action domain.Action, large int) ([]domain.Record, error) {
	if !action.Valid() {
		return nil, domain.ErrUnsupportedAction
	}
	p.lastsAction = action
	p.lastsLarge = large
	return p.records, nil
}

func (p *fakeUserPortal) Connections(_ context.Context, _ domain.Session, year, month int) ([]domain.Connection, error) {
	if err := (domain.Period{Year: year, Month: month}).Validate(); err != nil {
		return nil, err
	}
	return p.connections, nil
}

func (p *fakeUserPortal) Recharges(_ context.Context, _ domain.Session, _, _ int) ([]domain.Recharge, error) {
	return nil, nil
}

func (p *fakeUserPortal) Transfers(_ context.Context, _ domain.Session, _, _ int) ([]domain.Transfer, error) {
	return []domain.Transfer{{Amount: "$1.00", DestinationAccount: "friend@nauta.com.cu"}}, nil
}

type fakeNauta struct {
	created    int
	logins     int
	logouts    int
	credit     string
	remaining  string
	creditErr  error
	timeErr    error
	logoutErr  error
	lastLogout domain.Session
}

func (n *fakeNauta) CreateSession(_ context.Context) (domain.Session, error) {
	n.created++
	return domain.Session{
		ID:         fmt.Sprintf("nauta-%d", n.created),
		Portal:     domain.PortalNauta,
		CSRF:       "csrfhw",
		WLANUserIP: "10.0.0.1",
	}, nil
}

func (n *fakeNauta) Login(_ context.Context, _ domain.Session, username, password string) (string, error) {
	if password != "p" {
		return "", domain.ErrInvalidCredentials
	}
	n.logins++
	return "ATTR-" + username, nil
}

func (n *fakeNauta) UserCredit(_ context.Context, _ domain.Session, _, _ string) (string, error) {
	if n.creditErr != nil {
		return "", n.creditErr
	}
	return n.credit, nil
}

func (n *fakeNauta) UserTime(_ context.Context, _ domain.Session, _ string) (string, error) {
	if n.timeErr != nil {
		return "", n.timeErr
	}
	return n.remaining, nil
}

func (n *fakeNauta) Logout(_ context.Context, session domain.Session, _ string) error {
	n.lastLogout = session
	if n.logoutErr != nil {
		return n.logoutErr
	}
	n.logouts++
	return nil
}
