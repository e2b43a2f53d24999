package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

const (
	userSessionPath       = "/user/session"
	userCaptchaPath       = "/user/captcha"
	userLoginPath         = "/user/login"
	userRechargePath      = "/user/recharge"
	userTransferPath      = "/user/transfer"
	userInfoPath          = "/user/info"
	userPasswordPath      = "/user/password"
	userEmailPasswordPath = "/user/email-password"
	userLastsPath         = "/user/lasts"
)

// UserPortal implements ports.UserPortal on top of the gateway.
type UserPortal struct {
	Client Client
}

var _ ports.UserPortal = UserPortal{}

func NewUserPortal(client Client) UserPortal {
	return UserPortal{Client: client}
}

type sessionResponse struct {
	CSRF       string `json:"csrf"`
	WLANUserIP string `json:"wlan_user_ip"`
}

type accountPayload struct {
	Username    string `json:"username"`
	BlockDate   string `json:"block_date"`
	DeleteDate  string `json:"delete_date"`
	AccountType string `json:"account_type"`
	ServiceType string `json:"service_type"`
	Credit      string `json:"credit"`
	Time        string `json:"time"`
	MailAccount string `json:"mail_account"`
}

type accountResponse struct {
	CSRF    string         `json:"csrf"`
	Account accountPayload `json:"account"`
}

type loginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CaptchaCode string `json:"captcha_code,omitempty"`
}

type rechargeRequest struct {
	Code string `json:"code"`
}

type transferRequest struct {
	Amount   string `json:"amount"`
	Account  string `json:"account"`
	Password string `json:"password"`
}

type passwordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type connectionPayload struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`
	Upload          string    `json:"upload"`
	Download        string    `json:"download"`
	Amount          string    `json:"amount"`
}

type rechargePayload struct {
	Date    time.Time `json:"date"`
	Amount  string    `json:"amount"`
	Channel string    `json:"channel"`
	Type    string    `json:"type"`
}

type transferPayload struct {
	Date               time.Time `json:"date"`
	Amount             string    `json:"amount"`
	DestinationAccount string    `json:"destination_account"`
}

type historyResponse struct {
	Connections []connectionPayload `json:"connections"`
	Recharges   []rechargePayload   `json:"recharges"`
	Transfers   []transferPayload   `json:"transfers"`
}

func (p UserPortal) CreateSession(ctx context.Context) (domain.Session, error) {
	var payload sessionResponse
	resp, err := p.Client.doJSON(ctx, "create user portal session", request{method: http.MethodPost, path: userSessionPath}, &payload)
	if err != nil {
		return domain.Session{}, err
	}

	session := p.Client.newSession(domain.PortalUser).WithCookies(resp.cookies)
	session.CSRF = payload.CSRF
	return session, nil
}

func (p UserPortal) Captcha(ctx context.Context, session domain.Session) ([]byte, error) {
	resp, err := p.Client.do(ctx, "get captcha", request{method: http.MethodGet, path: userCaptchaPath, session: &session})
	if err != nil {
		return nil, err
	}
	if len(resp.body) == 0 {
		return nil, fmt.Errorf("get captcha: %w: empty image", domain.ErrPortalRejected)
	}

	return resp.body, nil
}

func (p UserPortal) Login(ctx context.Context, session domain.Session, username, password, captchaCode string) (domain.Session, error) {
	var payload accountResponse
	resp, err := p.Client.doJSON(ctx, "login", request{
		method:  http.MethodPost,
		path:    userLoginPath,
		session: &session,
		body:    loginRequest{Username: username, Password: password, CaptchaCode: captchaCode},
	}, &payload)
	if err != nil {
		return domain.Session{}, err
	}

	return applyAccount(session, resp, payload), nil
}

func (p UserPortal) Recharge(ctx context.Context, session domain.Session, code string) error {
	_, err := p.Client.doJSON(ctx, "recharge", request{
		method:  http.MethodPost,
		path:    userRechargePath,
		session: &session,
		body:    rechargeRequest{Code: code},
	}, nil)
	return err
}

func (p UserPortal) Transfer(ctx context.Context, session domain.Session, amount, targetAccount, password string) error {
	_, err := p.Client.doJSON(ctx, "transfer", request{
		method:  http.MethodPost,
		path:    userTransferPath,
		session: &session,
		body:    transferRequest{Amount: amount, Account: targetAccount, Password: password},
	}, nil)
	return err
}

func (p UserPortal) UserInfo(ctx context.Context, session domain.Session) (domain.Session, error) {
	var payload accountResponse
	resp, err := p.Client.doJSON(ctx, "get user info", request{method: http.MethodGet, path: userInfoPath, session: &session}, &payload)
	if err != nil {
		return domain.Session{}, err
	}

	return applyAccount(session, resp, payload), nil
}

func (p UserPortal) ChangePassword(ctx context.Context, session domain.Session, oldPassword, newPassword string) error {
	_, err := p.Client.doJSON(ctx, "change password", request{
		method:  http.MethodPost,
		path:    userPasswordPath,
		session: &session,
		body:    passwordRequest{OldPassword: oldPassword, NewPassword: newPassword},
	}, nil)
	return err
}

func (p UserPortal) ChangeEmailPassword(ctx context.Context, session domain.Session, oldPassword, newPassword string) error {
	_, err := p.Client.doJSON(ctx, "change email password", request{
		method:  http.MethodPost,
		path:    userEmailPasswordPath,
		session: &session,
		body:    passwordRequest{OldPassword: oldPassword, NewPassword: newPassword},
	}, nil)
	return err
}

func (p UserPortal) Lasts(ctx context.Context, session domain.Session, action domain.Action, large int) ([]domain.Record, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedAction, action)
	}
	if large <= 0 {
		large = domain.DefaultLastsLarge
	}

	query := url.Values{}
	query.Set("action", string(action))
	query.Set("large", strconv.Itoa(large))

	var payload historyResponse
	if _, err := p.Client.doJSON(ctx, "get last "+string(action), request{
		method:  http.MethodGet,
		path:    userLastsPath,
		query:   query,
		session: &session,
	}, &payload); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, large)
	switch action {
	case domain.ActionConnections:
		for _, connection := range toConnections(payload.Connections) {
			records = append(records, connection)
		}
	case domain.ActionRecharges:
		for _, recharge := range toRecharges(payload.Recharges) {
			records = append(records, recharge)
		}
	case domain.ActionTransfers:
		for _, transfer := range toTransfers(payload.Transfers) {
			records = append(records, transfer)
		}
	}
	if len(records) > large {
		records = records[:large]
	}

	return records, nil
}

func (p UserPortal) Connections(ctx context.Context, session domain.Session, year, month int) ([]domain.Connection, error) {
	payload, err := p.history(ctx, session, domain.ActionConnections, year, month)
	if err != nil {
		return nil, err
	}
	return toConnections(payload.Connections), nil
}

func (p UserPortal) Recharges(ctx context.Context, session domain.Session, year, month int) ([]domain.Recharge, error) {
	payload, err := p.history(ctx, session, domain.ActionRecharges, year, month)
	if err != nil {
		return nil, err
	}
	return toRecharges(payload.Recharges), nil
}

func (p UserPortal) Transfers(ctx context.Context, session domain.Session, year, month int) ([]domain.Transfer, error) {
	payload, err := p.history(ctx, session, domain.ActionTransfers, year, month)
	if err != nil {
		return nil, err
	}
	return toTransfers(payload.Transfers), nil
}

// history validates the period locally so a bad month never reaches the portal.
func (p UserPortal) history(ctx context.Context, session domain.Session, action domain.Action, year, month int) (historyResponse, error) {
	if err := (domain.Period{Year: year, Month: month}).Validate(); err != nil {
		return historyResponse{}, fmt.Errorf("%w: %04d-%02d", err, year, month)
	}

	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))

	var payload historyResponse
	if _, err := p.Client.doJSON(ctx, "get "+string(action), request{
		method:  http.MethodGet,
		path:    "/user/" + string(action),
		query:   query,
		session: &session,
	}, &payload); err != nil {
		return historyResponse{}, err
	}

	return payload, nil
}

func applyAccount(session domain.Session, resp response, payload accountResponse) domain.Session {
	next := session.WithCookies(resp.cookies)
	if payload.CSRF != "" {
		next.CSRF = payload.CSRF
	}
	next.Account = domain.AccountInfo{
		Username:    payload.Account.Username,
		BlockDate:   payload.Account.BlockDate,
		DeleteDate:  payload.Account.DeleteDate,
		AccountType: payload.Account.AccountType,
		ServiceType: payload.Account.ServiceType,
		Credit:      payload.Account.Credit,
		Time:        payload.Account.Time,
		MailAccount: payload.Account.MailAccount,
	}
	return next
}

func toConnections(payloads []connectionPayload) []domain.Connection {
	connections := make([]domain.Connection, 0, len(payloads))
	for _, payload := range payloads {
		duration := time.Duration(payload.DurationSeconds) * time.Second
		if duration == 0 && payload.End.After(payload.Start) {
			duration = payload.End.Sub(payload.Start)
		}
		connections = append(connections, domain.Connection{
			Start:    payload.Start,
			End:      payload.End,
			Duration: duration,
			Upload:   payload.Upload,
			Download: payload.Download,
			Amount:   payload.Amount,
		})
	}
	return connections
}

func toRecharges(payloads []rechargePayload) []domain.Recharge {
	recharges := make([]domain.Recharge, 0, len(payloads))
	for _, payload := range payloads {
		recharges = append(recharges, domain.Recharge{
			Date:    payload.Date,
			Amount:  payload.Amount,
			Channel: payload.Channel,
			Type:    payload.Type,
		})
	}
	return recharges
}

func toTransfers(payloads []transferPayload) []domain.Transfer {
	transfers := make([]domain.Transfer, 0, len(payloads))
	for _, payload := range payloads {
		transfers = append(transfers, domain.Transfer{
			Date:               payload.Date,
			Amount:             payload.Amount,
			DestinationAccount: payload.DestinationAccount,
		})
	}
	return transfers
}
