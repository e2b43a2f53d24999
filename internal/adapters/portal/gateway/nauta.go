package gateway

import (
	"context"
	"net/http"

	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

const (
	nautaSessionPath = "/nauta/session"
	nautaLoginPath   = "/nauta/login"
	nautaCreditPath  = "/nauta/credit"
	nautaTimePath    = "/nauta/time"
	nautaLogoutPath  = "/nauta/logout"
)

// Nauta implements ports.Nauta on top of the gateway.
type Nauta struct {
	Client Client
}

var _ ports.Nauta = Nauta{}

func NewNauta(client Client) Nauta {
	return Nauta{Client: client}
}

type nautaAccountRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password,omitempty"`
	AttributeUUID string `json:"attribute_uuid,omitempty"`
	WLANUserIP    string `json:"wlan_user_ip,omitempty"`
}

type nautaLoginResponse struct {
	AttributeUUID string `json:"attribute_uuid"`
}

type nautaCreditResponse struct {
	Credit string `json:"credit"`
}

type nautaTimeResponse struct {
	Time string `json:"time"`
}

func (n Nauta) CreateSession(ctx context.Context) (domain.Session, error) {
	var payload sessionResponse
	resp, err := n.Client.doJSON(ctx, "create nauta session", request{method: http.MethodPost, path: nautaSessionPath}, &payload)
	if err != nil {
		return domain.Session{}, err
	}

	session := n.Client.newSession(domain.PortalNauta).WithCookies(resp.cookies)
	session.CSRF = payload.CSRF
	session.WLANUserIP = payload.WLANUserIP
	return session, nil
}

func (n Nauta) Login(ctx context.Context, session domain.Session, username, password string) (string, error) {
	var payload nautaLoginResponse
	if _, err := n.Client.doJSON(ctx, "nauta login", request{
		method:  http.MethodPost,
		path:    nautaLoginPath,
		session: &session,
		body:    nautaAccountRequest{Username: username, Password: password, WLANUserIP: session.WLANUserIP},
	}, &payload); err != nil {
		return "", err
	}
	if payload.AttributeUUID == "" {
		return "", errMissingField("nauta login", "attribute_uuid")
	}

	return payload.AttributeUUID, nil
}

func (n Nauta) UserCredit(ctx context.Context, session domain.Session, username, password string) (string, error) {
	var payload nautaCreditResponse
	if _, err := n.Client.doJSON(ctx, "get nauta credit", request{
		method:  http.MethodPost,
		path:    nautaCreditPath,
		session: &session,
		body:    nautaAccountRequest{Username: username, Password: password},
	}, &payload); err != nil {
		return "", err
	}

	return payload.Credit, nil
}

func (n Nauta) UserTime(ctx context.Context, session domain.Session, username string) (string, error) {
	var payload nautaTimeResponse
	if _, err := n.Client.doJSON(ctx, "get nauta time", request{
		method:  http.MethodPost,
		path:    nautaTimePath,
		session: &session,
		body:    nautaAccountRequest{Username: username, AttributeUUID: session.AttributeUUID, WLANUserIP: session.WLANUserIP},
	}, &payload); err != nil {
		return "", err
	}

	return payload.Time, nil
}

func (n Nauta) Logout(ctx context.Context, session domain.Session, username string) error {
	_, err := n.Client.doJSON(ctx, "nauta logout", request{
		method:  http.MethodPost,
		path:    nautaLogoutPath,
		session: &session,
		body:    nautaAccountRequest{Username: username, AttributeUUID: session.AttributeUUID, WLANUserIP: session.WLANUserIP},
	}, nil)
	return err
}
