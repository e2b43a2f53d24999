package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
	"github.com/suitetecsa/suitetecsa-cli/internal/ports"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 30 * time.Second

	csrfHeader = "X-CSRF-Token"
)

// Client talks JSON to the portal gateway. The zero HTTPClient and Clock fall
// back to http.DefaultClient and the system clock.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Clock          ports.Clock
}

type apiErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type request struct {
	method  string
	path    string
	query   url.Values
	session *domain.Session
	body    any
}

type response struct {
	body    []byte
	cookies map[string]string
}

func (c Client) newSession(portal domain.Portal) domain.Session {
	return domain.Session{
		ID:        uuid.NewString(),
		Portal:    portal,
		Cookies:   map[string]string{},
		CreatedAt: c.clock().Now().UTC(),
	}
}

func (c Client) do(ctx context.Context, op string, req request) (response, error) {
	endpoint, err := buildAPIURL(c.BaseURL, req.path)
	if err != nil {
		return response{}, err
	}
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return response{}, fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, req.method, endpoint, body)
	if err != nil {
		return response{}, fmt.Errorf("create %s request: %w", op, err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.session != nil {
		for name, value := range req.session.Cookies {
			httpReq.AddCookie(&http.Cookie{Name: name, Value: value})
		}
		if req.session.CSRF != "" {
			httpReq.Header.Set(csrfHeader, req.session.CSRF)
		}
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return response{}, ctx.Err()
		}
		return response{}, fmt.Errorf("%w: %s: %w", domain.ErrTransport, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("%w: read %s response: %w", domain.ErrTransport, op, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return response{}, decodeAPIError(op, resp.StatusCode, payload)
	}

	cookies := make(map[string]string)
	for _, cookie := range resp.Cookies() {
		cookies[cookie.Name] = cookie.Value
	}

	return response{body: payload, cookies: cookies}, nil
}

func (c Client) doJSON(ctx context.Context, op string, req request, out any) (response, error) {
	resp, err := c.do(ctx, op, req)
	if err != nil {
		return response{}, err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return resp, nil
	}

	if err := json.Unmarshal(resp.body, out); err != nil {
		return response{}, fmt.Errorf("decode %s response: %w", op, err)
	}

	return resp, nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) clock() ports.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return ports.SystemClock{}
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

// decodeAPIError maps the gateway error code onto a domain sentinel. A 5xx
// without a recognised code means the gateway could not reach the portal.
func decodeAPIError(op string, statusCode int, payload []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(payload, &apiErr); err != nil || apiErr.Error == "" {
		if statusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s: status %d", domain.ErrTransport, op, statusCode)
		}
		return fmt.Errorf("%s: %w: status %d", op, domain.ErrPortalRejected, statusCode)
	}

	sentinel := errorForCode(apiErr.Error)
	if apiErr.Message == "" {
		return fmt.Errorf("%s: %w", op, sentinel)
	}
	return fmt.Errorf("%s: %w: %s", op, sentinel, apiErr.Message)
}

func errorForCode(code string) error {
	switch code {
	case "invalid_credentials":
		return domain.ErrInvalidCredentials
	case "invalid_captcha":
		return domain.ErrInvalidCaptcha
	case "invalid_recharge_code":
		return domain.ErrInvalidRechargeCode
	case "session_expired":
		return domain.ErrSessionExpired
	case "unsupported_action":
		return domain.ErrUnsupportedAction
	case "invalid_period":
		return domain.ErrInvalidPeriod
	case "unavailable":
		return domain.ErrTransport
	default:
		return domain.ErrPortalRejected
	}
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("gateway base url is required")
	}
	if path == "" {
		return "", errors.New("gateway path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse gateway base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("gateway base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("gateway base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse gateway path: %w", err)
	}
	return endpoint.String(), nil
}

func errMissingField(op, field string) error {
	return fmt.Errorf("%s: %w: response missing %s", op, domain.ErrPortalRejected, field)
}
