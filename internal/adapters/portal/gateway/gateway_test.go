package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

var testNow = time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return Client{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Clock:      fixedClock{now: testNow},
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, value any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(value))
}

func loggedInSession() domain.Session {
	return domain.Session{
		ID:      "session-1",
		Portal:  domain.PortalUser,
		Cookies: map[string]string{"PHPSESSID": "abc"},
		CSRF:    "csrf-1",
	}
}

func TestUserPortalCreateSessionCollectsCookiesAndCSRF(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/session", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "abc"})
		writeJSON(t, w, http.StatusOK, map[string]string{"csrf": "csrf-1"})
	})
	portal := NewUserPortal(newTestClient(t, mux))

	session, err := portal.CreateSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, domain.PortalUser, session.Portal)
	assert.Equal(t, map[string]string{"PHPSESSID": "abc"}, session.Cookies)
	assert.Equal(t, "csrf-1", session.CSRF)
	assert.Equal(t, testNow, session.CreatedAt)
}

func TestUserPortalLoginReplaysSessionAndReturnsAccount(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("PHPSESSID")
		require.NoError(t, err)
		assert.Equal(t, "abc", cookie.Value)
		assert.Equal(t, "csrf-1", r.Header.Get(csrfHeader))

		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, loginRequest{Username: "user@nauta.com.cu", Password: "pw", CaptchaCode: "1234"}, body)

		http.SetCookie(w, &http.Cookie{Name: "auth", Value: "yes"})
		writeJSON(t, w, http.StatusOK, map[string]any{
			"csrf": "csrf-2",
			"account": map[string]string{
				"username":     "user@nauta.com.cu",
				"credit":       "$10.00 CUP",
				"account_type": "Navegación Internacional",
				"block_date":   "2026-12-01",
			},
		})
	})
	portal := NewUserPortal(newTestClient(t, mux))
	session := loggedInSession()

	next, err := portal.Login(context.Background(), session, "user@nauta.com.cu", "pw", "1234")
	require.NoError(t, err)
	assert.Equal(t, "csrf-2", next.CSRF)
	assert.Equal(t, map[string]string{"PHPSESSID": "abc", "auth": "yes"}, next.Cookies)
	assert.Equal(t, "$10.00 CUP", next.Account.Credit)
	assert.Equal(t, "2026-12-01", next.Account.BlockDate)

	assert.Equal(t, "csrf-1", session.CSRF)
	assert.Equal(t, map[string]string{"PHPSESSID": "abc"}, session.Cookies)
}

func TestUserPortalMapsErrorCodesToDomainErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		code string
		want error
	}{
		{name: "captcha", code: "invalid_captcha", want: domain.ErrInvalidCaptcha},
		{name: "credentials", code: "invalid_credentials", want: domain.ErrInvalidCredentials},
		{name: "expired", code: "session_expired", want: domain.ErrSessionExpired},
		{name: "unknown", code: "something_else", want: domain.ErrPortalRejected},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusBadRequest, map[string]string{"error": tc.code, "message": "rejected"})
			})
			portal := NewUserPortal(newTestClient(t, mux))

			_, err := portal.Login(context.Background(), loggedInSession(), "u", "p", "0000")
			require.ErrorIs(t, err, tc.want)
			assert.ErrorContains(t, err, "rejected")
		})
	}
}

func TestUserPortalRechargeRejectsInvalidCode(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/recharge", func(w http.ResponseWriter, r *http.Request) {
		var body rechargeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1234567890123456", body.Code)
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid_recharge_code"})
	})
	portal := NewUserPortal(newTestClient(t, mux))

	err := portal.Recharge(context.Background(), loggedInSession(), "1234567890123456")
	require.ErrorIs(t, err, domain.ErrInvalidRechargeCode)
}

func TestUserPortalTransferAndPasswordChangesSucceedOnEmptyBody(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/transfer", handler)
	mux.HandleFunc("POST /user/password", handler)
	mux.HandleFunc("POST /user/email-password", handler)
	portal := NewUserPortal(newTestClient(t, mux))
	session := loggedInSession()

	require.NoError(t, portal.Transfer(context.Background(), session, "5.00", "other@nauta.com.cu", "pw"))
	require.NoError(t, portal.ChangePassword(context.Background(), session, "old", "new"))
	require.NoError(t, portal.ChangeEmailPassword(context.Background(), session, "old", "new"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestUserPortalLastsSendsQueryAndCapsResults(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/lasts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "recharges", r.URL.Query().Get("action"))
		assert.Equal(t, "2", r.URL.Query().Get("large"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"recharges": []map[string]string{
				{"date": "2026-03-01T00:00:00Z", "amount": "$10.00", "channel": "online", "type": "card"},
				{"date": "2026-02-01T00:00:00Z", "amount": "$20.00", "channel": "online", "type": "card"},
				{"date": "2026-01-01T00:00:00Z", "amount": "$30.00", "channel": "online", "type": "card"},
			},
		})
	})
	portal := NewUserPortal(newTestClient(t, mux))

	records, err := portal.Lasts(context.Background(), loggedInSession(), domain.ActionRecharges, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	first, ok := records[0].(domain.Recharge)
	require.True(t, ok)
	assert.Equal(t, "$10.00", first.Amount)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), first.Date)
}

func TestUserPortalLastsRejectsUnsupportedActionWithoutRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	portal := NewUserPortal(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})))

	_, err := portal.Lasts(context.Background(), loggedInSession(), domain.Action("quotes"), 5)
	require.ErrorIs(t, err, domain.ErrUnsupportedAction)
	assert.Zero(t, calls.Load())
}

func TestUserPortalConnectionsDecodesHistory(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/connections", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026", r.URL.Query().Get("year"))
		assert.Equal(t, "2", r.URL.Query().Get("month"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"connections": []map[string]any{
				{
					"start":    "2026-02-10T08:00:00Z",
					"end":      "2026-02-10T09:30:00Z",
					"upload":   "12 MB",
					"download": "240 MB",
					"amount":   "$3.75",
				},
			},
		})
	})
	portal := NewUserPortal(newTestClient(t, mux))

	connections, err := portal.Connections(context.Background(), loggedInSession(), 2026, 2)
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, 90*time.Minute, connections[0].Duration)
	assert.Equal(t, "240 MB", connections[0].Download)
}

func TestUserPortalHistoryReturnsEmptySliceWhenNothingRecorded(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/transfers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{})
	})
	portal := NewUserPortal(newTestClient(t, mux))

	transfers, err := portal.Transfers(context.Background(), loggedInSession(), 2026, 1)
	require.NoError(t, err)
	assert.NotNil(t, transfers)
	assert.Empty(t, transfers)
}

func TestUserPortalHistoryRejectsInvalidPeriodWithoutRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	portal := NewUserPortal(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})))

	_, err := portal.Recharges(context.Background(), loggedInSession(), 2026, 13)
	require.ErrorIs(t, err, domain.ErrInvalidPeriod)
	_, err = portal.Connections(context.Background(), loggedInSession(), 0, 5)
	require.ErrorIs(t, err, domain.ErrInvalidPeriod)
	assert.Zero(t, calls.Load())
}

func TestUserPortalCaptchaReturnsImageBytes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/captcha", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	portal := NewUserPortal(newTestClient(t, mux))

	image, err := portal.Captcha(context.Background(), loggedInSession())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, image)
}

func TestClientWrapsNetworkFailuresAsTransportErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	nauta := NewNauta(Client{BaseURL: baseURL, RequestTimeout: time.Second})

	err := nauta.Logout(context.Background(), domain.Session{AttributeUUID: "ATTR"}, "user@nauta.com.cu")
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestClientTreatsUncodedServerErrorsAsTransportErrors(t *testing.T) {
	t.Parallel()

	nauta := NewNauta(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})))

	_, err := nauta.UserCredit(context.Background(), domain.Session{}, "user@nauta.com.cu", "pw")
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestClientTimesOutWithoutCallerDeadline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	nauta := NewNauta(Client{BaseURL: server.URL, HTTPClient: server.Client(), RequestTimeout: 20 * time.Millisecond})

	_, err := nauta.CreateSession(context.Background())
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestNautaSessionLifecycle(t *testing.T) {
	t.Parallel()

	var loggedOut atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /nauta/session", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "j-1"})
		writeJSON(t, w, http.StatusOK, map[string]string{"csrf": "c", "wlan_user_ip": "10.0.0.5"})
	})
	mux.HandleFunc("POST /nauta/login", func(w http.ResponseWriter, r *http.Request) {
		var body nautaAccountRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "10.0.0.5", body.WLANUserIP)
		writeJSON(t, w, http.StatusOK, map[string]string{"attribute_uuid": "ATTR-1"})
	})
	mux.HandleFunc("POST /nauta/credit", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"credit": "$12.50 CUP"})
	})
	mux.HandleFunc("POST /nauta/time", func(w http.ResponseWriter, r *http.Request) {
		var body nautaAccountRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ATTR-1", body.AttributeUUID)
		writeJSON(t, w, http.StatusOK, map[string]string{"time": "05:12:33"})
	})
	mux.HandleFunc("POST /nauta/logout", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("JSESSIONID")
		require.NoError(t, err)
		assert.Equal(t, "j-1", cookie.Value)
		loggedOut.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	nauta := NewNauta(newTestClient(t, mux))
	ctx := context.Background()

	session, err := nauta.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PortalNauta, session.Portal)
	assert.Equal(t, "10.0.0.5", session.WLANUserIP)

	attributeUUID, err := nauta.Login(ctx, session, "user@nauta.com.cu", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ATTR-1", attributeUUID)
	session = session.WithAttributeUUID(attributeUUID)

	credit, err := nauta.UserCredit(ctx, session, "user@nauta.com.cu", "pw")
	require.NoError(t, err)
	assert.Equal(t, "$12.50 CUP", credit)

	remaining, err := nauta.UserTime(ctx, session, "user@nauta.com.cu")
	require.NoError(t, err)
	assert.Equal(t, "05:12:33", remaining)

	require.NoError(t, nauta.Logout(ctx, session, "user@nauta.com.cu"))
	assert.True(t, loggedOut.Load())
}

func TestNautaLoginRejectsResponseWithoutAttributeUUID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /nauta/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{})
	})
	nauta := NewNauta(newTestClient(t, mux))

	_, err := nauta.Login(context.Background(), domain.Session{}, "u", "p")
	require.ErrorIs(t, err, domain.ErrPortalRejected)
}

func TestBuildAPIURLValidatesBaseURL(t *testing.T) {
	t.Parallel()

	_, err := buildAPIURL("", "/user/info")
	require.Error(t, err)
	_, err = buildAPIURL("ftp://portal.example", "/user/info")
	require.ErrorContains(t, err, "http or https")

	endpoint, err := buildAPIURL("https://portal.example/ignored", "/user/info")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example/user/info", endpoint)
}

func TestClientWrapsCallerDeadlineAsTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	nauta := NewNauta(Client{BaseURL: server.URL, HTTPClient: server.Client()})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := nauta.Logout(ctx, domain.Session{AttributeUUID: "ATTR"}, "user@nauta.com.cu")
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientReturnsCancellationUnwrapped(t *testing.T) {
	t.Parallel()

	nauta := NewNauta(newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := nauta.Logout(ctx, domain.Session{AttributeUUID: "ATTR"}, "user@nauta.com.cu")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrTransport)
}
