package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suitetecsa/suitetecsa-cli/internal/application"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

func TestRenderSingleAccountStatus(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render([]application.AccountStatus{
		{
			Username:      "user@nauta.com.cu",
			Portal:        domain.PortalNauta,
			LoggedIn:      true,
			Credit:        "$12.50 CUP",
			RemainingTime: "05:12:33",
			Account: domain.AccountInfo{
				AccountType: "Navegación Internacional",
				BlockDate:   "14/05/2026",
			},
		},
	}, RenderOptions{Now: now, WarnBefore: 7 * 24 * time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "Nauta Account Status")
	assert.Contains(t, output, "accounts: 1")
	assert.Contains(t, output, "Account: user@nauta.com.cu (International)")
	assert.Contains(t, output, "online")
	assert.Contains(t, output, "$12.50 CUP")
	assert.Contains(t, output, "05:12:33")
	assert.Contains(t, output, "14/05/2026 (in 89 days)")
	assert.NotContains(t, output, "[soon]")
}

func TestRenderMultiAccountStatus(t *testing.T) {
	output, err := Render([]application.AccountStatus{
		{Username: "first@nauta.com.cu", LoggedIn: true, Credit: "$1.00 CUP"},
		{Username: "second@nauta.co.cu", Account: domain.AccountInfo{AccountType: "Navegación Nacional", ServiceType: "Prepago"}},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "accounts: 2")
	assert.Contains(t, output, "first@nauta.com.cu (Unknown)")
	assert.Contains(t, output, "second@nauta.co.cu (National, Prepago)")
	assert.Contains(t, output, "offline")
	assert.Contains(t, output, "n/a")
}

func TestRenderMarksDatesInsideWarningWindow(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render([]application.AccountStatus{
		{
			Username: "user@nauta.com.cu",
			Account:  domain.AccountInfo{BlockDate: "2026-02-16", DeleteDate: "16/03/2026"},
		},
	}, RenderOptions{Now: now, WarnBefore: 7 * 24 * time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "blocks:")
	assert.Contains(t, output, "2026-02-16 (in 2 days)")
	assert.Contains(t, output, "[soon]")
	assert.Contains(t, output, "deleted:")
}

func TestRenderKeepsUnparsedDatesVerbatim(t *testing.T) {
	output, err := Render([]application.AccountStatus{
		{Username: "user@nauta.com.cu", Account: domain.AccountInfo{BlockDate: "sin fecha"}},
	}, RenderOptions{Now: time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC), WarnBefore: time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "sin fecha")
	assert.NotContains(t, output, "[soon]")
}

func TestRenderEmptyStatuses(t *testing.T) {
	output, err := Render(nil, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "No account statuses available.")
}
