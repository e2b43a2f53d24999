package domain

import (
	"strings"
)

// AccountInfo holds account attributes as the user portal reports them.
type AccountInfo struct {
	Username    string
	BlockDate   string
	DeleteDate  string
	AccountType string
	ServiceType string
	Credit      string
	Time        string
	MailAccount string
}

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrMissingUsername
	}

	return nil
}

// AccountClassification maps the portal's account type to a display label.
func AccountClassification(accountType string) string {
	lowered := strings.ToLower(strings.TrimSpace(accountType))
	switch {
	case lowered == "":
		return "Unknown"
	case strings.Contains(lowered, "internacional"):
		return "International"
	case strings.Contains(lowered, "nacional"):
		return "National"
	default:
		return strings.TrimSpace(accountType)
	}
}
