package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Sessions []sessionSchema `toml:"sessions"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported sessions schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	Portal        string            `toml:"portal"`
	ID            string            `toml:"id"`
	CSRF          string            `toml:"csrf,omitempty"`
	AttributeUUID string            `toml:"attribute_uuid,omitempty"`
	WLANUserIP    string            `toml:"wlan_user_ip,omitempty"`
	CreatedAt     string            `toml:"created_at,omitempty"`
	SavedAt       string            `toml:"saved_at,omitempty"`
	Cookies       map[string]string `toml:"cookies,omitempty"`
	Account       accountSchema     `toml:"account"`
}

type accountSchema struct {
	Username    string `toml:"username,omitempty"`
	BlockDate   string `toml:"block_date,omitempty"`
	DeleteDate  string `toml:"delete_date,omitempty"`
	AccountType string `toml:"account_type,omitempty"`
	ServiceType string `toml:"service_type,omitempty"`
	Credit      string `toml:"credit,omitempty"`
	Time        string `toml:"time,omitempty"`
	MailAccount string `toml:"mail_account,omitempty"`
}
