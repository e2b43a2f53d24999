package domain

import (
	"maps"
	"time"
)

type Portal string

const (
	PortalUser  Portal = "user_portal"
	PortalNauta Portal = "nauta"
)

func (p Portal) Valid() bool {
	switch p {
	case PortalUser, PortalNauta:
		return true
	default:
		return false
	}
}

// Session is the state of one interaction with a portal. It is treated as an
// immutable value: every change goes through a method returning a copy.
type Session struct {
	ID      string
	Portal  Portal
	Cookies map[string]string
	CSRF    string
	// AttributeUUID identifies an open network-access session on the Nauta portal.
	AttributeUUID string
	WLANUserIP    string
	Account       AccountInfo
	CreatedAt     time.Time
}

func (s Session) Clone() Session {
	clone := s
	clone.Cookies = maps.Clone(s.Cookies)
	return clone
}

func (s Session) WithAttributeUUID(id string) Session {
	next := s.Clone()
	next.AttributeUUID = id
	return next
}

func (s Session) WithCookies(cookies map[string]string) Session {
	next := s.Clone()
	if next.Cookies == nil {
		next.Cookies = make(map[string]string, len(cookies))
	}
	for name, value := range cookies {
		next.Cookies[name] = value
	}
	return next
}

func (s Session) LoggedIn() bool {
	return s.AttributeUUID != ""
}
