package application

import (
	"github.com/rs/zerolog"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

type AccountStatus struct {
	Username      string
	Portal        domain.Portal
	HasSession    bool
	LoggedIn      bool
	Account       domain.AccountInfo
	Credit        string
	RemainingTime string
}

func componentLogger(logger *zerolog.Logger, portal domain.Portal) zerolog.Logger {
	if logger == nil {
		return zerolog.Nop()
	}
	return logger.With().Str("portal", string(portal)).Logger()
}
