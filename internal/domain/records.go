package domain

import "time"

type Record interface {
	Action() Action
}

type Connection struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Upload   string
	Download string
	Amount   string
}

func (Connection) Action() Action { return ActionConnections }

type Recharge struct {
	Date    time.Time
	Amount  string
	Channel string
	Type    string
}

func (Recharge) Action() Action { return ActionRecharges }

type Transfer struct {
	Date               time.Time
	Amount             string
	DestinationAccount string
}

func (Transfer) Action() Action { return ActionTransfers }

// Period is a calendar month used to query usage history.
type Period struct {
	Year  int
	Month int
}

func (p Period) Validate() error {
	if p.Year < 1 {
		return ErrInvalidPeriod
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}

	return nil
}
