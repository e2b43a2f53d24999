package domain

import (
	"fmt"
	"strings"
)

type Action string

const (
	ActionConnections Action = "connections"
	ActionRecharges   Action = "recharges"
	ActionTransfers   Action = "transfers"
)

const DefaultLastsLarge = 5

func (a Action) Valid() bool {
	switch a {
	case ActionConnections, ActionRecharges, ActionTransfers:
		return true
	default:
		return false
	}
}

func ParseAction(raw string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(raw)))
	if !action.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAction, raw)
	}

	return action, nil
}
