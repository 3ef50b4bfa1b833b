package types

import "github.com/DoyleJ11/defi-educatif/internal/engine"

const (
	MsgStateSnapshot = "StateSnapshot"
	MsgError         = "Error"
)

// ServerMessage is pushed over GET /ws?game={id}.
//
// StateSnapshot:
//
//	version: number   // bumps once per committed command
//	state:   game, players, deposit, questions, answers, transactions, rules
//
// Error:
//
//	code:  string     // taxonomy name, e.g. "NotYourTurn"
//	error: string
type ServerMessage struct {
	Type    string        `json:"type"`
	Version int           `json:"version,omitempty"`
	State   *engine.State `json:"state,omitempty"`
	Code    string        `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
}
