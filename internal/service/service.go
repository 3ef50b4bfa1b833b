package service

import (
	"context"
	"errors"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
)

// ErrTransportUnavailable means the authoritative server could not be
// reached in time. It is the only error that triggers the local fallback.
var ErrTransportUnavailable = errors.New("transport unavailable")

// Service is the game contract shared by the HTTP server, the remote client
// and the local simulation.
type Service interface {
	Create(ctx context.Context, actorID string, req CreateRequest) (Result, error)
	Apply(ctx context.Context, gameID string, cmd engine.Command) (Result, error)
	Get(ctx context.Context, gameID string) (Result, error)
	Transactions(ctx context.Context, gameID string) ([]engine.Transaction, error)
}

// CreateRequest carries the optional settings of a new game. Nil fields fall
// back to the configured defaults.
type CreateRequest struct {
	JuryID         string `json:"juryId,omitempty"`
	InitialDeposit *int64 `json:"initialDeposit,omitempty"`
	AwardAmount    *int64 `json:"awardAmount,omitempty"`
	PenaltyAmount  *int64 `json:"penaltyAmount,omitempty"`
}

type Result struct {
	Version int            `json:"version"`
	State   engine.State   `json:"game"`
	Events  []engine.Event `json:"events"`
}

// Question returns the question the result's events refer to.
func (r Result) Question() (engine.Question, bool) {
	for _, e := range r.Events {
		if e.QuestionID == "" {
			continue
		}
		if q, ok := r.State.FindQuestion(e.QuestionID); ok {
			return *q, true
		}
	}
	return engine.Question{}, false
}

func (r Result) Answer() (engine.Answer, bool) {
	for _, e := range r.Events {
		if e.AnswerID == "" {
			continue
		}
		if a, ok := r.State.FindAnswer(e.AnswerID); ok {
			return *a, true
		}
	}
	return engine.Answer{}, false
}

// Transaction returns the first ledger entry recorded by the command.
func (r Result) Transaction() (engine.Transaction, bool) {
	for _, e := range r.Events {
		if e.Type != engine.EvtTransactionRecorded {
			continue
		}
		if tx, ok := r.State.FindTransaction(e.TransactionID); ok {
			return *tx, true
		}
	}
	return engine.Transaction{}, false
}

func (r Result) Player(participantID string) (engine.Player, bool) {
	if p, ok := r.State.FindPlayer(participantID); ok {
		return *p, true
	}
	return engine.Player{}, false
}
