package engine

import (
	"fmt"
	"slices"
)

func NewEmptyState() State {
	return State{
		Players:      []Player{},
		Questions:    []Question{},
		Answers:      []Answer{},
		Transactions: []Transaction{},
	}
}

// Clone copies every slice so the result can be mutated without touching s.
func (s State) Clone() State {
	c := s
	c.Players = slices.Clone(s.Players)
	c.Questions = slices.Clone(s.Questions)
	c.Answers = slices.Clone(s.Answers)
	c.Transactions = slices.Clone(s.Transactions)
	return c
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// FindPlayer looks up the participation record of a participant, active or not.
func (s *State) FindPlayer(participantID string) (*Player, bool) {
	for i := range s.Players {
		if s.Players[i].ParticipantID == participantID {
			return &s.Players[i], true
		}
	}
	return nil, false
}

func (s *State) FindQuestion(id string) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

func (s *State) FindAnswer(id string) (*Answer, bool) {
	for i := range s.Answers {
		if s.Answers[i].ID == id {
			return &s.Answers[i], true
		}
	}
	return nil, false
}

func (s *State) FindTransaction(id string) (*Transaction, bool) {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return &s.Transactions[i], true
		}
	}
	return nil, false
}

// OpenQuestion returns the question still awaiting answers or arbitration, if any.
func (s *State) OpenQuestion() (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].IsOpen() {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

// JuryParticipant is who arbitrates this game. Without a designated jury the
// creator arbitrates.
func (s *State) JuryParticipant() string {
	if s.Game.JuryID != "" {
		return s.Game.JuryID
	}
	return s.Game.CreatedBy
}

// IsJury reports whether participantID arbitrates this game.
func (s *State) IsJury(participantID string) bool {
	return participantID != "" && participantID == s.JuryParticipant()
}

func (s *State) answersFor(questionID string) []*Answer {
	var out []*Answer
	for i := range s.Answers {
		if s.Answers[i].QuestionID == questionID {
			out = append(out, &s.Answers[i])
		}
	}
	return out
}

func hasAnswered(answers []*Answer, participantID string) bool {
	for _, a := range answers {
		if a.ResponderID == participantID {
			return true
		}
	}
	return false
}

// CheckInvariants verifies the ledger conservation rules and the single open question.
func (s *State) CheckInvariants() error {
	d := s.Deposit
	if d.CurrentAmount != d.InitialAmount+d.TotalPenaltiesReceived-d.TotalGainsPaid {
		return fmt.Errorf("%w: deposit %d != %d + %d - %d", ErrLedgerInvariant,
			d.CurrentAmount, d.InitialAmount, d.TotalPenaltiesReceived, d.TotalGainsPaid)
	}
	if d.CurrentAmount < 0 {
		return fmt.Errorf("%w: negative deposit %d", ErrLedgerInvariant, d.CurrentAmount)
	}
	if s.Game.DepositAmount != d.CurrentAmount {
		return fmt.Errorf("%w: game mirrors deposit %d, deposit holds %d", ErrLedgerInvariant,
			s.Game.DepositAmount, d.CurrentAmount)
	}

	var balances int64
	for _, p := range s.Players {
		if p.Balance < 0 {
			return fmt.Errorf("%w: negative balance for %s", ErrLedgerInvariant, p.ParticipantID)
		}
		balances += p.Balance
	}
	if balances+d.CurrentAmount != d.InitialAmount {
		return fmt.Errorf("%w: %d points in play, %d funded", ErrLedgerInvariant,
			balances+d.CurrentAmount, d.InitialAmount)
	}

	open := 0
	for _, q := range s.Questions {
		if q.IsOpen() {
			open++
		}
	}
	if open > 1 {
		return fmt.Errorf("%w: %d open questions", ErrLedgerInvariant, open)
	}
	return nil
}
