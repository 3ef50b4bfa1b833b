package engine

// validate resolves one pending answer. amount overrides the configured award
// or penalty when non-zero.
func (s *State) validate(juryID, answerID string, outcome Outcome, amount int64) ([]Event, error) {
	if s.Game.Status != StatusActive {
		return nil, ErrGameNotActive
	}
	if !s.IsJury(juryID) {
		return nil, ErrNotJury
	}
	a, ok := s.FindAnswer(answerID)
	if !ok {
		return nil, ErrAnswerNotFound
	}
	if a.Status != AnswerPending {
		return nil, ErrAlreadyValidated
	}
	q, ok := s.FindQuestion(a.QuestionID)
	if !ok {
		return nil, ErrQuestionNotFound
	}

	var tx *Transaction
	switch outcome {
	case OutcomeCorrect:
		award := s.Rules.AwardAmount
		if amount != 0 {
			award = amount
		}
		t, err := s.payGain(a.ResponderID, award)
		if err != nil {
			return nil, err
		}
		a.Status = AnswerValidatedCorrect
		a.PointsEarned = t.Amount
		tx = &t
	case OutcomeWrong:
		penalty := s.Rules.PenaltyAmount
		if amount != 0 {
			penalty = amount
		}
		t, err := s.collectPenalty(a.ResponderID, penalty)
		if err != nil {
			return nil, err
		}
		a.Status = AnswerValidatedWrong
		a.PointsEarned = -t.Amount
		tx = &t
	case OutcomeRefuse:
		a.Status = AnswerRefused
	default:
		return nil, ErrInvalidOutcome
	}

	validatedAt := now()
	a.ValidatedAt = &validatedAt
	a.ValidatedBy = juryID

	events := []Event{{Type: EvtAnswerValidated, ParticipantID: a.ResponderID, QuestionID: q.ID, AnswerID: a.ID}}
	if tx != nil {
		tx.QuestionID, tx.AnswerID = q.ID, a.ID
		s.Transactions[len(s.Transactions)-1] = *tx
		events = append(events, Event{Type: EvtTransactionRecorded, ParticipantID: a.ResponderID, TransactionID: tx.ID})
	}

	if !hasPending(s.answersFor(q.ID)) {
		events = append(events, s.settleQuestion(q)...)
	}
	return events, nil
}
