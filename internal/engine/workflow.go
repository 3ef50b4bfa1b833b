package engine

func (s *State) postQuestion(askerID string, content Content) ([]Event, error) {
	if s.Game.Status != StatusActive {
		return nil, ErrGameNotActive
	}
	if askerID == "" || askerID != s.Game.CurrentPlayerTurn {
		return nil, ErrNotYourTurn
	}
	if _, open := s.OpenQuestion(); open {
		return nil, ErrQuestionAlreadyOpen
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}

	q := Question{
		ID:          newID(),
		GameID:      s.Game.ID,
		AskedBy:     askerID,
		Type:        content.Kind,
		Content:     content,
		CycleNumber: s.Game.CurrentCycle,
		Status:      QuestionPending,
		AskedAt:     now(),
	}
	s.Questions = append(s.Questions, q)
	return []Event{{Type: EvtQuestionPosted, ParticipantID: askerID, QuestionID: q.ID}}, nil
}

func (s *State) submitAnswer(responderID, questionID string, content Content, refusal bool) ([]Event, error) {
	if s.Game.Status != StatusActive {
		return nil, ErrGameNotActive
	}
	q, ok := s.FindQuestion(questionID)
	if !ok {
		return nil, ErrQuestionNotFound
	}
	if !q.IsOpen() {
		return nil, ErrQuestionClosed
	}
	p, ok := s.FindPlayer(responderID)
	if !ok || !p.IsActive {
		return nil, ErrNotAPlayer
	}
	if s.IsJury(responderID) {
		return nil, ErrJuryCannotAnswer
	}
	if responderID == q.AskedBy {
		return nil, ErrOwnQuestion
	}
	if hasAnswered(s.answersFor(q.ID), responderID) {
		return nil, ErrAlreadyAnswered
	}

	a := Answer{
		ID:                 newID(),
		QuestionID:         q.ID,
		ResponderID:        responderID,
		IsVoluntaryRefusal: refusal,
		Status:             AnswerPending,
		SubmittedAt:        now(),
	}
	if !refusal {
		if err := content.Validate(); err != nil {
			return nil, err
		}
		a.Content = &content
	} else {
		a.Status = AnswerRefused
	}
	s.Answers = append(s.Answers, a)
	q.Status = QuestionAnswered

	events := []Event{{Type: EvtAnswerSubmitted, ParticipantID: responderID, QuestionID: q.ID, AnswerID: a.ID}}
	if !refusal {
		return events, nil
	}

	tx, err := s.recordRefusal(responderID)
	if err != nil {
		return nil, err
	}
	tx.QuestionID, tx.AnswerID = q.ID, a.ID
	s.Transactions[len(s.Transactions)-1] = tx
	events = append(events, Event{Type: EvtTransactionRecorded, ParticipantID: responderID, TransactionID: tx.ID})

	if s.everyoneResponded(q) {
		events = append(events, s.settleQuestion(q)...)
	}
	return events, nil
}

// everyoneResponded: no answer awaits the jury and every eligible responder has answered.
func (s *State) everyoneResponded(q *Question) bool {
	answers := s.answersFor(q.ID)
	if hasPending(answers) {
		return false
	}
	for _, p := range s.Players {
		if !p.IsActive || p.ParticipantID == q.AskedBy || s.IsJury(p.ParticipantID) {
			continue
		}
		if !hasAnswered(answers, p.ParticipantID) {
			return false
		}
	}
	return true
}

func hasPending(answers []*Answer) bool {
	for _, a := range answers {
		if a.Status == AnswerPending {
			return true
		}
	}
	return false
}

// settleQuestion closes q, completes the cycle and hands the turn on. A
// question that saw at least one verdict ends validated, otherwise closed.
func (s *State) settleQuestion(q *Question) []Event {
	q.Status = QuestionClosed
	for _, a := range s.answersFor(q.ID) {
		if a.Status == AnswerValidatedCorrect || a.Status == AnswerValidatedWrong {
			q.Status = QuestionValidated
			break
		}
	}
	closedAt := now()
	q.ClosedAt = &closedAt
	s.Game.CurrentCycle++

	events := []Event{{Type: EvtQuestionClosed, QuestionID: q.ID}}
	// If the asker already lost the turn by leaving, the scheduler moved on then.
	if s.Game.CurrentPlayerTurn == q.AskedBy {
		if evt, ok := s.advanceTurnFrom(q.AskedBy); ok {
			events = append(events, evt)
		}
	}
	return events
}
