package engine

func (s *State) canManage(actorID string) bool {
	return actorID != "" && (actorID == s.Game.CreatedBy || s.IsJury(actorID))
}

func (s *State) start(actorID string) ([]Event, error) {
	switch s.Game.Status {
	case StatusFinished:
		return nil, ErrGameFinished
	case StatusWaiting:
	default:
		return nil, ErrInvalidTransition
	}
	if !s.canManage(actorID) {
		return nil, ErrNotPermitted
	}

	players := 0
	for _, p := range s.Players {
		if p.IsActive && !s.IsJury(p.ParticipantID) {
			players++
		}
	}
	if players < s.Rules.MinPlayers || len(s.TurnOrder()) == 0 {
		return nil, ErrNotEnoughPlayers
	}

	s.Game.Status = StatusActive
	s.Game.CurrentCycle = 1
	events := []Event{{Type: EvtGameStarted, ParticipantID: actorID}}
	if evt, ok := s.advanceTurnFrom(""); ok {
		events = append(events, evt)
	}
	return events, nil
}

func (s *State) pause(actorID string) ([]Event, error) {
	if s.Game.Status == StatusFinished {
		return nil, ErrGameFinished
	}
	if s.Game.Status != StatusActive {
		return nil, ErrInvalidTransition
	}
	if !s.canManage(actorID) {
		return nil, ErrNotPermitted
	}
	s.Game.Status = StatusPaused
	return []Event{{Type: EvtGamePaused, ParticipantID: actorID}}, nil
}

func (s *State) resume(actorID string) ([]Event, error) {
	if s.Game.Status == StatusFinished {
		return nil, ErrGameFinished
	}
	if s.Game.Status != StatusPaused {
		return nil, ErrInvalidTransition
	}
	if !s.canManage(actorID) {
		return nil, ErrNotPermitted
	}
	s.Game.Status = StatusActive
	return []Event{{Type: EvtGameResumed, ParticipantID: actorID}}, nil
}

// end is terminal: every later command is rejected.
func (s *State) end(actorID string) ([]Event, error) {
	if s.Game.Status == StatusFinished {
		return nil, ErrGameFinished
	}
	if !s.canManage(actorID) {
		return nil, ErrNotPermitted
	}
	s.Game.Status = StatusFinished
	return []Event{{Type: EvtGameEnded, ParticipantID: actorID}}, nil
}
