package engine

func validRole(r Role) bool {
	switch r {
	case RoleInitiator, RoleResponder, RoleGuest:
		return true
	}
	return false
}

func (s *State) join(participantID string, role Role) ([]Event, error) {
	if s.Game.Status == StatusFinished {
		return nil, ErrGameFinished
	}
	if participantID == "" {
		return nil, ErrNotAPlayer
	}
	if role == "" {
		role = RoleResponder
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}

	if p, ok := s.FindPlayer(participantID); ok {
		if p.IsActive {
			return nil, ErrAlreadyJoined
		}
		// One record per participant: a returning player keeps balance, debts and seat.
		p.IsActive = true
		p.Role = role
	} else {
		s.Players = append(s.Players, Player{
			GameID:        s.Game.ID,
			ParticipantID: participantID,
			Role:          role,
			IsActive:      true,
			JoinedAt:      now(),
		})
	}

	events := []Event{{Type: EvtPlayerJoined, ParticipantID: participantID}}
	if s.Game.Status != StatusWaiting && s.Game.CurrentPlayerTurn == "" {
		if evt, ok := s.advanceTurnFrom(""); ok {
			events = append(events, evt)
		}
	}
	return events, nil
}

func (s *State) leave(participantID string) ([]Event, error) {
	if s.Game.Status == StatusFinished {
		return nil, ErrGameFinished
	}
	p, ok := s.FindPlayer(participantID)
	if !ok || !p.IsActive {
		return nil, ErrNotAPlayer
	}
	p.IsActive = false

	events := []Event{{Type: EvtPlayerLeft, ParticipantID: participantID}}
	if s.Game.CurrentPlayerTurn == participantID {
		if evt, ok := s.advanceTurnFrom(participantID); ok {
			events = append(events, evt)
		}
	}
	// The last responder the question was waiting for may just have gone.
	if q, open := s.OpenQuestion(); open && s.everyoneResponded(q) {
		events = append(events, s.settleQuestion(q)...)
	}
	return events, nil
}

// ActivePlayers returns the active participation records in join order.
func (s *State) ActivePlayers() []Player {
	var out []Player
	for _, p := range s.Players {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}
