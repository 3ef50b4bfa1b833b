package engine

// canHoldTurn: active, not a guest, and not arbitrating.
func (s *State) canHoldTurn(p Player) bool {
	return p.IsActive && p.Role != RoleGuest && !s.IsJury(p.ParticipantID)
}

// TurnOrder lists who may pose questions, in join order.
func (s *State) TurnOrder() []string {
	var ids []string
	for _, p := range s.Players {
		if s.canHoldTurn(p) {
			ids = append(ids, p.ParticipantID)
		}
	}
	return ids
}

// nextTurnAfter walks the roster in join order starting after participantID
// and wraps around. An unknown or empty participantID starts at the first seat.
func (s *State) nextTurnAfter(participantID string) string {
	n := len(s.Players)
	start := -1
	for i, p := range s.Players {
		if p.ParticipantID == participantID {
			start = i
			break
		}
	}
	for i := 1; i <= n; i++ {
		cand := s.Players[(start+i+n)%n]
		if s.canHoldTurn(cand) {
			return cand.ParticipantID
		}
	}
	return ""
}

// advanceTurnFrom moves the turn on. Nobody left to hold it clears the turn
// without an event.
func (s *State) advanceTurnFrom(participantID string) (Event, bool) {
	next := s.nextTurnAfter(participantID)
	if next == s.Game.CurrentPlayerTurn {
		return Event{}, false
	}
	s.Game.CurrentPlayerTurn = next
	if next == "" {
		return Event{}, false
	}
	return Event{Type: EvtTurnAdvanced, ParticipantID: next}, true
}
