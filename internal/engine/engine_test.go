package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustApply(t *testing.T, s State, cmd Command) ([]Event, State) {
	t.Helper()
	events, next, err := Apply(s, cmd)
	require.NoError(t, err, "command %s by %s", cmd.Type, cmd.ActorID)
	return events, next
}

func findEvent(t *testing.T, events []Event, eventType EventType) Event {
	t.Helper()
	for _, e := range events {
		if e.Type == eventType {
			return e
		}
	}
	t.Fatalf("no %s event in %+v", eventType, events)
	return Event{}
}

func newGame(t *testing.T, deposit int64) State {
	t.Helper()
	_, s, err := NewGame(NewGameParams{
		ID:             "g1",
		CreatedBy:      "host",
		JuryID:         "jury",
		InitialDeposit: deposit,
		Rules:          Rules{AwardAmount: 1000, PenaltyAmount: 500},
	})
	require.NoError(t, err)
	return s
}

func newStartedGame(t *testing.T, deposit int64, players ...string) State {
	t.Helper()
	s := newGame(t, deposit)
	for _, p := range players {
		_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: p})
	}
	_, s = mustApply(t, s, Command{Type: CmdStart, ActorID: "jury"})
	return s
}

func postAndAnswer(t *testing.T, s State, asker, responder string) (State, string, string) {
	t.Helper()
	events, s := mustApply(t, s, Command{Type: CmdPostQuestion, ActorID: asker, Content: TextContent("What is 6 x 7?")})
	qid := findEvent(t, events, EvtQuestionPosted).QuestionID
	events, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, ActorID: responder, QuestionID: qid, Content: TextContent("42")})
	aid := findEvent(t, events, EvtAnswerSubmitted).AnswerID
	return s, qid, aid
}

func player(t *testing.T, s State, id string) Player {
	t.Helper()
	p, ok := s.FindPlayer(id)
	require.True(t, ok, "player %s", id)
	return *p
}

func TestNewGame_FundsDepositWithPayment(t *testing.T) {
	s := newGame(t, 50000)

	assert.Equal(t, StatusWaiting, s.Game.Status)
	assert.Equal(t, int64(50000), s.Deposit.InitialAmount)
	assert.Equal(t, int64(50000), s.Deposit.CurrentAmount)
	assert.Equal(t, int64(50000), s.Game.DepositAmount)
	require.Len(t, s.Transactions, 1)
	assert.Equal(t, TxDepositPayment, s.Transactions[0].Type)
	assert.Equal(t, int64(50000), s.Transactions[0].DepositAfter)
}

func TestNewGame_RejectsNegativeDeposit(t *testing.T) {
	_, _, err := NewGame(NewGameParams{CreatedBy: "host", InitialDeposit: -1})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestHappyPath_CorrectAnswerPaysAwardAndPassesTurn(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B")
	require.Equal(t, "A", s.Game.CurrentPlayerTurn)

	s, qid, aid := postAndAnswer(t, s, "A", "B")
	q, _ := s.FindQuestion(qid)
	require.Equal(t, QuestionAnswered, q.Status)

	events, s := mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: OutcomeCorrect, Amount: 1000})

	assert.Equal(t, int64(1000), player(t, s, "B").Balance)
	assert.Equal(t, int64(49000), s.Deposit.CurrentAmount)
	assert.Equal(t, int64(49000), s.Game.DepositAmount)
	assert.Equal(t, "B", s.Game.CurrentPlayerTurn)
	assert.Equal(t, 2, s.Game.CurrentCycle)
	assert.True(t, ContainsEvent(events, EvtQuestionClosed))
	assert.True(t, ContainsEvent(events, EvtTurnAdvanced))

	a, _ := s.FindAnswer(aid)
	assert.Equal(t, AnswerValidatedCorrect, a.Status)
	assert.Equal(t, int64(1000), a.PointsEarned)
	q, _ = s.FindQuestion(qid)
	assert.Equal(t, QuestionValidated, q.Status)
	assert.False(t, q.IsOpen())

	tx := s.Transactions[len(s.Transactions)-1]
	assert.Equal(t, TxGain, tx.Type)
	assert.Equal(t, int64(0), tx.BalanceBefore)
	assert.Equal(t, int64(1000), tx.BalanceAfter)
	assert.Equal(t, aid, tx.AnswerID)
}

func TestVoluntaryRefusal_LoggedWithoutMonetaryEffect(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B")
	events, s := mustApply(t, s, Command{Type: CmdPostQuestion, ActorID: "A", Content: TextContent("Name a prime")})
	qid := findEvent(t, events, EvtQuestionPosted).QuestionID

	events, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, ActorID: "B", QuestionID: qid, IsVoluntaryRefusal: true})

	aid := findEvent(t, events, EvtAnswerSubmitted).AnswerID
	a, _ := s.FindAnswer(aid)
	assert.Equal(t, AnswerRefused, a.Status)
	assert.True(t, a.IsVoluntaryRefusal)
	assert.Nil(t, a.Content)

	tx := s.Transactions[len(s.Transactions)-1]
	assert.Equal(t, TxVoluntaryRefusal, tx.Type)
	assert.Equal(t, int64(0), tx.Amount)
	assert.Equal(t, tx.BalanceBefore, tx.BalanceAfter)
	assert.Equal(t, int64(0), player(t, s, "B").Balance)
	assert.Equal(t, int64(50000), s.Deposit.CurrentAmount)

	// B was the only responder, so the cycle is over.
	q, _ := s.FindQuestion(qid)
	assert.Equal(t, QuestionClosed, q.Status)
	assert.Equal(t, "B", s.Game.CurrentPlayerTurn)
}

func TestLeave_ClosesQuestionNobodyElseCanAnswer(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B", "C")
	events, s := mustApply(t, s, Command{Type: CmdPostQuestion, ActorID: "A", Content: TextContent("2+2?")})
	qid := findEvent(t, events, EvtQuestionPosted).QuestionID
	_, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, ActorID: "B", QuestionID: qid, IsVoluntaryRefusal: true})

	events, s = mustApply(t, s, Command{Type: CmdLeave, ActorID: "C"})
	assert.True(t, ContainsEvent(events, EvtQuestionClosed))
	q, _ := s.FindQuestion(qid)
	assert.Equal(t, QuestionClosed, q.Status)
	assert.Equal(t, "B", s.Game.CurrentPlayerTurn)
	assert.Equal(t, 2, s.Game.CurrentCycle)

	_, s = mustApply(t, s, Command{Type: CmdPostQuestion, ActorID: "B", Content: TextContent("3+3?")})
	require.NoError(t, s.CheckInvariants())
}

func TestLeave_KeepsQuestionWithPendingAnswer(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B", "C")
	s, qid, _ := postAndAnswer(t, s, "A", "B")

	events, s := mustApply(t, s, Command{Type: CmdLeave, ActorID: "C"})
	assert.False(t, ContainsEvent(events, EvtQuestionClosed))
	q, _ := s.FindQuestion(qid)
	assert.Equal(t, QuestionAnswered, q.Status)
}

func TestVoluntaryRefusal_WaitsForOtherResponders(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B", "C")
	events, s := mustApply(t, s, Command{Type: CmdPostQuestion, ActorID: "A", Content: TextContent("Name a prime")})
	qid := findEvent(t, events, EvtQuestionPosted).QuestionID

	_, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, ActorID: "B", QuestionID: qid, IsVoluntaryRefusal: true})
	q, _ := s.FindQuestion(qid)
	require.True(t, q.IsOpen())

	_, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, ActorID: "C", QuestionID: qid, IsVoluntaryRefusal: true})
	q, _ = s.FindQuestion(qid)
	assert.Equal(t, QuestionClosed, q.Status)
	assert.Equal(t, "B", s.Game.CurrentPlayerTurn)
}

func TestPostQuestion_OutOfTurnIsRejected(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B", "C")
	require.Equal(t, "A", s.Game.CurrentPlayerTurn)

	_, after, err := Apply(s, Command{Type: CmdPostQuestion, ActorID: "C", Content: TextContent("Too early?")})

	require.ErrorIs(t, err, ErrNotYourTurn)
	assert.Empty(t, after.Questions)
	assert.Equal(t, s, after)
}

func TestValidate_InsufficientDepositChangesNothing(t *testing.T) {
	s := newStartedGame(t, 500, "A", "B")
	s, _, aid := postAndAnswer(t, s, "A", "B")

	_, after, err := Apply(s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: OutcomeCorrect, Amount: 1000})

	require.ErrorIs(t, err, ErrInsufficientDeposit)
	assert.Equal(t, s, after)
	a, _ := after.FindAnswer(aid)
	assert.Equal(t, AnswerPending, a.Status)
	assert.Equal(t, int64(500), after.Deposit.CurrentAmount)
}

func TestValidate_IsExactlyOncePerAnswer(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B")
	s, _, aid := postAndAnswer(t, s, "A", "B")

	_, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: OutcomeCorrect})
	txCount := len(s.Transactions)

	for _, outcome := range []Outcome{OutcomeCorrect, OutcomeWrong, OutcomeRefuse} {
		_, after, err := Apply(s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: outcome})
		require.ErrorIs(t, err, ErrAlreadyValidated)
		assert.Len(t, after.Transactions, txCount)
		assert.Equal(t, int64(1000), player(t, after, "B").Balance)
	}
}

func TestValidate_OnlyJury(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B")
	s, _, aid := postAndAnswer(t, s, "A", "B")

	for _, actor := range []string{"A", "B", "host", ""} {
		_, _, err := Apply(s, Command{Type: CmdValidateAnswer, ActorID: actor, AnswerID: aid, Outcome: OutcomeCorrect})
		require.ErrorIs(t, err, ErrNotJury, "actor %q", actor)
	}
}

func TestValidate_CreatorArbitratesWithoutJury(t *testing.T) {
	_, s, err := NewGame(NewGameParams{ID: "g2", CreatedBy: "host", InitialDeposit: 5000, Rules: Rules{AwardAmount: 100}})
	require.NoError(t, err)
	_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: "A"})
	_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: "B"})
	_, s = mustApply(t, s, Command{Type: CmdStart, ActorID: "host"})
	s, _, aid := postAndAnswer(t, s, "A", "B")

	_, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "host", AnswerID: aid, Outcome: OutcomeCorrect})
	assert.Equal(t, int64(100), player(t, s, "B").Balance)
}

func TestValidate_ArbitratingCreatorCannotPlay(t *testing.T) {
	_, s, err := NewGame(NewGameParams{ID: "g3", CreatedBy: "host", InitialDeposit: 5000, Rules: Rules{AwardAmount: 1000}})
	require.NoError(t, err)
	_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: "host"})
	_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: "B"})

	// The creator judges, so B is the only one left to play.
	assert.Equal(t, []string{"B"}, s.TurnOrder())
	_, _, err = Apply(s, Command{Type: CmdStart, ActorID: "host"})
	require.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: "C"})
	_, s = mustApply(t, s, Command{Type: CmdStart, ActorID: "host"})
	require.Equal(t, "B", s.Game.CurrentPlayerTurn)

	events, s := mustApply(t, s, Command{Type: CmdPostQuestion, ActorID: "B", Content: TextContent("capital of Peru?")})
	qid := findEvent(t, events, EvtQuestionPosted).QuestionID
	_, _, err = Apply(s, Command{Type: CmdSubmitAnswer, ActorID: "host", QuestionID: qid, Content: TextContent("Lima")})
	require.ErrorIs(t, err, ErrJuryCannotAnswer)
	assert.Zero(t, player(t, s, "host").Balance)

	// C refusing is enough to close the question: the creator is not awaited.
	events, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, ActorID: "C", QuestionID: qid, IsVoluntaryRefusal: true})
	assert.True(t, ContainsEvent(events, EvtQuestionClosed))
	assert.Equal(t, "C", s.Game.CurrentPlayerTurn)
}

func TestValidate_WrongAnswerCollectsPenaltyOrCountsDebt(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B")
	s, _, aid := postAndAnswer(t, s, "A", "B")

	// B holds nothing yet, so the penalty becomes a debt.
	_, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: OutcomeWrong})
	b := player(t, s, "B")
	assert.Equal(t, int64(0), b.Balance)
	assert.Equal(t, 1, b.DebtCount)
	assert.Equal(t, int64(50000), s.Deposit.CurrentAmount)
	a, _ := s.FindAnswer(aid)
	assert.Equal(t, AnswerValidatedWrong, a.Status)

	// Turn is now B's; A answers and wins, then loses part of it.
	s, _, aid = postAndAnswer(t, s, "B", "A")
	_, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: OutcomeCorrect})
	s, _, aid = postAndAnswer(t, s, "A", "B")
	_, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: OutcomeCorrect})
	s, _, aid = postAndAnswer(t, s, "B", "A")
	_, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: OutcomeWrong})

	assert.Equal(t, int64(500), player(t, s, "A").Balance)
	assert.Equal(t, 0, player(t, s, "A").DebtCount)
	assert.Equal(t, int64(1000), player(t, s, "B").Balance)
	assert.Equal(t, int64(48500), s.Deposit.CurrentAmount)
	assert.Equal(t, int64(500), s.Deposit.TotalPenaltiesReceived)
	assert.Equal(t, int64(2000), s.Deposit.TotalGainsPaid)
	require.NoError(t, s.CheckInvariants())
}

func TestJuryRefuse_KeepsQuestionOpenWhileOthersPending(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B", "C")
	s, qid, bAnswer := postAndAnswer(t, s, "A", "B")
	events, s := mustApply(t, s, Command{Type: CmdSubmitAnswer, ActorID: "C", QuestionID: qid, Content: TextContent("41")})
	cAnswer := findEvent(t, events, EvtAnswerSubmitted).AnswerID

	events, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: bAnswer, Outcome: OutcomeRefuse})
	assert.False(t, ContainsEvent(events, EvtTransactionRecorded))
	assert.False(t, ContainsEvent(events, EvtQuestionClosed))
	q, _ := s.FindQuestion(qid)
	assert.Equal(t, QuestionAnswered, q.Status)
	assert.Equal(t, 1, s.Game.CurrentCycle)

	_, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: cAnswer, Outcome: OutcomeRefuse})
	q, _ = s.FindQuestion(qid)
	assert.Equal(t, QuestionClosed, q.Status)
	assert.Equal(t, 2, s.Game.CurrentCycle)
	assert.Equal(t, "B", s.Game.CurrentPlayerTurn)
}

func TestPostQuestion_OnlyOneOpenQuestion(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B")
	_, s = mustApply(t, s, Command{Type: CmdPostQuestion, ActorID: "A", Content: TextContent("first")})

	_, _, err := Apply(s, Command{Type: CmdPostQuestion, ActorID: "A", Content: TextContent("second")})
	require.ErrorIs(t, err, ErrQuestionAlreadyOpen)
}

func TestSubmitAnswer_Rules(t *testing.T) {
	s := newGame(t, 50000)
	for _, p := range []string{"jury", "A", "B", "C"} {
		_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: p})
	}
	_, s = mustApply(t, s, Command{Type: CmdStart, ActorID: "host"})
	s, qid, _ := postAndAnswer(t, s, "A", "B")

	cases := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{
			name:    "asker cannot answer own question",
			cmd:     Command{Type: CmdSubmitAnswer, ActorID: "A", QuestionID: qid, Content: TextContent("42")},
			wantErr: ErrOwnQuestion,
		},
		{
			name:    "second answer from same responder",
			cmd:     Command{Type: CmdSubmitAnswer, ActorID: "B", QuestionID: qid, Content: TextContent("43")},
			wantErr: ErrAlreadyAnswered,
		},
		{
			name:    "refusal after an answer is still a second answer",
			cmd:     Command{Type: CmdSubmitAnswer, ActorID: "B", QuestionID: qid, IsVoluntaryRefusal: true},
			wantErr: ErrAlreadyAnswered,
		},
		{
			name:    "jury cannot answer",
			cmd:     Command{Type: CmdSubmitAnswer, ActorID: "jury", QuestionID: qid, Content: TextContent("42")},
			wantErr: ErrJuryCannotAnswer,
		},
		{
			name:    "outsider cannot answer",
			cmd:     Command{Type: CmdSubmitAnswer, ActorID: "Z", QuestionID: qid, Content: TextContent("42")},
			wantErr: ErrNotAPlayer,
		},
		{
			name:    "unknown question",
			cmd:     Command{Type: CmdSubmitAnswer, ActorID: "C", QuestionID: "nope", Content: TextContent("42")},
			wantErr: ErrQuestionNotFound,
		},
		{
			name:    "empty content",
			cmd:     Command{Type: CmdSubmitAnswer, ActorID: "C", QuestionID: qid, Content: TextContent("  ")},
			wantErr: ErrInvalidContent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, after, err := Apply(s, tc.cmd)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, s, after)
		})
	}

	t.Run("media answer from another responder", func(t *testing.T) {
		events, next := mustApply(t, s, Command{
			Type:       CmdSubmitAnswer,
			ActorID:    "C",
			QuestionID: qid,
			Content:    MediaContent(ContentAudio, "https://media.example.org/answers/c.ogg"),
		})
		a, ok := next.FindAnswer(findEvent(t, events, EvtAnswerSubmitted).AnswerID)
		require.True(t, ok)
		require.NotNil(t, a.Content)
		assert.Equal(t, ContentAudio, a.Content.Kind)
	})
}

func TestSession_Transitions(t *testing.T) {
	waiting := newGame(t, 1000)
	_, waiting = mustApply(t, waiting, Command{Type: CmdJoin, ActorID: "A"})
	_, oneLeft := mustApply(t, waiting, Command{Type: CmdJoin, ActorID: "jury"})
	_, waiting = mustApply(t, waiting, Command{Type: CmdJoin, ActorID: "B"})

	_, active := mustApply(t, waiting, Command{Type: CmdStart, ActorID: "host"})
	_, paused := mustApply(t, active, Command{Type: CmdPause, ActorID: "jury"})
	_, finished := mustApply(t, active, Command{Type: CmdEnd, ActorID: "host"})

	cases := []struct {
		name    string
		setup   State
		cmd     Command
		wantErr error
	}{
		{"start needs a manager", waiting, Command{Type: CmdStart, ActorID: "A"}, ErrNotPermitted},
		{"start needs two players besides the jury", oneLeft, Command{Type: CmdStart, ActorID: "host"}, ErrNotEnoughPlayers},
		{"start twice", active, Command{Type: CmdStart, ActorID: "host"}, ErrInvalidTransition},
		{"question while waiting", waiting, Command{Type: CmdPostQuestion, ActorID: "A", Content: TextContent("q")}, ErrGameNotActive},
		{"question while paused", paused, Command{Type: CmdPostQuestion, ActorID: "A", Content: TextContent("q")}, ErrGameNotActive},
		{"resume when active", active, Command{Type: CmdResume, ActorID: "host"}, ErrInvalidTransition},
		{"pause when waiting", waiting, Command{Type: CmdPause, ActorID: "host"}, ErrInvalidTransition},
		{"question after end", finished, Command{Type: CmdPostQuestion, ActorID: "A", Content: TextContent("q")}, ErrGameNotActive},
		{"join after end", finished, Command{Type: CmdJoin, ActorID: "C"}, ErrGameFinished},
		{"leave after end", finished, Command{Type: CmdLeave, ActorID: "A"}, ErrGameFinished},
		{"recharge after end", finished, Command{Type: CmdRechargeDeposit, ActorID: "host", Amount: 10}, ErrGameFinished},
		{"end twice", finished, Command{Type: CmdEnd, ActorID: "host"}, ErrGameFinished},
		{"resume after end", finished, Command{Type: CmdResume, ActorID: "host"}, ErrGameFinished},
		{"unknown command", active, Command{Type: "Dance", ActorID: "host"}, ErrUnsupportedCommand},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, after, err := Apply(tc.setup, tc.cmd)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.setup, after)
		})
	}

	t.Run("pause and resume keep the turn", func(t *testing.T) {
		_, resumed := mustApply(t, paused, Command{Type: CmdResume, ActorID: "host"})
		assert.Equal(t, StatusActive, resumed.Game.Status)
		assert.Equal(t, active.Game.CurrentPlayerTurn, resumed.Game.CurrentPlayerTurn)
	})

	t.Run("end from waiting", func(t *testing.T) {
		_, ended := mustApply(t, waiting, Command{Type: CmdEnd, ActorID: "jury"})
		assert.Equal(t, StatusFinished, ended.Game.Status)
	})
}

func TestRoster_JoinLeaveRejoin(t *testing.T) {
	s := newGame(t, 1000)
	_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: "A", Role: RoleInitiator})

	_, _, err := Apply(s, Command{Type: CmdJoin, ActorID: "A"})
	require.ErrorIs(t, err, ErrAlreadyJoined)

	_, _, err = Apply(s, Command{Type: CmdJoin, ActorID: "B", Role: "captain"})
	require.ErrorIs(t, err, ErrInvalidRole)

	_, s = mustApply(t, s, Command{Type: CmdLeave, ActorID: "A"})
	a := player(t, s, "A")
	assert.False(t, a.IsActive)

	_, _, err = Apply(s, Command{Type: CmdLeave, ActorID: "A"})
	require.ErrorIs(t, err, ErrNotAPlayer)

	_, s = mustApply(t, s, Command{Type: CmdJoin, ActorID: "A"})
	require.Len(t, s.Players, 1)
	a = player(t, s, "A")
	assert.True(t, a.IsActive)
	assert.Equal(t, RoleResponder, a.Role)
}

func TestRecharge(t *testing.T) {
	s := newGame(t, 1000)

	_, _, err := Apply(s, Command{Type: CmdRechargeDeposit, ActorID: "host", Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, _, err = Apply(s, Command{Type: CmdRechargeDeposit, ActorID: "A", Amount: 10})
	require.ErrorIs(t, err, ErrNotPermitted)

	events, s := mustApply(t, s, Command{Type: CmdRechargeDeposit, ActorID: "jury", Amount: 250})
	txID := findEvent(t, events, EvtTransactionRecorded).TransactionID
	tx, ok := s.FindTransaction(txID)
	require.True(t, ok)
	assert.Equal(t, TxDepositRecharge, tx.Type)
	assert.Equal(t, int64(1000), tx.DepositBefore)
	assert.Equal(t, int64(1250), tx.DepositAfter)
	assert.Equal(t, int64(1250), s.Deposit.InitialAmount)
	assert.Equal(t, int64(1250), s.Game.DepositAmount)
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	s := newStartedGame(t, 50000, "A", "B", "C")
	s, qid, aid := postAndAnswer(t, s, "A", "B")
	_, s = mustApply(t, s, Command{Type: CmdSubmitAnswer, ActorID: "C", QuestionID: qid, IsVoluntaryRefusal: true})
	_, s = mustApply(t, s, Command{Type: CmdValidateAnswer, ActorID: "jury", AnswerID: aid, Outcome: OutcomeCorrect})
	_, s = mustApply(t, s, Command{Type: CmdPostQuestion, ActorID: "B", Content: MediaContent(ContentVideo, "https://media.example.org/q/2.mp4")})

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var reloaded State
	require.NoError(t, json.Unmarshal(raw, &reloaded))
	assert.Equal(t, s, reloaded)

	again, err := json.Marshal(reloaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestCode_RoundTripsSentinels(t *testing.T) {
	wrapped := fmt.Errorf("post question: %w", ErrNotYourTurn)
	assert.Equal(t, "NotYourTurn", Code(wrapped))
	assert.Equal(t, "", Code(errors.New("boom")))

	assert.Equal(t, ErrNotJury, FromCode("NotJury"))
	assert.Nil(t, FromCode("SomethingElse"))
}

func TestContent_Validate(t *testing.T) {
	cases := []struct {
		name    string
		content Content
		valid   bool
	}{
		{"text", TextContent("Who wrote Candide?"), true},
		{"blank text", TextContent("   "), false},
		{"audio", MediaContent(ContentAudio, "https://media.example.org/a.ogg"), true},
		{"video without url", MediaContent(ContentVideo, ""), false},
		{"relative media url", MediaContent(ContentVideo, "clip.mp4"), false},
		{"text with media", Content{Kind: ContentText, Text: "x", MediaURL: "https://e.org/x"}, false},
		{"unknown kind", Content{Kind: "image", MediaURL: "https://e.org/x.png"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.content.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidContent)
			}
		})
	}
}
