package engine

import (
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusActive   GameStatus = "active"
	StatusPaused   GameStatus = "paused"
	StatusFinished GameStatus = "finished"
)

type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
	RoleGuest     Role = "guest"
)

type QuestionStatus string

const (
	QuestionPending   QuestionStatus = "pending"
	QuestionAnswered  QuestionStatus = "answered"
	QuestionValidated QuestionStatus = "validated"
	QuestionClosed    QuestionStatus = "closed"
)

type AnswerStatus string

const (
	AnswerPending          AnswerStatus = "pending"
	AnswerValidatedCorrect AnswerStatus = "validated_correct"
	AnswerValidatedWrong   AnswerStatus = "validated_wrong"
	AnswerRefused          AnswerStatus = "refused"
)

type TransactionType string

const (
	TxGain             TransactionType = "gain"
	TxPenalty          TransactionType = "penalty"
	TxDepositRecharge  TransactionType = "deposit_recharge"
	TxDepositPayment   TransactionType = "deposit_payment"
	TxVoluntaryRefusal TransactionType = "voluntary_refusal"
)

type Outcome string

const (
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
	OutcomeRefuse  Outcome = "refuse"
)

type Game struct {
	ID                string     `json:"id"`
	Status            GameStatus `json:"status"`
	CurrentPlayerTurn string     `json:"currentPlayerTurn"`
	CurrentCycle      int        `json:"currentCycle"`
	DepositAmount     int64      `json:"depositAmount"`
	JuryID            string     `json:"juryId,omitempty"`
	CreatedBy         string     `json:"createdBy"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type Player struct {
	GameID        string    `json:"gameId"`
	ParticipantID string    `json:"participantId"`
	Role          Role      `json:"role"`
	Balance       int64     `json:"balance"`
	DebtCount     int       `json:"debtCount"`
	IsActive      bool      `json:"isActive"`
	JoinedAt      time.Time `json:"joinedAt"`
}

type Deposit struct {
	InitialAmount          int64 `json:"initialAmount"`
	CurrentAmount          int64 `json:"currentAmount"`
	TotalGainsPaid         int64 `json:"totalGainsPaid"`
	TotalPenaltiesReceived int64 `json:"totalPenaltiesReceived"`
}

type Question struct {
	ID          string         `json:"id"`
	GameID      string         `json:"gameId"`
	AskedBy     string         `json:"askedBy"`
	Type        ContentKind    `json:"type"`
	Content     Content        `json:"content"`
	CycleNumber int            `json:"cycleNumber"`
	Status      QuestionStatus `json:"status"`
	AskedAt     time.Time      `json:"askedAt"`
	ClosedAt    *time.Time     `json:"closedAt,omitempty"`
}

func (q Question) IsOpen() bool {
	return q.Status == QuestionPending || q.Status == QuestionAnswered
}

type Answer struct {
	ID                 string       `json:"id"`
	QuestionID         string       `json:"questionId"`
	ResponderID        string       `json:"responderId"`
	Content            *Content     `json:"content,omitempty"`
	IsVoluntaryRefusal bool         `json:"isVoluntaryRefusal"`
	Status             AnswerStatus `json:"status"`
	PointsEarned       int64        `json:"pointsEarned"`
	SubmittedAt        time.Time    `json:"submittedAt"`
	ValidatedAt        *time.Time   `json:"validatedAt,omitempty"`
	ValidatedBy        string       `json:"validatedBy,omitempty"`
}

type Transaction struct {
	ID            string          `json:"id"`
	GameID        string          `json:"gameId"`
	Seq           int             `json:"seq"`
	PlayerID      string          `json:"playerId,omitempty"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceBefore int64           `json:"balanceBefore"`
	BalanceAfter  int64           `json:"balanceAfter"`
	DepositBefore int64           `json:"depositBefore"`
	DepositAfter  int64           `json:"depositAfter"`
	QuestionID    string          `json:"questionId,omitempty"`
	AnswerID      string          `json:"answerId,omitempty"`
	Description   string          `json:"description"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Rules are the per-game amounts. Neither amount is derived from anything;
// both are configured when the game is created.
type Rules struct {
	AwardAmount   int64 `json:"awardAmount"`
	PenaltyAmount int64 `json:"penaltyAmount"`
	MinPlayers    int   `json:"minPlayers"`
}

// State is the full entity set of one game. Every mutation goes through Apply.
type State struct {
	Game         Game          `json:"game"`
	Players      []Player      `json:"players"`
	Deposit      Deposit       `json:"deposit"`
	Questions    []Question    `json:"questions"`
	Answers      []Answer      `json:"answers"`
	Transactions []Transaction `json:"transactions"`
	Rules        Rules         `json:"rules"`
}

type CommandType string

const (
	CmdJoin            CommandType = "Join"
	CmdLeave           CommandType = "Leave"
	CmdStart           CommandType = "Start"
	CmdPause           CommandType = "Pause"
	CmdResume          CommandType = "Resume"
	CmdEnd             CommandType = "End"
	CmdPostQuestion    CommandType = "PostQuestion"
	CmdSubmitAnswer    CommandType = "SubmitAnswer"
	CmdValidateAnswer  CommandType = "ValidateAnswer"
	CmdRechargeDeposit CommandType = "RechargeDeposit"
)

/*
	CmdJoin            -> PlayerJoined (-> TurnAdvanced when an active game had nobody holding the turn)
	CmdLeave           -> PlayerLeft (-> TurnAdvanced when the turn holder left)
	CmdStart           -> GameStarted -> TurnAdvanced
	CmdPostQuestion    -> QuestionPosted
	CmdSubmitAnswer    -> AnswerSubmitted (-> TransactionRecorded for a refusal) (-> QuestionClosed -> TurnAdvanced)
	CmdValidateAnswer  -> AnswerValidated (-> TransactionRecorded) (-> QuestionClosed -> TurnAdvanced)
	CmdRechargeDeposit -> TransactionRecorded
*/

type Command struct {
	Type               CommandType
	ActorID            string
	Role               Role
	QuestionID         string
	AnswerID           string
	Content            Content
	IsVoluntaryRefusal bool
	Outcome            Outcome
	Amount             int64
}

type EventType string

const (
	EvtGameCreated         EventType = "GameCreated"
	EvtPlayerJoined        EventType = "PlayerJoined"
	EvtPlayerLeft          EventType = "PlayerLeft"
	EvtGameStarted         EventType = "GameStarted"
	EvtGamePaused          EventType = "GamePaused"
	EvtGameResumed         EventType = "GameResumed"
	EvtGameEnded           EventType = "GameEnded"
	EvtQuestionPosted      EventType = "QuestionPosted"
	EvtAnswerSubmitted     EventType = "AnswerSubmitted"
	EvtAnswerValidated     EventType = "AnswerValidated"
	EvtQuestionClosed      EventType = "QuestionClosed"
	EvtTurnAdvanced        EventType = "TurnAdvanced"
	EvtTransactionRecorded EventType = "TransactionRecorded"
)

type Event struct {
	Type          EventType `json:"type"`
	ParticipantID string    `json:"participantId,omitempty"`
	QuestionID    string    `json:"questionId,omitempty"`
	AnswerID      string    `json:"answerId,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
}

// NewGameParams describes a game about to be created.
type NewGameParams struct {
	ID             string
	CreatedBy      string
	JuryID         string
	InitialDeposit int64
	Rules          Rules
}

var now = func() time.Time { return time.Now().UTC() }

var newID = uuid.NewString

// NewGame builds a waiting game whose deposit is funded with InitialDeposit.
func NewGame(p NewGameParams) ([]Event, State, error) {
	if p.InitialDeposit < 0 || p.Rules.AwardAmount < 0 || p.Rules.PenaltyAmount < 0 {
		return nil, State{}, ErrInvalidAmount
	}
	if p.ID == "" {
		p.ID = newID()
	}
	// A lone player would have nobody to answer their questions.
	if p.Rules.MinPlayers < 2 {
		p.Rules.MinPlayers = 2
	}

	s := NewEmptyState()
	s.Game = Game{
		ID:        p.ID,
		Status:    StatusWaiting,
		JuryID:    p.JuryID,
		CreatedBy: p.CreatedBy,
		CreatedAt: now(),
	}
	s.Rules = p.Rules

	events := []Event{{Type: EvtGameCreated, ParticipantID: p.CreatedBy}}
	if p.InitialDeposit > 0 {
		tx := s.fundDeposit(TxDepositPayment, p.InitialDeposit, "initial deposit paid by "+p.CreatedBy)
		events = append(events, Event{Type: EvtTransactionRecorded, TransactionID: tx.ID})
	}
	if err := s.CheckInvariants(); err != nil {
		return nil, State{}, err
	}
	return events, s, nil
}

// Apply runs cmd against a private copy of s. On error the returned state is s itself.
func Apply(s State, cmd Command) ([]Event, State, error) {
	next := s.Clone()

	var events []Event
	var err error

	switch cmd.Type {
	case CmdJoin:
		events, err = next.join(cmd.ActorID, cmd.Role)
	case CmdLeave:
		events, err = next.leave(cmd.ActorID)
	case CmdStart:
		events, err = next.start(cmd.ActorID)
	case CmdPause:
		events, err = next.pause(cmd.ActorID)
	case CmdResume:
		events, err = next.resume(cmd.ActorID)
	case CmdEnd:
		events, err = next.end(cmd.ActorID)
	case CmdPostQuestion:
		events, err = next.postQuestion(cmd.ActorID, cmd.Content)
	case CmdSubmitAnswer:
		events, err = next.submitAnswer(cmd.ActorID, cmd.QuestionID, cmd.Content, cmd.IsVoluntaryRefusal)
	case CmdValidateAnswer:
		events, err = next.validate(cmd.ActorID, cmd.AnswerID, cmd.Outcome, cmd.Amount)
	case CmdRechargeDeposit:
		events, err = next.rechargeBy(cmd.ActorID, cmd.Amount)
	default:
		err = ErrUnsupportedCommand
	}
	if err != nil {
		return nil, s, err
	}

	if err := next.CheckInvariants(); err != nil {
		return nil, s, err
	}
	return events, next, nil
}
