package engine

import "errors"

var ErrInvalidAmount = errors.New("amount must be greater than zero")
var ErrInsufficientDeposit = errors.New("the deposit does not hold enough points for this gain")
var ErrNotYourTurn = errors.New("it is not your turn to ask a question")
var ErrQuestionAlreadyOpen = errors.New("another question is still open in this game")
var ErrAlreadyAnswered = errors.New("you have already answered this question")
var ErrNotJury = errors.New("only the jury can validate answers")
var ErrAlreadyValidated = errors.New("this answer has already been validated")
var ErrAlreadyJoined = errors.New("participant has already joined this game")
var ErrGameNotActive = errors.New("the game is not active")

var ErrGameNotFound = errors.New("game not found")
var ErrQuestionNotFound = errors.New("question not found")
var ErrAnswerNotFound = errors.New("answer not found")
var ErrQuestionClosed = errors.New("the question is closed")
var ErrNotAPlayer = errors.New("participant is not an active player of this game")
var ErrOwnQuestion = errors.New("you cannot answer your own question")
var ErrJuryCannotAnswer = errors.New("the jury cannot answer questions")
var ErrNotEnoughPlayers = errors.New("not enough active players to start the game")
var ErrNotPermitted = errors.New("only the game creator or the jury can do this")
var ErrInvalidTransition = errors.New("the game cannot move to that state")
var ErrGameFinished = errors.New("the game is finished")
var ErrInvalidContent = errors.New("invalid question or answer content")
var ErrInvalidRole = errors.New("invalid player role")
var ErrInvalidOutcome = errors.New("outcome must be correct, wrong or refuse")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrLedgerInvariant = errors.New("ledger invariant violated")

var codes = []struct {
	code string
	err  error
}{
	{"InvalidAmount", ErrInvalidAmount},
	{"InsufficientDeposit", ErrInsufficientDeposit},
	{"NotYourTurn", ErrNotYourTurn},
	{"QuestionAlreadyOpen", ErrQuestionAlreadyOpen},
	{"AlreadyAnswered", ErrAlreadyAnswered},
	{"NotJury", ErrNotJury},
	{"AlreadyValidated", ErrAlreadyValidated},
	{"AlreadyJoined", ErrAlreadyJoined},
	{"GameNotActive", ErrGameNotActive},
	{"GameNotFound", ErrGameNotFound},
	{"QuestionNotFound", ErrQuestionNotFound},
	{"AnswerNotFound", ErrAnswerNotFound},
	{"QuestionClosed", ErrQuestionClosed},
	{"NotAPlayer", ErrNotAPlayer},
	{"OwnQuestion", ErrOwnQuestion},
	{"JuryCannotAnswer", ErrJuryCannotAnswer},
	{"NotEnoughPlayers", ErrNotEnoughPlayers},
	{"NotPermitted", ErrNotPermitted},
	{"InvalidTransition", ErrInvalidTransition},
	{"GameFinished", ErrGameFinished},
	{"InvalidContent", ErrInvalidContent},
	{"InvalidRole", ErrInvalidRole},
	{"InvalidOutcome", ErrInvalidOutcome},
	{"UnsupportedCommand", ErrUnsupportedCommand},
	{"LedgerInvariant", ErrLedgerInvariant},
}

// Code returns the wire name of a game error, or "" when err is not one.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// FromCode maps a wire name back to its sentinel. Unknown codes yield nil.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
