package types

import (
	"github.com/DoyleJ11/defi-educatif/internal/engine"
	wire "github.com/DoyleJ11/defi-educatif/pkg/types"
)

// ClientMessage is a command sent over an open websocket. The sender is the
// participant the socket was opened for.
type ClientMessage struct {
	Type               string           `json:"type"`
	Role               engine.Role      `json:"role,omitempty"`
	QuestionID         string           `json:"questionId,omitempty"`
	AnswerID           string           `json:"answerId,omitempty"`
	Content            wire.ContentBody `json:"content,omitempty"`
	IsVoluntaryRefusal bool             `json:"isVoluntaryRefusal,omitempty"`
	Outcome            engine.Outcome   `json:"outcome,omitempty"`
	Amount             int64            `json:"amount,omitempty"`
}

// ToCommand maps the message onto an engine command for actorID.
func (m ClientMessage) ToCommand(actorID string) (engine.Command, bool) {
	cmd := engine.Command{ActorID: actorID}
	switch m.Type {
	case "Join":
		cmd.Type, cmd.Role = engine.CmdJoin, m.Role
	case "Leave":
		cmd.Type = engine.CmdLeave
	case "Start":
		cmd.Type = engine.CmdStart
	case "Pause":
		cmd.Type = engine.CmdPause
	case "Resume":
		cmd.Type = engine.CmdResume
	case "End":
		cmd.Type = engine.CmdEnd
	case "PostQuestion":
		cmd.Type, cmd.Content = engine.CmdPostQuestion, m.Content.Content()
	case "SubmitAnswer":
		cmd.Type = engine.CmdSubmitAnswer
		cmd.QuestionID = m.QuestionID
		cmd.IsVoluntaryRefusal = m.IsVoluntaryRefusal
		if !m.IsVoluntaryRefusal {
			cmd.Content = m.Content.Content()
		}
	case "ValidateAnswer":
		cmd.Type, cmd.AnswerID, cmd.Outcome, cmd.Amount = engine.CmdValidateAnswer, m.AnswerID, m.Outcome, m.Amount
	case "RechargeDeposit":
		cmd.Type, cmd.Amount = engine.CmdRechargeDeposit, m.Amount
	default:
		return engine.Command{}, false
	}
	return cmd, true
}
