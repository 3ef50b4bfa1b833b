package types

import "github.com/DoyleJ11/defi-educatif/internal/engine"

// Client -> Server request bodies. The acting participant travels in the
// X-Participant-ID header, never in the body.

// POST /games/{id}/join
type JoinRequest struct {
	Role engine.Role `json:"role,omitempty"` // "initiator" | "responder" | "guest"
}

// ContentBody is the flat wire form of a question or answer payload:
//
//	{"type":"text","text":"..."}
//	{"type":"audio"|"video","mediaUrl":"https://..."}
type ContentBody struct {
	Type     engine.ContentKind `json:"type,omitempty"`
	Text     string             `json:"text,omitempty"`
	MediaURL string             `json:"mediaUrl,omitempty"`
}

// Content converts the body. A missing type with text means text.
func (b ContentBody) Content() engine.Content {
	kind := b.Type
	if kind == "" && b.Text != "" && b.MediaURL == "" {
		kind = engine.ContentText
	}
	return engine.Content{Kind: kind, Text: b.Text, MediaURL: b.MediaURL}
}

func FromContent(c engine.Content) ContentBody {
	return ContentBody{Type: c.Kind, Text: c.Text, MediaURL: c.MediaURL}
}

// POST /games/{id}/questions
type PostQuestionRequest struct {
	ContentBody
}

// POST /games/{id}/questions/{qid}/answers
type SubmitAnswerRequest struct {
	ContentBody
	IsVoluntaryRefusal bool `json:"isVoluntaryRefusal"`
}

// POST /games/{id}/answers/{aid}/validate
type ValidateRequest struct {
	Outcome engine.Outcome `json:"outcome"` // "correct" | "wrong" | "refuse"
	Amount  int64          `json:"amount,omitempty"`
}

// POST /games/{id}/deposit/recharge
type RechargeRequest struct {
	Amount int64 `json:"amount"`
}

// Server -> Client on failure. Code is empty for infrastructure errors.
type ErrorResponse struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}
