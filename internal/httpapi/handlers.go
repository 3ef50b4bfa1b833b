package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/pkg/types"
)

var errBadRequest = errors.New("malformed request body")

// commandBuilder turns a request into the command for actor.
type commandBuilder func(r *http.Request, actor string) (engine.Command, error)

func CreateGame(svc service.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.CreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		res, err := svc.Create(r.Context(), participantFrom(r.Context()), req)
		if err != nil {
			writeError(w, log, err)
			return
		}
		log.Info("game created",
			zap.String("game_id", res.State.Game.ID),
			zap.String("created_by", res.State.Game.CreatedBy),
			zap.Int64("deposit", res.State.Deposit.InitialAmount))
		writeJSON(w, http.StatusCreated, res)
	}
}

func GetGame(svc service.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Get(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ListTransactions returns the ledger in order, optionally for one player.
func ListTransactions(svc service.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := svc.Transactions(r.Context(), chi.URLParam(r, "gameID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		if player := r.URL.Query().Get("player"); player != "" {
			filtered := make([]engine.Transaction, 0, len(txs))
			for _, tx := range txs {
				if tx.PlayerID == player {
					filtered = append(filtered, tx)
				}
			}
			txs = filtered
		}
		writeJSON(w, http.StatusOK, txs)
	}
}

// Command runs the command built from the request against the game in the URL.
func Command(svc service.Service, log *zap.Logger, build commandBuilder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := participantFrom(r.Context())
		cmd, err := build(r, actor)
		if err != nil {
			writeError(w, log, err)
			return
		}
		res, err := svc.Apply(r.Context(), chi.URLParam(r, "gameID"), cmd)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func simpleCommand(t engine.CommandType) commandBuilder {
	return func(_ *http.Request, actor string) (engine.Command, error) {
		return engine.Command{Type: t, ActorID: actor}, nil
	}
}

func joinCommand(r *http.Request, actor string) (engine.Command, error) {
	var req types.JoinRequest
	if err := decodeBody(r, &req); err != nil {
		return engine.Command{}, err
	}
	return engine.Command{Type: engine.CmdJoin, ActorID: actor, Role: req.Role}, nil
}

func postQuestionCommand(r *http.Request, actor string) (engine.Command, error) {
	var req types.PostQuestionRequest
	if err := decodeBody(r, &req); err != nil {
		return engine.Command{}, err
	}
	return engine.Command{Type: engine.CmdPostQuestion, ActorID: actor, Content: req.Content()}, nil
}

func submitAnswerCommand(r *http.Request, actor string) (engine.Command, error) {
	var req types.SubmitAnswerRequest
	if err := decodeBody(r, &req); err != nil {
		return engine.Command{}, err
	}
	cmd := engine.Command{
		Type:               engine.CmdSubmitAnswer,
		ActorID:            actor,
		QuestionID:         chi.URLParam(r, "questionID"),
		IsVoluntaryRefusal: req.IsVoluntaryRefusal,
	}
	if !req.IsVoluntaryRefusal {
		cmd.Content = req.Content()
	}
	return cmd, nil
}

func validateCommand(r *http.Request, actor string) (engine.Command, error) {
	var req types.ValidateRequest
	if err := decodeBody(r, &req); err != nil {
		return engine.Command{}, err
	}
	return engine.Command{
		Type:     engine.CmdValidateAnswer,
		ActorID:  actor,
		AnswerID: chi.URLParam(r, "answerID"),
		Outcome:  req.Outcome,
		Amount:   req.Amount,
	}, nil
}

func rechargeCommand(r *http.Request, actor string) (engine.Command, error) {
	var req types.RechargeRequest
	if err := decodeBody(r, &req); err != nil {
		return engine.Command{}, err
	}
	return engine.Command{Type: engine.CmdRechargeDeposit, ActorID: actor, Amount: req.Amount}, nil
}

// decodeBody fills v from a JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadRequest
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
