package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/pkg/types"
)

const participantHeader = "X-Participant-ID"

// Remote talks to the authoritative server over HTTP. Any failure to get an
// answer from it is reported as service.ErrTransportUnavailable.
type Remote struct {
	baseURL     string
	participant string
	http        *http.Client
}

var _ service.Service = (*Remote)(nil)

// NewRemote targets baseURL. participant identifies reads; commands carry
// their own actor.
func NewRemote(baseURL, participant string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL:     strings.TrimRight(baseURL, "/"),
		participant: participant,
		http:        &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Create(ctx context.Context, actorID string, req service.CreateRequest) (service.Result, error) {
	var res service.Result
	err := r.do(ctx, http.MethodPost, "/games", actorID, req, &res)
	return res, err
}

func (r *Remote) Get(ctx context.Context, gameID string) (service.Result, error) {
	var res service.Result
	err := r.do(ctx, http.MethodGet, "/games/"+url.PathEscape(gameID), r.participant, nil, &res)
	return res, err
}

func (r *Remote) Transactions(ctx context.Context, gameID string) ([]engine.Transaction, error) {
	var txs []engine.Transaction
	err := r.do(ctx, http.MethodGet, "/games/"+url.PathEscape(gameID)+"/transactions", r.participant, nil, &txs)
	return txs, err
}

func (r *Remote) Apply(ctx context.Context, gameID string, cmd engine.Command) (service.Result, error) {
	path, body, err := route(cmd)
	if err != nil {
		return service.Result{}, err
	}
	var res service.Result
	err = r.do(ctx, http.MethodPost, "/games/"+url.PathEscape(gameID)+path, cmd.ActorID, body, &res)
	return res, err
}

// route gives the endpoint and body for cmd.
func route(cmd engine.Command) (string, any, error) {
	switch cmd.Type {
	case engine.CmdJoin:
		return "/join", types.JoinRequest{Role: cmd.Role}, nil
	case engine.CmdLeave:
		return "/leave", nil, nil
	case engine.CmdStart:
		return "/start", nil, nil
	case engine.CmdPause:
		return "/pause", nil, nil
	case engine.CmdResume:
		return "/resume", nil, nil
	case engine.CmdEnd:
		return "/end", nil, nil
	case engine.CmdPostQuestion:
		return "/questions", types.PostQuestionRequest{ContentBody: types.FromContent(cmd.Content)}, nil
	case engine.CmdSubmitAnswer:
		return "/questions/" + url.PathEscape(cmd.QuestionID) + "/answers", types.SubmitAnswerRequest{
			ContentBody:        types.FromContent(cmd.Content),
			IsVoluntaryRefusal: cmd.IsVoluntaryRefusal,
		}, nil
	case engine.CmdValidateAnswer:
		return "/answers/" + url.PathEscape(cmd.AnswerID) + "/validate", types.ValidateRequest{Outcome: cmd.Outcome, Amount: cmd.Amount}, nil
	case engine.CmdRechargeDeposit:
		return "/deposit/recharge", types.RechargeRequest{Amount: cmd.Amount}, nil
	default:
		return "", nil, engine.ErrUnsupportedCommand
	}
}

func (r *Remote) do(ctx context.Context, method, path, actor string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(participantHeader, actor)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		// The caller giving up is not a transport failure.
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", service.ErrTransportUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", service.ErrTransportUnavailable, err)
		}
		return nil
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: server answered %s", service.ErrTransportUnavailable, resp.Status)
	}

	var errResp types.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	if sentinel := engine.FromCode(errResp.Code); sentinel != nil {
		return sentinel
	}
	if errResp.Error == "" {
		errResp.Error = resp.Status
	}
	return fmt.Errorf("server: %s", errResp.Error)
}
