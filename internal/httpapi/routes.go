package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/lobby"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/internal/ws"
)

// Backend is the game service plus the snapshot feed behind /ws.
type Backend interface {
	service.Service
	Watch(ctx context.Context, gameID string) (<-chan lobby.Snapshot, func(), error)
}

func SetupRoutes(b Backend, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(b, log))

	r.Route("/games", func(r chi.Router) {
		r.Use(participant)

		r.Post("/", CreateGame(b, log))
		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", GetGame(b, log))
			r.Get("/transactions", ListTransactions(b, log))

			r.Post("/join", Command(b, log, joinCommand))
			r.Post("/leave", Command(b, log, simpleCommand(engine.CmdLeave)))
			r.Post("/start", Command(b, log, simpleCommand(engine.CmdStart)))
			r.Post("/pause", Command(b, log, simpleCommand(engine.CmdPause)))
			r.Post("/resume", Command(b, log, simpleCommand(engine.CmdResume)))
			r.Post("/end", Command(b, log, simpleCommand(engine.CmdEnd)))

			r.Post("/questions", Command(b, log, postQuestionCommand))
			r.Post("/questions/{questionID}/answers", Command(b, log, submitAnswerCommand))
			r.Post("/answers/{answerID}/validate", Command(b, log, validateCommand))
			r.Post("/deposit/recharge", Command(b, log, rechargeCommand))
		})
	})
	return r
}
