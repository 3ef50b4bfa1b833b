package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/client"
	"github.com/DoyleJ11/defi-educatif/internal/config"
	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/logging"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/internal/store"
)

const usage = `usage: defi-client [-server URL] -as PARTICIPANT <command> [args]

commands:
  create [juryId] [deposit]          create a game
  join <game> [role]                 join as initiator, responder or guest
  leave|start|pause|resume|end <game>
  ask <game> <text>                  post a text question
  ask-media <game> audio|video <url> post a media question
  answer <game> <questionId> <text>  answer a question
  refuse <game> <questionId>         decline to answer
  validate <game> <answerId> correct|wrong|refuse [amount]
  recharge <game> <amount>           top up the deposit
  show <game>                        print the game
  txs <game>                         print the ledger
  watch <game>                       follow the game live
  offline                            list games played without the server`

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	cfg := config.Load()

	serverURL := flag.String("server", "http://localhost:"+cfg.Port, "game server base URL")
	actor := flag.String("as", os.Getenv("PARTICIPANT_ID"), "participant id")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 || *actor == "" {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logging.New(cfg.LogLevel, "development")
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.NewFile(cfg.LocalStateDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	cache, err := store.NewFile(filepath.Join(cfg.LocalStateDir, "server-cache"))
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	local := service.NewLocal(ctx, st,
		service.WithRules(engine.Rules{AwardAmount: cfg.AwardAmount, PenaltyAmount: cfg.PenaltyAmount, MinPlayers: cfg.MinPlayers}),
		service.WithDefaultDeposit(cfg.DefaultDeposit),
		service.WithIDPrefix("local-"),
		service.WithLogger(log))
	defer local.Close()

	app := &app{
		actor:  *actor,
		svc:    client.NewFallback(client.NewRemote(*serverURL, *actor, cfg.RemoteTimeout), local, log, client.WithSnapshotCache(cache)),
		server: *serverURL,
		cfg:    cfg,
		log:    log,
	}

	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		if code := engine.Code(err); code != "" {
			pterm.Error.Printfln("%s: %v", code, err)
		} else {
			pterm.Error.Println(err)
		}
		os.Exit(1)
	}
}

type app struct {
	actor  string
	svc    *client.Fallback
	server string
	cfg    config.Config
	log    *zap.Logger
}

var errUsage = errors.New("wrong arguments, run with -h for usage")

var sessionCommands = map[string]engine.CommandType{
	"leave":  engine.CmdLeave,
	"start":  engine.CmdStart,
	"pause":  engine.CmdPause,
	"resume": engine.CmdResume,
	"end":    engine.CmdEnd,
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	need := func(n int) error {
		if len(args) < n {
			return errUsage
		}
		return nil
	}

	switch cmd {
	case "create":
		var req service.CreateRequest
		if len(args) > 0 {
			req.JuryID = args[0]
		}
		if len(args) > 1 {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return errUsage
			}
			req.InitialDeposit = &amount
		}
		res, err := a.svc.Create(ctx, a.actor, req)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("game %s created", res.State.Game.ID)
		printGame(res)
		return nil

	case "join":
		if err := need(1); err != nil {
			return err
		}
		var role engine.Role
		if len(args) > 1 {
			role = engine.Role(args[1])
		}
		return a.apply(ctx, args[0], engine.Command{Type: engine.CmdJoin, Role: role})

	case "leave", "start", "pause", "resume", "end":
		if err := need(1); err != nil {
			return err
		}
		return a.apply(ctx, args[0], engine.Command{Type: sessionCommands[cmd]})

	case "ask":
		if err := need(2); err != nil {
			return err
		}
		return a.apply(ctx, args[0], engine.Command{
			Type:    engine.CmdPostQuestion,
			Content: engine.TextContent(strings.Join(args[1:], " ")),
		})

	case "ask-media":
		if err := need(3); err != nil {
			return err
		}
		return a.apply(ctx, args[0], engine.Command{
			Type:    engine.CmdPostQuestion,
			Content: engine.MediaContent(engine.ContentKind(args[1]), args[2]),
		})

	case "answer":
		if err := need(3); err != nil {
			return err
		}
		return a.apply(ctx, args[0], engine.Command{
			Type:       engine.CmdSubmitAnswer,
			QuestionID: args[1],
			Content:    engine.TextContent(strings.Join(args[2:], " ")),
		})

	case "refuse":
		if err := need(2); err != nil {
			return err
		}
		return a.apply(ctx, args[0], engine.Command{Type: engine.CmdSubmitAnswer, QuestionID: args[1], IsVoluntaryRefusal: true})

	case "validate":
		if err := need(3); err != nil {
			return err
		}
		validate := engine.Command{Type: engine.CmdValidateAnswer, AnswerID: args[1], Outcome: engine.Outcome(args[2])}
		if len(args) > 3 {
			amount, err := strconv.ParseInt(args[3], 10, 64)
			if err != nil {
				return errUsage
			}
			validate.Amount = amount
		}
		return a.apply(ctx, args[0], validate)

	case "recharge":
		if err := need(2); err != nil {
			return err
		}
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errUsage
		}
		return a.apply(ctx, args[0], engine.Command{Type: engine.CmdRechargeDeposit, Amount: amount})

	case "show":
		if err := need(1); err != nil {
			return err
		}
		res, err := a.svc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		a.printMode(ctx, args[0])
		printGame(res)
		return nil

	case "txs":
		if err := need(1); err != nil {
			return err
		}
		txs, err := a.svc.Transactions(ctx, args[0])
		if err != nil {
			return err
		}
		a.printMode(ctx, args[0])
		printTransactions(txs)
		return nil

	case "watch":
		if err := need(1); err != nil {
			return err
		}
		return a.watch(ctx, args[0])

	case "offline":
		ids, err := a.svc.LocalGames(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			pterm.Info.Println("no offline games")
			return nil
		}
		pterm.Warning.Println("these games were played without the server and are not synchronised:")
		for _, id := range ids {
			pterm.Println("  " + id)
		}
		return nil

	default:
		return errUsage
	}
}

func (a *app) apply(ctx context.Context, gameID string, cmd engine.Command) error {
	cmd.ActorID = a.actor
	res, err := a.svc.Apply(ctx, gameID, cmd)
	if err != nil {
		return err
	}
	a.printMode(ctx, gameID)
	printResult(res)
	return nil
}

func (a *app) printMode(ctx context.Context, gameID string) {
	if a.svc.IsLocal(ctx, gameID) {
		pterm.Warning.Println("offline: this game is simulated locally")
	}
}

// watch follows the server's push feed, or polls when the game is local or
// the feed cannot be opened.
func (a *app) watch(ctx context.Context, gameID string) error {
	var w client.Watcher = client.Poller{Svc: a.svc, Interval: a.cfg.PollInterval}
	if !a.svc.IsLocal(ctx, gameID) {
		w = client.Stream{BaseURL: a.server, Participant: a.actor}
	}
	updates, err := w.Watch(ctx, gameID)
	if errors.Is(err, service.ErrTransportUnavailable) {
		a.log.Warn("push feed unavailable, polling", zap.Error(err))
		updates, err = client.Poller{Svc: a.svc, Interval: a.cfg.PollInterval}.Watch(ctx, gameID)
	}
	if err != nil {
		return err
	}
	for res := range updates {
		pterm.DefaultSection.Printfln("version %d", res.Version)
		printGame(res)
	}
	return nil
}
