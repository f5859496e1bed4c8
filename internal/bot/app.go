package bot

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/giveabot/core/bootstrap"
	tg "github.com/m3rciful/giveabot/core/telegram"
	"github.com/m3rciful/giveabot/core/telegram/commands"
	tghelpers "github.com/m3rciful/giveabot/core/telegram/helpers"
	"github.com/m3rciful/giveabot/core/telegram/router"
	"github.com/m3rciful/giveabot/core/telegram/state"
	"github.com/m3rciful/giveabot/core/telegram/ui"
	"github.com/m3rciful/giveabot/internal/giveaway"
	"github.com/m3rciful/giveabot/internal/giveaway/archive"
)

// App holds the application configuration and the infrastructure opened
// by the bootstrap pipeline.
type App struct {
	cfg   *Config
	infra *bootstrap.Result
}

// NewApp initializes logging, Postgres (with migrations), and Redis.
func NewApp(ctx context.Context, cfg *Config) (*App, error) {
	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Redis:    cfg.Redis,
	})
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, infra: infra}, nil
}

// Close releases the infrastructure connections.
func (a *App) Close() error {
	var firstErr error
	if a.infra != nil {
		if a.infra.Redis != nil {
			if err := a.infra.Redis.Close(); err != nil {
				firstErr = err
			}
		}
		if a.infra.DB != nil {
			if err := a.infra.DB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// TelegramRunOptions wires the giveaway services, conversation state
// machine, registry, routes, and middleware for the bot runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	transport := NewTransport()
	store := giveaway.NewRedisStore(a.infra.Redis)
	svc := giveaway.NewService(store, transport, archive.New(a.infra.DB))
	svc.SetShareBase(a.cfg.Giveaway.BotURL)
	gate := giveaway.NewGate(store, transport)
	gate.SetShareBase(a.cfg.Giveaway.BotURL)
	fsm := state.NewMemoryManager()

	h := NewHandlers(svc, gate, fsm, a.cfg.Giveaway.BotURL)
	h.RegisterStates()

	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "open the giveaway menu (or join via a share link)",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     helpHandler(reg),
		Description: "list available commands",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     h.CancelConversation,
		Description: "reset the current conversation",
	})
	if err := reg.RegisterCallback(joinCallbackKey, h.JoinCallback); err != nil {
		return tg.RunOptions{}, fmt.Errorf("bot: callback wiring failed: %w", err)
	}

	var fb ui.FallbackProvider = h
	reg.SetCallbackNotFound(fb.UnknownCallback())

	coreCfg := a.cfg.CoreConfig()
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: coreCfg.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: fb.UnknownCallback()}))
	routes = append(routes, router.TextRoutes(fsm, reg, router.TextOptions{
		UnknownText:     fb.UnknownText(),
		UnknownDocument: fb.UnknownDocument(),
		UnknownPhoto:    fb.UnknownText(),
	})...)

	mws := tg.DefaultMiddlewares(coreCfg, nil)
	mws = append(mws, tg.Middleware{Name: "fsm_session", Use: state.WithSession(fsm)})

	return tg.RunOptions{
		Config:      coreCfg,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			transport.Bind(rt.Bot)
			return nil
		},
		OnStop: func(context.Context, tg.Runtime) error {
			return a.Close()
		},
	}, nil
}

func helpHandler(reg *tg.Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		var b strings.Builder
		b.WriteString("Commands:\n")
		for _, cmd := range reg.ListCommands(true) {
			fmt.Fprintf(&b, "%s - %s\n", cmd.Text, cmd.Description)
		}
		return tghelpers.SendText(c, strings.TrimRight(b.String(), "\n"))
	}
}
