package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/guesstheword/internal/bot"
	"github.com/robalobadob/guesstheword/internal/config"
	"github.com/robalobadob/guesstheword/internal/contexto"
	"github.com/robalobadob/guesstheword/internal/daily"
	"github.com/robalobadob/guesstheword/internal/game"
	"github.com/robalobadob/guesstheword/internal/httpserver"
	"github.com/robalobadob/guesstheword/internal/locale"
	"github.com/robalobadob/guesstheword/internal/scheduler"
	"github.com/robalobadob/guesstheword/internal/telegram"
)

// pollTimeout is the long-poll timeout sent to getUpdates.
const pollTimeout = 30 * time.Second

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (MODE=webhook serves POST /webhook, MODE=poll long-polls getUpdates)",
		RunE:  runServe,
	}
	cmd.Flags().String("mode", "", "Override MODE: webhook or poll")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if m, _ := cmd.Flags().GetString("mode"); m != "" {
		cfg.Mode = m
	}
	if cfg.BotToken == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if err := locale.Init(); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// getUpdates holds the connection open for pollTimeout.
	timeout := cfg.HTTPTimeout
	if cfg.Mode == config.ModePoll {
		timeout += pollTimeout
	}
	tg := telegram.New(cfg.TelegramAPI, cfg.BotToken, timeout)
	puzzles := contexto.New(cfg.ContextoAPI, cfg.HTTPTimeout)

	cal := daily.NewCalendar(nil)
	d := bot.New(st, game.NewMachine(puzzles), tg, puzzles, cal)

	sched, err := scheduler.Start(cal, d)
	if err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Warn().Err(err).Msg("scheduler shutdown")
		}
	}()

	srv := httpserver.New(d, httpserver.Options{
		WebhookSecret:     cfg.WebhookSecret,
		AdminPasswordHash: cfg.AdminPasswordHash,
		AdminJWTSecret:    cfg.AdminJWTSecret,
		AdminTokenDays:    cfg.AdminTokenDays,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	log.Info().
		Str("mode", cfg.Mode).
		Str("store", cfg.DBDriver).
		Str("addr", addr).
		Bool("admin", cfg.AdminEnabled()).
		Msg("starting guesstheword")

	switch cfg.Mode {
	case config.ModePoll:
		return servePoll(ctx, tg, d, srv, addr)
	default:
		return serveWebhook(ctx, tg, srv, addr)
	}
}

func serveWebhook(ctx context.Context, tg *telegram.Client, srv *httpserver.Server, addr string) error {
	if cfg.WebhookSecret == "" {
		log.Warn().Msg("WEBHOOK_SECRET is empty; /webhook accepts unauthenticated requests")
	}
	if cfg.WebhookURL != "" {
		if err := tg.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return err
		}
		log.Info().Str("url", cfg.WebhookURL).Msg("webhook registered")
	}
	return srv.Start(ctx, addr)
}

func servePoll(ctx context.Context, tg *telegram.Client, d *bot.Dispatcher, srv *httpserver.Server, addr string) error {
	if err := tg.DeleteWebhook(ctx); err != nil {
		return err
	}

	// health and admin stay available while polling
	go func() {
		if err := srv.Start(ctx, addr); err != nil {
			log.Error().Err(err).Msg("http server exited")
		}
	}()

	p := &telegram.Poller{Client: tg, Timeout: pollTimeout}
	err := p.Run(ctx, d.Handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
