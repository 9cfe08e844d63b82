package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/dama-backend/internal/config"
	"github.com/benbeisheim/dama-backend/internal/controller"
	"github.com/benbeisheim/dama-backend/internal/logx"
	"github.com/benbeisheim/dama-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "dama-server",
		Usage: "Dama rules engine and game server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "env file to load", Value: ".env"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP and websocket server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "listen address (overrides DAMA_ADDR)"},
					&cli.StringFlag{Name: "origins", Usage: "comma-separated allowed origins (overrides DAMA_ALLOWED_ORIGINS)"},
					&cli.StringFlag{Name: "log-level", Usage: "zerolog level (overrides DAMA_LOG_LEVEL)"},
					&cli.BoolFlag{Name: "promote-mid-chain", Usage: "kings promoted mid-chain keep capturing as kings"},
					&cli.BoolFlag{Name: "flying-king-slides", Usage: "kings slide any distance"},
				},
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("dama-server")
	}
}

func serve(cCtx *cli.Context) error {
	cfg, err := config.Load(cCtx.String("env-file"))
	if err != nil {
		return err
	}
	if cCtx.IsSet("addr") {
		cfg.Addr = cCtx.String("addr")
	}
	if cCtx.IsSet("origins") {
		cfg.AllowedOrigins = config.SplitList(cCtx.String("origins"))
	}
	if cCtx.IsSet("log-level") {
		cfg.LogLevel = cCtx.String("log-level")
	}
	if cCtx.IsSet("promote-mid-chain") {
		cfg.Rules.PromoteMidChain = cCtx.Bool("promote-mid-chain")
	}
	if cCtx.IsSet("flying-king-slides") {
		cfg.Rules.FlyingKingSlides = cCtx.Bool("flying-king-slides")
	}
	logx.Configure(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameManager := service.NewGameManager(cfg.Rules)
	go gameManager.Run(ctx, cfg.MatchmakingInterval)
	gameService := service.NewGameService(gameManager)

	app := controller.NewApp(gameService, cfg.AllowedOrigins)
	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Bool("promoteMidChain", cfg.Rules.PromoteMidChain).
		Bool("flyingKingSlides", cfg.Rules.FlyingKingSlides).Msg("listening")
	return app.Listen(cfg.Addr)
}
