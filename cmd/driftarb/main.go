package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mwatts/driftarb/api"
	"github.com/mwatts/driftarb/internal/config"
	"github.com/mwatts/driftarb/pkg/arb"
	"github.com/mwatts/driftarb/pkg/binance"
	"github.com/mwatts/driftarb/pkg/drift"
	"github.com/mwatts/driftarb/pkg/feed"
	"github.com/mwatts/driftarb/pkg/notify"
)

var (
	cfgFile string
	logger  *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "driftarb",
		Short: "Drift-Binance spot/perp arbitrage bot",
		Long:  `Monitors the spread between Binance spot and Drift perpetual prices and opens offsetting position pairs with dynamic capital allocation`,
		Run:   runBot,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) {
	// Credentials commonly live in a local .env during development
	_ = godotenv.Load()

	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithError(err).Error("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Venue clients
	spotClient := binance.NewClient(cfg.Binance.APIKey, cfg.Binance.APISecret, cfg.Binance.Testnet, logger)

	var driftAuth *drift.JWTAuthenticator
	if cfg.Drift.APIKeyName != "" && cfg.Drift.PrivateKeyPEM != "" {
		driftAuth, err = drift.NewJWTAuthenticator(cfg.Drift.APIKeyName, cfg.Drift.PrivateKeyPEM)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create drift gateway authenticator")
		}
	}
	driftClient := drift.NewClient(cfg.Drift.GatewayURL, driftAuth, logger)

	// Notifications
	var senders []notify.Sender
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	} else {
		logger.Warn("No Discord webhook configured, notifications disabled")
	}
	notifier := notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// Decision core
	tracker := arb.NewTracker(cfg.Trading.MaxConcurrentOrders)
	planner := arb.NewPlanner(arb.Limits{
		MinTradeSize:        cfg.Trading.MinTradeSize,
		MaxTradeSize:        cfg.Trading.MaxTradeSize,
		MaxConcurrentOrders: cfg.Trading.MaxConcurrentOrders,
		FirstOrderFraction:  cfg.Trading.FirstOrderFraction,
		SecondOrderFraction: cfg.Trading.SecondOrderFraction,
	})
	gate := arb.NewBalanceGate(spotClient, cfg.Trading.FeeBuffer, logger)
	executor := arb.NewExecutor(spotClient, driftClient, planner, gate, tracker, cfg.Trading.FeeRate, logger)
	detector := arb.NewDetector(cfg.Trading.MinSpread, cfg.Trading.ReferenceNotional)
	bot := arb.NewBot(detector, executor, tracker, notifier, cfg.Trading.ReportInterval, nil, logger)

	// Price feed
	stream := binance.NewStream(cfg.Binance.Testnet, logger)
	priceFeed := feed.New(stream, driftClient, cfg.Trading.Pairs, cfg.Trading.PollInterval, logger)

	bot.NotifyStartup(ctx, cfg.Trading.Pairs)

	go func() {
		if err := priceFeed.Start(ctx, bot.OnTick); err != nil && ctx.Err() == nil {
			logger.WithError(err).Fatal("Price feed stopped")
		}
	}()

	apiServer := api.NewServer(tracker, logger, fmt.Sprintf("%d", cfg.Server.Port))
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start API server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Arbitrage bot is running. Press Ctrl+C to stop.")

	<-sigChan
	logger.Info("Received shutdown signal")

	bot.NotifyShutdown(context.Background())
	cancel()

	logger.Info("Arbitrage bot stopped")
}
