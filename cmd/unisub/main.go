package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/unisub/unisub/internal/config"
	"github.com/unisub/unisub/internal/gateway"
	"github.com/unisub/unisub/internal/http_api"
	"github.com/unisub/unisub/internal/marketplace"
	"github.com/unisub/unisub/internal/models"
	"github.com/unisub/unisub/internal/network"
	"github.com/unisub/unisub/internal/notificator"
	"github.com/unisub/unisub/internal/repository"
	"github.com/unisub/unisub/internal/wallet"
	"github.com/unisub/unisub/pkg/logger"
	"github.com/unisub/unisub/pkg/validation"
)

func main() {
	app := &cli.App{
		Name:  "unisub",
		Usage: "UniSub is a subscription marketplace client backed by subscription NFTs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.StringFlag{Name: "rpc-url", Aliases: []string{"r"}, Usage: "Blockchain RPC URL"},
			&cli.StringFlag{Name: "wallet-service-url", Aliases: []string{"w"}, Usage: "Wallet bridge URL"},
			&cli.StringFlag{Name: "factory-address", Aliases: []string{"f"}, Usage: "Marketplace factory contract address"},
			&cli.StringFlag{Name: "stable-token-address", Aliases: []string{"s"}, Usage: "Stable token contract address"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("wallet-service-url") {
		cfg.WalletServiceURL = c.String("wallet-service-url")
	}
	if c.IsSet("factory-address") {
		cfg.FactoryAddress = c.String("factory-address")
	}
	if c.IsSet("stable-token-address") {
		cfg.StableTokenAddress = c.String("stable-token-address")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	factoryAddr, err := validation.ParseAddress(cfg.FactoryAddress)
	if err != nil {
		return fmt.Errorf("invalid factory address: %v", err)
	}
	stableAddr, err := validation.ParseAddress(cfg.StableTokenAddress)
	if err != nil {
		return fmt.Errorf("invalid stable token address: %v", err)
	}

	// Initialize database
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize wallet provider and contract gateway
	provider, err := wallet.NewRemoteProvider(cfg.WalletServiceURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to wallet service: %v", err)
	}
	defer provider.Close()

	contracts, err := gateway.New(cfg.RPCURL, factoryAddr, stableAddr, cfg.StableDecimals, provider, log)
	if err != nil {
		return fmt.Errorf("failed to initialize contract gateway: %v", err)
	}
	defer contracts.Close()

	connection := wallet.NewConnection(provider, contracts, time.Duration(cfg.BalancePollSeconds)*time.Second, log)
	policy := network.NewPolicy(log)

	// Initialize notificator
	notifier := buildNotificator(cfg, log)

	// Initialize marketplace engine and API server
	market := marketplace.NewOrchestrator(contracts, connection, db, notifier, log)
	apiServer := http_api.NewHTTPServer(market, connection, provider, policy, db, cfg.StableDecimals, cfg.APIPort, log)

	go apiServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	connection.Disconnect()
	return apiServer.Shutdown()
}

// buildNotificator wires the configured channels; nil when none are set.
func buildNotificator(cfg *config.Config, log *logger.Logger) models.NotificationService {
	var telNotif *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		var err error
		telNotif, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error("Failed to initialize telegram notificator: ", err)
			telNotif = nil
		}
	}

	var emailNotif *notificator.EmailNotificator
	if cfg.SMTPUser != "" && cfg.NotifyEmail != "" {
		emailNotif = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.NotifyEmail)
	}

	if telNotif == nil && emailNotif == nil {
		return nil
	}
	return notificator.NewNotificator(log, telNotif, emailNotif)
}
