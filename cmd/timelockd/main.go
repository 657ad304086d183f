package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/MarkoPoloResearchLab/timelock/internal/eventlog"
	"github.com/MarkoPoloResearchLab/timelock/internal/httpapi"
	"github.com/MarkoPoloResearchLab/timelock/internal/tokenbank"
	"github.com/MarkoPoloResearchLab/timelock/pkg/timelock"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	flagDatabaseURL    = "database-url"
	flagListenAddr     = "listen-addr"
	flagAdmin          = "admin"
	flagLockFee        = "lock-fee"
	flagJWTSigningKey  = "jwt-signing-key"
	flagJWTIssuer      = "jwt-issuer"
	flagAllowedOrigins = "allowed-origins"

	configKeyDatabaseURL    = "database_url"
	configKeyListenAddr     = "listen_addr"
	configKeyAdmin          = "admin"
	configKeyLockFee        = "lock_fee"
	configKeyJWTSigningKey  = "jwt_signing_key"
	configKeyJWTIssuer      = "jwt_issuer"
	configKeyAllowedOrigins = "allowed_origins"

	defaultDatabaseURL = "sqlite:///tmp/timelock.db"
	defaultListenAddr  = ":8080"
)

type runtimeConfig struct {
	DatabaseURL    string
	ListenAddr     string
	Admin          string
	LockFee        int64
	JWTSigningKey  string
	JWTIssuer      string
	AllowedOrigins string
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "timelockd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "timelockd",
		Short:         "Time-locked custody ledger HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "PostgreSQL or sqlite connection string")
	cmd.Flags().String(flagListenAddr, defaultListenAddr, "HTTP listen address")
	cmd.Flags().String(flagAdmin, "", "administrator principal")
	cmd.Flags().Int64(flagLockFee, 0, "creation fee in base units")
	cmd.Flags().String(flagJWTSigningKey, "", "HS256 signing key for bearer tokens")
	cmd.Flags().String(flagJWTIssuer, "", "expected JWT issuer")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated CORS origins")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	envBindings := map[string]string{
		configKeyDatabaseURL:    "DATABASE_URL",
		configKeyListenAddr:     "LISTEN_ADDR",
		configKeyAdmin:          "TIMELOCK_ADMIN",
		configKeyLockFee:        "LOCK_FEE",
		configKeyJWTSigningKey:  "JWT_SIGNING_KEY",
		configKeyJWTIssuer:      "JWT_ISSUER",
		configKeyAllowedOrigins: "ALLOWED_ORIGINS",
	}
	for configKey, envName := range envBindings {
		if err := viper.BindEnv(configKey, envName); err != nil {
			return err
		}
	}

	flagBindings := map[string]string{
		configKeyDatabaseURL:    flagDatabaseURL,
		configKeyListenAddr:     flagListenAddr,
		configKeyAdmin:          flagAdmin,
		configKeyLockFee:        flagLockFee,
		configKeyJWTSigningKey:  flagJWTSigningKey,
		configKeyJWTIssuer:      flagJWTIssuer,
		configKeyAllowedOrigins: flagAllowedOrigins,
	}
	for configKey, flagName := range flagBindings {
		if err := viper.BindPFlag(configKey, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	cfg.DatabaseURL = viper.GetString(configKeyDatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	cfg.ListenAddr = viper.GetString(configKeyListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	cfg.Admin = viper.GetString(configKeyAdmin)
	cfg.LockFee = viper.GetInt64(configKeyLockFee)
	cfg.JWTSigningKey = viper.GetString(configKeyJWTSigningKey)
	cfg.JWTIssuer = viper.GetString(configKeyJWTIssuer)
	cfg.AllowedOrigins = viper.GetString(configKeyAllowedOrigins)

	if cfg.Admin == "" {
		return fmt.Errorf("admin principal is required")
	}
	if cfg.LockFee < 0 {
		return fmt.Errorf("lock fee must not be negative")
	}
	if cfg.JWTSigningKey == "" {
		return fmt.Errorf("jwt signing key is required")
	}
	return nil
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, cleanup, driver, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer cleanup()

	if err := prepareSchema(gormDB, driver); err != nil {
		return err
	}

	admin, err := timelock.NewPrincipal(cfg.Admin)
	if err != nil {
		return fmt.Errorf("admin principal: %w", err)
	}
	lockFee, err := timelock.NewAmount(cfg.LockFee)
	if err != nil {
		return fmt.Errorf("lock fee: %w", err)
	}

	bank := tokenbank.NewBank(gormDB)
	feeBank := tokenbank.NewFeeBank(gormDB)
	journal := eventlog.NewJournal(gormDB, logger)
	sink := eventlog.NewMultiSink(journal, eventlog.NewZapSink(logger))

	clock := func() int64 { return time.Now().UTC().Unix() }
	service, err := timelock.NewService(bank, feeBank, admin, clock,
		timelock.WithLockFee(lockFee),
		timelock.WithEventSink(sink),
		timelock.WithOperationLogger(eventlog.NewZapOperationLogger(logger)),
	)
	if err != nil {
		return fmt.Errorf("timelock service init: %w", err)
	}

	apiConfig := httpapi.Config{
		ListenAddr:     cfg.ListenAddr,
		AllowedOrigins: httpapi.ParseAllowedOrigins(cfg.AllowedOrigins),
		JWTSigningKey:  cfg.JWTSigningKey,
		JWTIssuer:      cfg.JWTIssuer,
	}
	return httpapi.Run(ctx, apiConfig, service, journal, logger)
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, string, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, "", err
	}

	var db *gorm.DB
	gormConfig := &gorm.Config{}
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormConfig)
	default:
		return nil, nil, "", fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, "", err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, "", err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, driver, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "timelock.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return "sqlite", sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return "sqlite", sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	abs := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}

func prepareSchema(db *gorm.DB, driver string) error {
	if driver != "sqlite" {
		return nil
	}
	if err := db.AutoMigrate(&tokenbank.Holding{}, &tokenbank.FeeBalance{}, &eventlog.EventRecord{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
