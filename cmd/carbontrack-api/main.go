package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rmx-joss/carbontrack/internal/auth"
	"github.com/rmx-joss/carbontrack/internal/config"
	"github.com/rmx-joss/carbontrack/internal/database"
	"github.com/rmx-joss/carbontrack/internal/documents"
	"github.com/rmx-joss/carbontrack/internal/logging"
	"github.com/rmx-joss/carbontrack/internal/records"
	"github.com/rmx-joss/carbontrack/internal/server"
	"github.com/rmx-joss/carbontrack/internal/solar"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carbontrack-api",
		Short: "CarbonTrack emissions tracking service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-driver", defaults.GetString("database.driver"), "Backing store driver (sqlite, postgres)")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("database-dsn", "", "PostgreSQL connection string")
	cmd.PersistentFlags().String("documents-backend", defaults.GetString("documents.backend"), "Document storage backend (local, s3)")
	cmd.PersistentFlags().String("documents-dir", defaults.GetString("documents.base_dir"), "Document storage base directory")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("token.ttl_minutes"), "Session token TTL in minutes")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("signing-secret", "", "Session signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.driver", "database-driver")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "database.dsn", "database-dsn")
	bindFlag(cmd, "documents.backend", "documents-backend")
	bindFlag(cmd, "documents.base_dir", "documents-dir")
	bindFlag(cmd, "token.ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func buildDirectory(appConfig config.AppConfig) *auth.Directory {
	users := []auth.User{{
		Email:    appConfig.AdminEmail,
		Password: appConfig.AdminPassword,
		Role:     auth.RoleAdmin,
	}}
	for _, manager := range appConfig.Managers {
		users = append(users, auth.User{Email: manager.Email, Password: manager.Password, Role: auth.RoleManager})
	}
	for _, employee := range appConfig.Employees {
		users = append(users, auth.User{Email: employee.Email, Password: employee.Password, Role: auth.RoleEmployee})
	}
	return auth.NewDirectory(users)
}

func buildStorage(ctx context.Context, appConfig config.AppConfig) (documents.Storage, error) {
	if appConfig.DocumentBackend == "s3" {
		return documents.NewS3Storage(ctx, documents.S3Config{
			Region:       appConfig.S3Region,
			Bucket:       appConfig.S3Bucket,
			KeyPrefix:    appConfig.S3KeyPrefix,
			AccessKey:    appConfig.S3AccessKey,
			SecretKey:    appConfig.S3SecretKey,
			BaseEndpoint: appConfig.S3Endpoint,
		})
	}
	return documents.NewLocalStorage(appConfig.DocumentBaseDir)
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	var (
		recordStore records.RecordStore
		gormDB      *gorm.DB
	)
	switch appConfig.DatabaseDriver {
	case "postgres":
		sqlDB, err := database.OpenPostgres(ctx, appConfig.DatabaseDSN, logger)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		recordStore, err = records.NewPostgresStore(sqlDB)
		if err != nil {
			return err
		}
	default:
		gormDB, err = database.OpenSQLite(appConfig.DatabasePath, logger)
		if err != nil {
			return err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		recordStore, err = records.NewGormStore(gormDB)
		if err != nil {
			return err
		}
	}

	cache, err := records.NewCache(records.CacheConfig{
		Store:  recordStore,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	if err := cache.LoadAll(ctx); err != nil {
		return err
	}

	storage, err := buildStorage(ctx, appConfig)
	if err != nil {
		return err
	}
	documentStore, err := documents.NewStore(documents.StoreConfig{
		Storage: storage,
		Clock:   time.Now,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	tokenManager, err := auth.NewTokenManager(auth.TokenManagerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        "carbontrack",
		TokenTTL:      appConfig.TokenTTL,
	})
	if err != nil {
		return err
	}

	deps := server.Dependencies{
		Cache:     cache,
		Documents: documentStore,
		Directory: buildDirectory(appConfig),
		Tokens:    tokenManager,
		Config:    appConfig,
		Logger:    logger,
	}
	if gormDB != nil {
		logStore, err := documents.NewGormLogStore(gormDB)
		if err != nil {
			return err
		}
		deps.Logs = logStore

		solarService, err := solar.NewService(solar.ServiceConfig{
			Database: gormDB,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		deps.Solar = solarService
	}

	handler, err := server.NewHTTPHandler(deps)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
