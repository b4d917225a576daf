package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/web3ix-api/internal/config"
	"github.com/web3ix-api/internal/domain"
	"github.com/web3ix-api/internal/infrastructure/dynamo"
	"github.com/web3ix-api/internal/infrastructure/gotrue"
	jwtinfra "github.com/web3ix-api/internal/infrastructure/jwt"
	"github.com/web3ix-api/internal/infrastructure/localauth"
	"github.com/web3ix-api/internal/infrastructure/sendgrid"
	"github.com/web3ix-api/internal/infrastructure/smtp"
	"github.com/web3ix-api/internal/logger"
	"github.com/web3ix-api/internal/metrics"
	"github.com/web3ix-api/internal/scheduler"
	transporthttp "github.com/web3ix-api/internal/transport/http"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	zl, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck
	if envErr != nil {
		zl.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		zl.Fatal("dynamodb client", zap.Error(err))
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, zl)

	codeRepo := dynamo.NewCodeRepo(dynamoClient, cfg.DynamoTables.VerificationCodes)

	identity, err := newIdentityProvider(cfg, dynamoClient, zl)
	if err != nil {
		zl.Fatal("identity provider", zap.Error(err))
	}
	mailer, err := newMailer(cfg, zl)
	if err != nil {
		zl.Fatal("mailer", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	provMetrics := metrics.New(reg)

	var reaper *scheduler.Reaper
	if cfg.CodeReaperSchedule != "" {
		reaper = scheduler.NewReaper(codeRepo, zl, provMetrics)
		if err := reaper.Start(cfg.CodeReaperSchedule); err != nil {
			zl.Fatal("code reaper", zap.Error(err))
		}
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		CodeRepo:         codeRepo,
		PostRepo:         dynamo.NewPostRepo(dynamoClient, cfg.DynamoTables.Posts),
		IdentityProvider: identity,
		Mailer:           mailer,
		Metrics:          provMetrics,
		Gatherer:         reg,
		Logger:           zl,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("server starting",
			zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv),
			zap.String("identity_provider", cfg.IdentityProvider), zap.String("mail_provider", cfg.MailProvider))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if reaper != nil {
		reaper.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}

func newIdentityProvider(cfg *config.Config, client *dynamodb.Client, zl *zap.Logger) (domain.IdentityProvider, error) {
	switch cfg.IdentityProvider {
	case config.IdentityGoTrue:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the gotrue provider")
		}
		return gotrue.NewClient(cfg, zl), nil
	case config.IdentityLocal:
		signer, err := jwtinfra.NewProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("local identity provider needs JWT keys: %w", err)
		}
		accounts := dynamo.NewAccountRepo(client, cfg.DynamoTables.Accounts)
		return localauth.NewProvider(accounts, signer, zl), nil
	default:
		return nil, fmt.Errorf("unknown IDENTITY_PROVIDER %q", cfg.IdentityProvider)
	}
}

func newMailer(cfg *config.Config, zl *zap.Logger) (transporthttp.Mailer, error) {
	switch cfg.MailProvider {
	case config.MailSMTP:
		return smtp.NewMailer(cfg), nil
	case config.MailSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid mail provider")
		}
		return sendgrid.NewMailer(cfg, zl), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}
}
