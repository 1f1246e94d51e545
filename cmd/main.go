package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"rpl-relay/handler"
	"rpl-relay/internal/integrations/azureopenai"
	"rpl-relay/internal/integrations/azurespeech"
	"rpl-relay/internal/integrations/paramstore"
	"rpl-relay/internal/profile"
	"rpl-relay/internal/repository"
	"rpl-relay/internal/usecase"
)

func main() {
	ctx := context.Background()

	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	// ---- Configuration (read only here) ----
	port := envInt("PORT", 3000)
	paramPrefix := os.Getenv("RPL_PARAM_PREFIX")
	usageTable := os.Getenv("USAGE_TABLE")
	onLambda := os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""

	// ---- Profile sources ----
	sources := profile.Chain{profile.NewEnvSource()}
	var awsCfg *aws.Config
	if paramPrefix != "" || usageTable != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		awsCfg = &cfg
	}
	if paramPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(*awsCfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		paramSource, err := profile.NewParamSource(ssmClient, paramPrefix)
		if err != nil {
			slog.Error("failed to create parameter source", "err", err)
			os.Exit(1)
		}
		sources = append(sources, paramSource)
	}
	store, err := profile.NewStore(sources)
	if err != nil {
		slog.Error("failed to create profile store", "err", err)
		os.Exit(1)
	}

	// ---- Services ----
	var relayOpts []usecase.RelayOption
	if usageTable != "" {
		usage, err := repository.New(awsdynamodb.NewFromConfig(*awsCfg), usageTable)
		if err != nil {
			slog.Error("failed to create usage ledger", "err", err)
			os.Exit(1)
		}
		relayOpts = append(relayOpts, usecase.WithUsageRecorder(usage))
	}
	relay, err := usecase.NewRelayService(store, azureopenai.NewClient(), relayOpts...)
	if err != nil {
		slog.Error("failed to create relay service", "err", err)
		os.Exit(1)
	}
	speech, err := usecase.NewSpeechService(store, azurespeech.NewClient())
	if err != nil {
		slog.Error("failed to create speech service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(relay, speech)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if onLambda {
		lambda.Start(h.Handle)
		return
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
	slog.Info("server listening", "addr", srv.Addr, "param_prefix", paramPrefix, "usage_table", usageTable)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
