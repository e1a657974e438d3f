package main

import (
	"context"

	"ravebox/discover/internal/config"
	"ravebox/discover/internal/media"
	"ravebox/discover/internal/queue"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Lambda logs are always structured
	cfg.Log.Format = "json"
	if err := cfg.Log.Apply(); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Media.Region))
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	remover := media.NewRemover(s3.NewFromConfig(awsCfg), newReporter(ctx, cfg))
	lambda.Start(remover.Handle)
}

func newReporter(ctx context.Context, cfg *config.Config) media.Reporter {
	if !cfg.Media.ReportFailures {
		return media.LogReporter{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	q, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		log.Warnf("⚠️ Failure reporting falls back to logs: %v", err)
		return media.LogReporter{}
	}
	return media.NewQueueReporter(q)
}
