package main

import (
	"context"
	"log"
	"time"
	_ "time/tzdata"

	"hexagonal-todo/infrastructure/config"
	"hexagonal-todo/infrastructure/di"
	"hexagonal-todo/interfaces/http/rest"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart = true
)

// init runs during cold start
func init() {
	coldStartTime := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	router := rest.NewRouter(
		container.TodoService,
		container.JWTValidator,
		container.Collector,
		container.Tracer,
		rest.Options{
			EnableCORS:     cfg.EnableCORS,
			AllowedOrigins: cfg.AllowedOrigins,
			Debug:          !cfg.IsProduction(),
		},
		container.Logger,
	)

	chiRouter, ok := router.Setup().(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	if err != nil {
		container.Logger.Error("Proxy failed",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("requestID", req.RequestContext.RequestID),
			zap.Error(err),
		)
	}

	if coldStart {
		if resp.Headers == nil {
			resp.Headers = map[string]string{}
		}
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	}

	_ = container.Logger.Sync()
	return resp, err
}

func main() {
	lambda.Start(Handler)
}
