// Package main runs the translation meeting server: the REST surface for
// meeting/attendee metadata, the WebSocket endpoint driving the per-
// connection Translation Pipeline, and graceful shutdown of both.
package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/transcribestreaming"
	awstranslatesvc "github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-translate/backend/config"
	"github.com/aura-translate/backend/internal/asrsession"
	"github.com/aura-translate/backend/internal/meetings"
	"github.com/aura-translate/backend/internal/middleware"
	"github.com/aura-translate/backend/internal/pipeline"
	"github.com/aura-translate/backend/internal/transport"
	"github.com/aura-translate/backend/internal/translate"
	"github.com/aura-translate/backend/internal/tts"
)

const workerPoolSize = 16

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Fatal("aws config", zap.Error(err))
	}

	var asrBackend asrsession.Backend
	switch cfg.ASR.Provider {
	case "aws":
		asrBackend = asrsession.NewAWSTranscribeBackend(transcribestreaming.NewFromConfig(awsCfg))
	default:
		asrBackend = asrsession.NewDeepgramBackend(cfg.ASR.DeepgramAPIKey)
	}

	var translator *translate.Translator
	var synth tts.Synthesizer
	if hasAWSCredentials(ctx, awsCfg) {
		translator = translate.New(translate.NewAWSTranslate(awstranslatesvc.NewFromConfig(awsCfg)))
		synth = tts.NewAWSPolly(polly.NewFromConfig(awsCfg))
	} else {
		logger.Warn("no AWS credentials found, falling back to stub translator and synthesizer")
		translator = translate.New(translate.NewStub())
		synth = tts.NewStub()
	}
	pool := pipeline.NewPool(workerPoolSize)

	var meetingStore meetings.Store
	if cfg.Dynamo.TableName != "" {
		meetingStore = meetings.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.Dynamo.TableName)
	} else {
		logger.Info("DYNAMODB_TABLE_NAME unset, using in-memory meeting store")
		meetingStore = meetings.NewMemStore()
	}
	meetingsHandler := meetings.NewHandler(meetingStore)

	registry := transport.NewRegistry(logger)
	wsDeps := transport.Deps{
		Registry:   registry,
		Translator: translator,
		Synth:      synth,
		Pool:       pool,
		ASRBackend: asrBackend,
		Logger:     logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/api/health", meetings.Health)
	router.POST("/api/meetings", meetingsHandler.Create)
	router.POST("/api/meetings/:id/attendees", meetingsHandler.AddAttendee)
	router.GET("/ws", transport.ServeWs(wsDeps))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	var tlsSrv *http.Server
	if cfg.Server.TLSEnabled() {
		tlsSrv = &http.Server{
			Addr:         ":443",
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS12},
		}
		go func() {
			logger.Info("tls server listening", zap.String("port", "443"))
			if err := tlsSrv.ListenAndServeTLS(cfg.Server.SSLCertPath, cfg.Server.SSLKeyPath); err != nil && err != http.ErrServerClosed {
				logger.Fatal("tls server", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if tlsSrv != nil {
		if err := tlsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("tls server shutdown", zap.Error(err))
		}
	}
	logger.Info("server stopped")
}

// hasAWSCredentials reports whether the default credential chain resolves
// to something usable, the same presence check the meeting store applies
// to DYNAMODB_TABLE_NAME before choosing between its two backends.
func hasAWSCredentials(ctx context.Context, cfg aws.Config) bool {
	_, err := cfg.Credentials.Retrieve(ctx)
	return err == nil
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := cfg.Build()
	return logger
}
