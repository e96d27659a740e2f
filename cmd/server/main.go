// Command server runs the tutoring API.
//
// @title       Tutor API
// @version     1.0
// @description AI tutoring backend: conversations per study mode, review priorities and learning progress.
// @BasePath    /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/cache"
	"github.com/tbourn/go-tutor-backend/internal/config"
	httpapi "github.com/tbourn/go-tutor-backend/internal/http"
	"github.com/tbourn/go-tutor-backend/internal/http/handlers"
	"github.com/tbourn/go-tutor-backend/internal/llm"
	"github.com/tbourn/go-tutor-backend/internal/observability"
	"github.com/tbourn/go-tutor-backend/internal/rag"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/search"
	"github.com/tbourn/go-tutor-backend/internal/services"
	"github.com/tbourn/go-tutor-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownGrace = 15 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = sysutil.NewLogger(os.Stdout, cfg.LogPretty)
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("bye")
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	db, err := repo.Open(ctx, repo.Options{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN(),
		Retries:      cfg.DB.ConnectRetries,
		Backoff:      cfg.DB.ConnectBackoff,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		Tracing:      cfg.OTEL.Enabled,
	})
	if err != nil {
		return err
	}
	defer closeDB(db)
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	retriever, err := newRetriever(ctx, cfg)
	if err != nil {
		return err
	}

	bare, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}
	tutor := llm.Instrument(llm.WithTimeout(bare, cfg.LLM.Timeout))
	log.Info().Str("provider", tutor.Provider()).Msg("llm ready")

	var reviewCache services.ReviewCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer closeRedis(rdb)
		reviewCache = cache.NewReviewCache(rdb, cfg.Redis.TTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("review cache enabled")
	}

	msgSvc := &services.MessageService{
		DB:              db,
		LLM:             tutor,
		Retriever:       retriever,
		Cache:           reviewCache,
		MaxMessageRunes: cfg.MaxMessageRunes,
		TitleTimeout:    cfg.LLM.TitleTimeout,
	}
	defer msgSvc.Wait()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, handlers.Deps{
		Conversations: services.NewConversationService(db, reviewCache),
		Messages:      msgSvc,
		Feedback:      &services.FeedbackService{DB: db},
		Profiles:      &services.ProfileService{DB: db},
		Review:        &services.ReviewService{DB: db, Cache: reviewCache, DefaultLimit: cfg.ReviewLimit},
		Progress:      &services.ProgressService{DB: db, Cache: reviewCache},
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// newRetriever picks the vector store when configured and falls back to
// the local Markdown index. A missing knowledge file disables retrieval.
func newRetriever(ctx context.Context, cfg config.Config) (*rag.Retriever, error) {
	rt := &rag.Retriever{TopK: cfg.RAGTopK, MinScore: cfg.Threshold}

	if cfg.Pinecone.Enabled() {
		ps, err := rag.NewPineconeSearcher(ctx, rag.PineconeOptions{
			APIKey:         cfg.Pinecone.APIKey,
			Index:          cfg.Pinecone.Index,
			Namespace:      cfg.Pinecone.Namespace,
			OpenAIKey:      cfg.LLM.OpenAIAPIKey,
			EmbeddingModel: cfg.Pinecone.EmbeddingModel,
		})
		if err != nil {
			return nil, err
		}
		rt.Searcher = ps
		log.Info().Str("index", cfg.Pinecone.Index).Msg("knowledge base: pinecone")
		return rt, nil
	}

	path := cfg.KnowledgePath()
	idx, err := search.NewIndexFromMarkdown(path, search.WithStopwords(search.PortugueseStopwords))
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("knowledge base unavailable; retrieval disabled")
		return nil, nil
	}
	rt.Searcher = rag.IndexSearcher{Index: idx}
	log.Info().Str("path", path).Int("paragraphs", idx.Len()).Msg("knowledge base: markdown")
	return rt, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func closeRedis(rdb *goredis.Client) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}
