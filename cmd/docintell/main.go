// docintell is a document intelligence service: users upload files, the
// service extracts, chunks, embeds and indexes their text, and questions are
// answered grounded on the retrieved passages.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docintell/internal/api"
	"docintell/internal/config"
	"docintell/internal/database/milvus"
	"docintell/internal/database/minio"
	"docintell/internal/database/mysql"
	"docintell/internal/rag/embedding"
	"docintell/internal/rag/extract"
	"docintell/internal/rag/llm"
	"docintell/internal/rag/pipeline"
	"docintell/internal/rag/splitter"
	"docintell/internal/rag/vectorstore"
	"docintell/internal/service"
	"docintell/internal/store"
	"docintell/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Init(logger.ParseLevel("info"))
		logger.New("main").WithError(err).Fatal("failed to load configuration")
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	log := logger.New("main")
	log.Info("starting " + cfg.App.Name)

	ctx := context.Background()

	db, err := mysql.Connect(&cfg.Databases.MySQL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MySQL")
	}
	defer func() {
		if err := mysql.Close(db); err != nil {
			log.WithError(err).Warn("failed to close MySQL connection")
		}
	}()
	if err := mysql.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database schema")
	}

	milvusClient, err := milvus.Connect(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Milvus")
	}
	defer milvusClient.Close()
	if err := milvusClient.EnsureCollection(ctx, cfg.Embedding.Dim); err != nil {
		log.WithError(err).Fatal("failed to prepare Milvus collection")
	}

	objects, err := minio.Connect(ctx, &cfg.Databases.MinIO)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MinIO")
	}

	embedder, err := embedding.NewModel(&cfg.Embedding)
	if err != nil {
		log.WithError(err).Fatal("failed to build embedding model")
	}
	chatModel, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		log.WithError(err).Fatal("failed to build chat model")
	}

	index, err := vectorstore.NewMilvusStore(milvusClient, logger.New("vectorstore"))
	if err != nil {
		log.WithError(err).Fatal("failed to build vector store")
	}

	tokens, err := splitter.NewTokenCounter()
	if err != nil {
		log.WithError(err).Fatal("failed to build token counter")
	}

	documents := store.NewDocumentStore(db)
	conversations := store.NewConversationStore(db)
	split := splitter.NewRecursiveSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	extractor := extract.NewService()

	ingestion := pipeline.NewIngestion(
		&cfg.RAG, documents, objects, extractor, split, embedder, index, tokens,
		logger.New("ingestion"),
	)
	chat := pipeline.NewChat(
		&cfg.RAG, conversations, embedder, index, chatModel,
		logger.New("chat"),
	)

	svc := service.New(ingestion, chat, documents, conversations, objects, index, logger.New("service"))
	handler := api.NewHandler(svc, logger.New("api"))

	router := api.SetupRouter(handler, cfg.Auth.JwtSecret, map[string]api.HealthChecker{
		"mysql": func(ctx context.Context) error {
			return mysql.HealthCheck(ctx, db)
		},
		"milvus": milvusClient.HealthCheck,
		"minio":  objects.HealthCheck,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		log.Info("listening on " + cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
