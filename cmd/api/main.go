package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/learnix/backend/internal/config"
	"github.com/learnix/backend/internal/embedding"
	"github.com/learnix/backend/internal/handler"
	"github.com/learnix/backend/internal/model/document"
	aiService "github.com/learnix/backend/internal/service/ai"
	historyService "github.com/learnix/backend/internal/service/history"
	ingestService "github.com/learnix/backend/internal/service/ingest"
	qaService "github.com/learnix/backend/internal/service/qa"
	retrievalService "github.com/learnix/backend/internal/service/retrieval"
	"github.com/learnix/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Chat history, persisted as a JSON file.
	historyStorage, err := storage.NewFileStorage(cfg.History.FilePath)
	if err != nil {
		log.Fatalf("failed to prepare history storage: %v", err)
	}
	hist, err := historyService.NewService(historyStorage, cfg.History.MaxMessages)
	if err != nil {
		log.Fatalf("failed to load chat history: %v", err)
	}

	// Chunk store: Badger when a path is configured, in-memory otherwise.
	var chunks document.Store
	if cfg.Chunks.DBPath != "" {
		badgerStore, err := storage.NewBadgerStore(cfg.Chunks.DBPath)
		if err != nil {
			log.Fatalf("failed to open chunk store: %v", err)
		}
		defer badgerStore.Close()
		chunks = badgerStore
		log.Printf("chunk store: badger at %s", cfg.Chunks.DBPath)
	} else {
		chunks = document.NewMemoryStore()
		log.Println("chunk store: in-memory (set CHUNK_DB_PATH to persist)")
	}

	// Embedding provider.
	var embedder embedding.Embedder
	if cfg.UseMocks || cfg.Embedding.BaseURL == "" {
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimension)
		log.Println("embeddings: deterministic mock")
	} else {
		embedder = embedding.NewHTTPEmbedder(
			cfg.Embedding.BaseURL,
			cfg.Embedding.Model,
			cfg.Embedding.Dimension,
			time.Duration(cfg.Embedding.TimeoutSeconds)*time.Second,
		)
		log.Printf("embeddings: %s via %s", cfg.Embedding.Model, cfg.Embedding.BaseURL)
	}

	// Answer generator.
	var generator qaService.Generator
	if !cfg.UseMocks && cfg.AI.Enabled() {
		gemini, err := aiService.NewService(ctx, cfg.AI)
		if err != nil {
			log.Fatalf("failed to initialize answer generator: %v", err)
		}
		generator = gemini
		log.Printf("answers: gemini model %s", cfg.AI.Model)
	} else {
		generator = aiService.NewMockGenerator()
		log.Println("answers: mock generator (set GEMINI_API_KEY and USE_MOCKS=0)")
	}

	retriever := retrievalService.NewService(embedder, chunks)
	qa := qaService.NewService(retriever, generator, hist, cfg.Retrieval.DefaultTopK, cfg.History.RecordFailures)
	ingest := ingestService.NewService(chunks, embedder, cfg.Chunks.ChunkSize, cfg.Chunks.ChunkOverlap)

	mockMode := cfg.UseMocks || !cfg.AI.Enabled()
	router := handler.NewRouter(hist, qa, ingest, mockMode)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Learnix backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
