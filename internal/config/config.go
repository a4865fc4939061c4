package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every runtime setting for the service.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Embedding EmbeddingConfig
	History   HistoryConfig
	Chunks    ChunkStoreConfig
	Retrieval RetrievalConfig

	// UseMocks switches both the embedder and the answer generator to
	// deterministic offline implementations. Defaults to true so the
	// service runs without any credentials, matching local development.
	UseMocks bool
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	useMocks, err := parseBoolEnv("USE_MOCKS", true)
	if err != nil {
		return nil, err
	}

	embedding, err := loadEmbeddingConfig()
	if err != nil {
		return nil, err
	}

	history, err := loadHistoryConfig()
	if err != nil {
		return nil, err
	}

	chunks, err := loadChunkStoreConfig()
	if err != nil {
		return nil, err
	}

	topK, err := parseIntEnv("RETRIEVAL_TOP_K", 10)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		AI: AIConfig{
			APIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			Model:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Embedding: embedding,
		History:   history,
		Chunks:    chunks,
		Retrieval: RetrievalConfig{DefaultTopK: topK},
		UseMocks:  useMocks,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the Gemini answer generator.
type AIConfig struct {
	APIKey string
	Model  string
}

// Enabled reports whether the Gemini credentials are present.
func (c AIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// EmbeddingConfig describes the embedding provider. An empty BaseURL
// selects the deterministic mock embedder.
type EmbeddingConfig struct {
	BaseURL        string
	Model          string
	Dimension      int
	TimeoutSeconds int
}

func loadEmbeddingConfig() (EmbeddingConfig, error) {
	dim, err := parseIntEnv("EMBEDDING_DIM", 384)
	if err != nil {
		return EmbeddingConfig{}, err
	}

	timeout, err := parseIntEnv("EMBEDDING_TIMEOUT", 30)
	if err != nil {
		return EmbeddingConfig{}, err
	}

	return EmbeddingConfig{
		BaseURL:        strings.TrimSpace(os.Getenv("EMBEDDING_BASE_URL")),
		Model:          getEnvOrDefault("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		Dimension:      dim,
		TimeoutSeconds: timeout,
	}, nil
}

// HistoryConfig bounds and locates the persisted chat history.
type HistoryConfig struct {
	FilePath       string
	MaxMessages    int
	RecordFailures bool
}

func loadHistoryConfig() (HistoryConfig, error) {
	max, err := parseIntEnv("HISTORY_MAX_MESSAGES", 50)
	if err != nil {
		return HistoryConfig{}, err
	}
	if max < 1 {
		return HistoryConfig{}, fmt.Errorf("HISTORY_MAX_MESSAGES must be at least 1, got %d", max)
	}

	recordFailures, err := parseBoolEnv("HISTORY_RECORD_FAILED", false)
	if err != nil {
		return HistoryConfig{}, err
	}

	return HistoryConfig{
		FilePath:       getEnvOrDefault("HISTORY_FILE", "./storage/chat_history.json"),
		MaxMessages:    max,
		RecordFailures: recordFailures,
	}, nil
}

// ChunkStoreConfig locates the chunk database and sets the chunking
// geometry. An empty DBPath selects the in-memory store.
type ChunkStoreConfig struct {
	DBPath       string
	ChunkSize    int
	ChunkOverlap int
}

func loadChunkStoreConfig() (ChunkStoreConfig, error) {
	size, err := parseIntEnv("CHUNK_SIZE", 1000)
	if err != nil {
		return ChunkStoreConfig{}, err
	}

	if size < 1 {
		return ChunkStoreConfig{}, fmt.Errorf("CHUNK_SIZE must be at least 1, got %d", size)
	}

	overlap, err := parseIntEnv("CHUNK_OVERLAP", 200)
	if err != nil {
		return ChunkStoreConfig{}, err
	}
	if overlap < 0 {
		return ChunkStoreConfig{}, fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return ChunkStoreConfig{}, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", overlap, size)
	}

	return ChunkStoreConfig{
		DBPath:       strings.TrimSpace(os.Getenv("CHUNK_DB_PATH")),
		ChunkSize:    size,
		ChunkOverlap: overlap,
	}, nil
}

// RetrievalConfig holds retrieval defaults applied when the caller does
// not specify them.
type RetrievalConfig struct {
	DefaultTopK int
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
