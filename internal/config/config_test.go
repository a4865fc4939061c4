package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "USE_MOCKS", "CHUNK_SIZE", "CHUNK_OVERLAP", "HISTORY_MAX_MESSAGES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.UseMocks {
		t.Fatal("mocks should be enabled by default")
	}
	if cfg.Chunks.ChunkSize != 1000 || cfg.Chunks.ChunkOverlap != 200 {
		t.Fatalf("unexpected chunking defaults: %+v", cfg.Chunks)
	}
	if cfg.History.MaxMessages != 50 {
		t.Fatalf("unexpected history limit: %d", cfg.History.MaxMessages)
	}
}

func TestLoadRejectsNonPositiveChunkSize(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "0")
	t.Setenv("CHUNK_OVERLAP", "-10")

	if _, err := Load(); err == nil {
		t.Fatal("CHUNK_SIZE=0 should be rejected")
	}
}

func TestLoadRejectsNegativeOverlap(t *testing.T) {
	t.Setenv("CHUNK_OVERLAP", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("negative CHUNK_OVERLAP should be rejected")
	}
}

func TestLoadRejectsOverlapNotSmallerThanSize(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	if _, err := Load(); err == nil {
		t.Fatal("CHUNK_OVERLAP equal to CHUNK_SIZE should be rejected")
	}
}

func TestLoadRejectsNonPositiveHistoryLimit(t *testing.T) {
	t.Setenv("HISTORY_MAX_MESSAGES", "0")

	if _, err := Load(); err == nil {
		t.Fatal("HISTORY_MAX_MESSAGES=0 should be rejected")
	}
}

func TestLoadPortForms(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("bare port not prefixed: %s", cfg.Server.Addr)
	}

	t.Setenv("PORT", "127.0.0.1:9090")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Fatalf("host:port form rewritten: %s", cfg.Server.Addr)
	}
}
