package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pipeline.ChunksPerChapter != 6 {
		t.Errorf("ChunksPerChapter = %d, want 6", cfg.Pipeline.ChunksPerChapter)
	}
	if cfg.Pipeline.ChunksPerIllustration != 6 {
		t.Errorf("ChunksPerIllustration = %d, want 6", cfg.Pipeline.ChunksPerIllustration)
	}
	if cfg.Pipeline.Transcriber != "openai" {
		t.Errorf("Transcriber = %q, want openai", cfg.Pipeline.Transcriber)
	}
	if cfg.Pipeline.TermMatchThreshold != 0.6 {
		t.Errorf("TermMatchThreshold = %v, want 0.6", cfg.Pipeline.TermMatchThreshold)
	}
	if cfg.Checkpoint.Backend != "memory" {
		t.Errorf("Checkpoint.Backend = %q, want memory", cfg.Checkpoint.Backend)
	}
	if cfg.Storage.URLExpiry != 24*time.Hour {
		t.Errorf("Storage.URLExpiry = %v, want 24h", cfg.Storage.URLExpiry)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled should default to false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PIPELINE_CHUNKS_PER_CHAPTER", "3")
	t.Setenv("CHECKPOINT_BACKEND", "sqlite")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pipeline.ChunksPerChapter != 3 {
		t.Errorf("ChunksPerChapter = %d, want 3", cfg.Pipeline.ChunksPerChapter)
	}
	if cfg.Checkpoint.Backend != "sqlite" {
		t.Errorf("Checkpoint.Backend = %q, want sqlite", cfg.Checkpoint.Backend)
	}
	if cfg.JWT.AccessSecret != "secret" {
		t.Errorf("JWT.AccessSecret = %q", cfg.JWT.AccessSecret)
	}
	if got := cfg.GetRedisAddr(); got != "cache:6380" {
		t.Errorf("GetRedisAddr() = %q, want cache:6380", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "zero chapter size",
			env:  map[string]string{"PIPELINE_CHUNKS_PER_CHAPTER": "0"},
			want: "ChunksPerChapter",
		},
		{
			name: "unknown transcriber",
			env:  map[string]string{"PIPELINE_TRANSCRIBER": "whisper"},
			want: "Transcriber",
		},
		{
			name: "assemblyai without key",
			env:  map[string]string{"PIPELINE_TRANSCRIBER": "assemblyai", "ASSEMBLYAI_API_KEY": ""},
			want: "ASSEMBLYAI_API_KEY",
		},
		{
			name: "unknown checkpoint backend",
			env:  map[string]string{"CHECKPOINT_BACKEND": "etcd"},
			want: "Backend",
		},
		{
			name: "min conns above max",
			env:  map[string]string{"DB_MIN_CONNS": "10", "DB_MAX_CONNS": "2"},
			want: "DB_MIN_CONNS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "talks", SSLMode: "disable",
	}}
	want := "host=db port=5432 user=u password=p dbname=talks sslmode=disable"
	if got := cfg.GetDatabaseDSN(); got != want {
		t.Errorf("GetDatabaseDSN() = %q, want %q", got, want)
	}
}
