package config

import "testing"

func clearDSNEnv(t *testing.T) {
	t.Helper()
	for _, name := range databaseURLEnvChain {
		t.Setenv(name, "")
	}
}

func TestResolveDatabaseURL(t *testing.T) {
	t.Run("no variable set", func(t *testing.T) {
		clearDSNEnv(t)
		if dsn, ok := ResolveDatabaseURL(); ok {
			t.Errorf("expected no DSN, got %q", dsn)
		}
	})

	t.Run("last chain entry is found", func(t *testing.T) {
		clearDSNEnv(t)
		t.Setenv("NEON_DATABASE_URL", "postgres://neon")
		dsn, ok := ResolveDatabaseURL()
		if !ok || dsn != "postgres://neon" {
			t.Errorf("expected neon DSN, got %q ok=%v", dsn, ok)
		}
	})

	t.Run("earlier entry wins", func(t *testing.T) {
		clearDSNEnv(t)
		t.Setenv("POSTGRES_URL", "postgres://pooled")
		t.Setenv("NEON_DATABASE_URL", "postgres://neon")
		dsn, _ := ResolveDatabaseURL()
		if dsn != "postgres://pooled" {
			t.Errorf("expected POSTGRES_URL to win, got %q", dsn)
		}
	})

	t.Run("DATABASE_URL wins over everything", func(t *testing.T) {
		clearDSNEnv(t)
		for _, name := range databaseURLEnvChain {
			t.Setenv(name, "postgres://"+name)
		}
		dsn, _ := ResolveDatabaseURL()
		if dsn != "postgres://DATABASE_URL" {
			t.Errorf("expected DATABASE_URL to win, got %q", dsn)
		}
	})

	t.Run("whitespace counts as unset", func(t *testing.T) {
		clearDSNEnv(t)
		t.Setenv("DATABASE_URL", "   ")
		t.Setenv("POSTGRES_URL", "postgres://real")
		dsn, _ := ResolveDatabaseURL()
		if dsn != "postgres://real" {
			t.Errorf("expected blank DATABASE_URL to be skipped, got %q", dsn)
		}
	})
}
