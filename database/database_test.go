package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/scribe/component"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/migrations"
)

func tempDSN(t *testing.T) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	comp := NewComponent(Config{DSN: tempDSN(t), AutoMigrate: true}, logger.Nop()).
		WithMigrations(migrations.FS, ".")

	if comp.DB() != nil {
		t.Error("DB() should be nil before Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health before Start = %s, want unhealthy", h.Status)
	}

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health after Start = %s (%s), want healthy", h.Status, h.Message)
	}

	for _, table := range []string{"audio_clips", "transcripts"} {
		if !comp.DB().GormDB.Migrator().HasTable(table) {
			t.Errorf("table %s missing after migrations", table)
		}
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if err := comp.DB().Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(context.Background(), Config{DSN: "file::memory:"}, logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.GormDB.Exec("CREATE TABLE t (v INTEGER)").Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	// A second connection would see an empty database.
	if err := db.GormDB.Exec("INSERT INTO t (v) VALUES (1)").Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if h := db.CheckHealth(context.Background()); !h.Connected || h.OpenConns != 1 {
		t.Errorf("CheckHealth = %+v, want connected on one connection", h)
	}
}

func TestWithTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: tempDSN(t)}, logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.GormDB.Exec("CREATE TABLE t (v INTEGER)").Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO t (v) VALUES (1)").Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction err = %v, want boom", err)
	}

	var n int64
	db.GormDB.Table("t").Count(&n)
	if n != 0 {
		t.Errorf("rows after rollback = %d, want 0", n)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"idle above open", func(c *Config) { c.MaxIdleConns = 10; c.MaxOpenConns = 2 }, true},
		{"bad lifetime", func(c *Config) { c.ConnMaxLifetime = "forever" }, true},
		{"bad slow threshold", func(c *Config) { c.SlowQueryThreshold = "x" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromDatabase(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), apperrors.ErrCodeNotFound},
		{"locked", errors.New("database is locked"), apperrors.ErrCodeDatabaseError},
		{"other", errors.New("no such table: x"), apperrors.ErrCodeDatabaseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDatabase(tt.err, "clip")
			if got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
	if FromDatabase(nil, "clip") != nil {
		t.Error("FromDatabase(nil) should be nil")
	}
}

func TestConfig_FileDir(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"file:./data/scribe.db?_foreign_keys=on", "data"},
		{"/var/lib/scribe/scribe.db", "/var/lib/scribe"},
		{"file::memory:?cache=shared", ""},
		{"file:scribe.db", "."},
	}
	for _, tt := range tests {
		cfg := Config{DSN: tt.dsn}
		if got := cfg.fileDir(); got != tt.want {
			t.Errorf("fileDir(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}
