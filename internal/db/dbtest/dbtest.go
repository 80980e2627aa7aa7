// Package dbtest opens throwaway sqlite databases with the production schema.
package dbtest

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"contentdesk/internal/db"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Clock hands out strictly increasing timestamps, one second apart.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// New returns a migrated database stored under t.TempDir().
func New(t *testing.T) *gorm.DB {
	t.Helper()
	return NewWithClock(t, NewClock())
}

func NewWithClock(t *testing.T, clock *Clock) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: clock.Now,
		Logger:  db.NewLogger(zerolog.Nop()),
	})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("db migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}
