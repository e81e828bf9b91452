// Package jobs runs the background maintenance schedule.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"studydash/internal/store"
)

// SessionCleanup prunes expired sessions on a fixed schedule so the
// sessions table does not accumulate stale token rows.
type SessionCleanup struct {
	cron  *cron.Cron
	store *store.Store
}

func NewSessionCleanup(st *store.Store) *SessionCleanup {
	return &SessionCleanup{
		cron:  cron.New(),
		store: st,
	}
}

// Start registers the hourly prune and launches the scheduler. One
// prune also runs immediately so a restart does not wait an hour.
func (c *SessionCleanup) Start() error {
	if _, err := c.cron.AddFunc("@hourly", c.run); err != nil {
		return err
	}
	go c.run()
	c.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running prune to finish.
func (c *SessionCleanup) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *SessionCleanup) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := c.store.Sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Printf("[ERROR] session cleanup: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[INFO] session cleanup: removed %d expired sessions", deleted)
	}
}
