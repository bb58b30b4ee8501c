package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/events"
	"github.com/dmitrijs2005/hhblog/internal/logging"
)

// Watcher publishes events.StorageChanged whenever the store is committed
// to by a connection other than its own. It holds one dedicated connection
// because PRAGMA data_version is tracked per connection.
type Watcher struct {
	db       *sql.DB
	bus      *events.Bus
	interval time.Duration
	log      logging.Logger
}

func NewWatcher(db *sql.DB, bus *events.Bus, interval time.Duration, log logging.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{db: db, bus: bus, interval: interval, log: log}
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	conn, err := w.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	last, err := dataVersion(ctx, conn)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v, err := dataVersion(ctx, conn)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Warn(ctx, "storage watcher poll failed", "error", err)
				continue
			}
			if v != last {
				last = v
				w.log.Debug(ctx, "storage changed", "version", v)
				w.bus.Publish(events.StorageChanged{Version: v})
			}
		}
	}
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	err := conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v)
	return v, err
}
