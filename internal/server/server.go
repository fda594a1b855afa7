package server

import (
	"sync"
	"time"

	"pricewatch/internal/cache"
	"pricewatch/internal/database"
	"pricewatch/internal/tracker"
)

type Server struct {
	DB        database.Database
	Tracker   tracker.Tracker
	Cache     *cache.Cache // nil when the cache is disabled
	Runs      *RunLog
	StartTime time.Time
	Logger    logger
}

// RunLog keeps the stats of the most recent monitoring pass for the status
// endpoint. Safe for concurrent use.
type RunLog struct {
	mu   sync.Mutex
	last *tracker.Stats
}

func (rl *RunLog) Record(s tracker.Stats) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.last = &s
}

func (rl *RunLog) Last() *tracker.Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.last
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}
