package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	boltrepo "github.com/taskvault/backend/repository/bolt"
)

// Monitor periodically probes the configured dependencies and caches
// the result for the health endpoint. Probes run on a cron schedule;
// any dependency left nil is simply not checked.
type Monitor struct {
	pg    *pgxpool.Pool
	redis *redislib.Client
	bolt  *boltrepo.TaskRepository

	status Status
	mu     sync.RWMutex
	cron   *cron.Cron
	logger *zap.Logger
}

func New(pg *pgxpool.Pool, redis *redislib.Client, bolt *boltrepo.TaskRepository, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{
		pg:     pg,
		redis:  redis,
		bolt:   bolt,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = m.cron.AddFunc(schedule, m.refresh)

	return m
}

// Start performs an initial probe and launches the scheduler.
func (m *Monitor) Start() {
	m.refresh()
	m.cron.Start()
}

// Stop halts the scheduler, waiting for any in-flight probe.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// Healthy reports whether every configured dependency passed its last probe.
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pg != nil && !m.status.Postgres {
		return false
	}
	if m.redis != nil && !m.status.Redis {
		return false
	}
	if m.bolt != nil && !m.status.Bolt {
		return false
	}
	return true
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) refresh() {
	status := Status{
		Postgres:  m.checkPostgres(),
		Redis:     m.checkRedis(),
		Bolt:      m.checkBolt(),
		LastCheck: time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkPostgres() bool {
	if m.pg == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.pg.Ping(ctx) == nil
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkBolt() bool {
	if m.bolt == nil {
		return false
	}
	if err := m.bolt.Ping(); err != nil {
		m.logger.Warn("bolt store check failed", zap.Error(err))
		return false
	}
	return true
}
