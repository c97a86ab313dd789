package database

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/event"
	"gorm.io/gorm"

	"example.com/backstage/services/supplychain/internal/metrics"
)

const startTimeKey = "metrics:start_time"

// RegisterMetricsHooks registers GORM callbacks that time every create, query and update
func RegisterMetricsHooks(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("metrics:before_create", startTimer); err != nil {
		return errors.Wrap(err, "failed to register create hook")
	}
	if err := cb.Create().After("gorm:create").Register("metrics:after_create", observe("insert")); err != nil {
		return errors.Wrap(err, "failed to register create hook")
	}
	if err := cb.Query().Before("gorm:query").Register("metrics:before_query", startTimer); err != nil {
		return errors.Wrap(err, "failed to register query hook")
	}
	if err := cb.Query().After("gorm:query").Register("metrics:after_query", observe("select")); err != nil {
		return errors.Wrap(err, "failed to register query hook")
	}
	if err := cb.Update().Before("gorm:update").Register("metrics:before_update", startTimer); err != nil {
		return errors.Wrap(err, "failed to register update hook")
	}
	if err := cb.Update().After("gorm:update").Register("metrics:after_update", observe("update")); err != nil {
		return errors.Wrap(err, "failed to register update hook")
	}
	return nil
}

func startTimer(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
}

func observe(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		var duration time.Duration
		if start, ok := db.InstanceGet(startTimeKey); ok {
			duration = time.Since(start.(time.Time))
		}
		ok := db.Error == nil || errors.Is(db.Error, gorm.ErrRecordNotFound)
		metrics.ObserveStoreOperation("postgres", operation, ok, duration)
	}
}

// mongoMonitor records store metrics for every MongoDB command
type mongoMonitor struct {
	mu       sync.Mutex
	commands map[int64]string
}

// NewMongoMonitor returns a command monitor to pass to the client options
func NewMongoMonitor() *event.CommandMonitor {
	m := &mongoMonitor{commands: make(map[int64]string)}
	return &event.CommandMonitor{
		Started:   m.started,
		Succeeded: m.succeeded,
		Failed:    m.failed,
	}
}

func (m *mongoMonitor) started(_ context.Context, e *event.CommandStartedEvent) {
	m.mu.Lock()
	m.commands[e.RequestID] = e.CommandName
	m.mu.Unlock()
}

func (m *mongoMonitor) finish(requestID int64, fallback string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.commands[requestID]
	if !ok {
		return fallback
	}
	delete(m.commands, requestID)
	return name
}

func (m *mongoMonitor) succeeded(_ context.Context, e *event.CommandSucceededEvent) {
	metrics.ObserveStoreOperation("mongodb", m.finish(e.RequestID, e.CommandName), true, e.Duration)
}

func (m *mongoMonitor) failed(_ context.Context, e *event.CommandFailedEvent) {
	metrics.ObserveStoreOperation("mongodb", m.finish(e.RequestID, e.CommandName), false, e.Duration)
}
