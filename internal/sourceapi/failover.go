package sourceapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"studyspaces/internal/availability"
)

// DefaultRecheckInterval is how long a failed primary is skipped before it is tried
// again.
const DefaultRecheckInterval = time.Minute

// Backend is the set of data-source calls a Failover forwards.
type Backend interface {
	ListBuildings(ctx context.Context) ([]string, error)
	GetRooms(ctx context.Context, sourceName, day, hhmm string) ([]availability.Room, error)
	GetAvailableRooms(ctx context.Context, sourceName, day, hhmm string) ([]availability.RoomUsage, error)
	GetRoomUsage(ctx context.Context, sourceName, room string) (*availability.RoomUsage, error)
}

// Failover sends calls to a primary data source and switches to a fallback mirror when
// the primary fails. While the primary is marked down it is retried once per recheck
// interval.
type Failover struct {
	primary  Backend
	fallback Backend
	logger   zerolog.Logger

	recheck   time.Duration
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

// NewFailover wraps primary with fallback.
func NewFailover(primary, fallback Backend, logger zerolog.Logger) *Failover {
	return &Failover{
		primary:  primary,
		fallback: fallback,
		recheck:  DefaultRecheckInterval,
		logger:   logger.With().Str("component", "source_failover").Logger(),
	}
}

func (f *Failover) ListBuildings(ctx context.Context) ([]string, error) {
	return call(f, ctx, "list_buildings", func(b Backend) ([]string, error) {
		return b.ListBuildings(ctx)
	})
}

func (f *Failover) GetRooms(ctx context.Context, sourceName, day, hhmm string) ([]availability.Room, error) {
	return call(f, ctx, "building_rooms", func(b Backend) ([]availability.Room, error) {
		return b.GetRooms(ctx, sourceName, day, hhmm)
	})
}

func (f *Failover) GetAvailableRooms(ctx context.Context, sourceName, day, hhmm string) ([]availability.RoomUsage, error) {
	return call(f, ctx, "available_rooms", func(b Backend) ([]availability.RoomUsage, error) {
		return b.GetAvailableRooms(ctx, sourceName, day, hhmm)
	})
}

func (f *Failover) GetRoomUsage(ctx context.Context, sourceName, room string) (*availability.RoomUsage, error) {
	return call(f, ctx, "room_usage", func(b Backend) (*availability.RoomUsage, error) {
		return b.GetRoomUsage(ctx, sourceName, room)
	})
}

func call[T any](f *Failover, ctx context.Context, op string, fn func(Backend) (T, error)) (T, error) {
	if f.usePrimary() {
		res, err := fn(f.primary)
		if !shouldFailOver(ctx, err) {
			if ctx.Err() == nil && f.isDown.CompareAndSwap(true, false) {
				f.logger.Info().Msg("primary data source recovered")
			}
			return res, err
		}
		if !f.isDown.Swap(true) {
			f.logger.Warn().Err(err).Str("op", op).Msg("primary data source failed, using fallback")
		}
		f.markChecked()
	}
	return fn(f.fallback)
}

func (f *Failover) usePrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) < f.recheck {
		return false
	}
	f.lastCheck = time.Now()
	return true
}

func (f *Failover) markChecked() {
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
}

// shouldFailOver reports whether err means the primary is unusable. A missing room or
// a 4xx answer still comes from a working source.
func shouldFailOver(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil || errors.Is(err, ErrRoomNotFound) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= http.StatusInternalServerError
	}
	return true
}
