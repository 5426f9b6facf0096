// Package lookup answers building and room questions by combining the building
// catalog with the scheduling data source.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"studyspaces/internal/availability"
	"studyspaces/internal/buildings"
	"studyspaces/internal/metrics"
	"studyspaces/internal/search"
)

var (
	// ErrUnknownBuilding is returned when a name, id or path matches no building.
	ErrUnknownBuilding = errors.New("unknown building")

	// ErrNoSource is returned by operations that need the data source when none is
	// configured.
	ErrNoSource = errors.New("data source not configured")
)

// Source is the scheduling data source.
type Source interface {
	ListBuildings(ctx context.Context) ([]string, error)
	GetRooms(ctx context.Context, sourceName, day, hhmm string) ([]availability.Room, error)
	GetAvailableRooms(ctx context.Context, sourceName, day, hhmm string) ([]availability.RoomUsage, error)
	GetRoomUsage(ctx context.Context, sourceName, room string) (*availability.RoomUsage, error)
}

// Query selects the room table of a building.
type Query struct {
	Day    string
	Time   string
	Filter availability.Filter
}

// BuildingRooms is a building's room table at a day and time.
type BuildingRooms struct {
	Building    buildings.Record    `json:"building"`
	Day         string              `json:"day"`
	Time        string              `json:"time"`
	SourceNames []string            `json:"sourceNames"`
	Rooms       []availability.Room `json:"rooms"`
	// Total counts rooms before filtering.
	Total int `json:"total"`
	// Failed lists source names whose fetch failed.
	Failed []string `json:"failed,omitempty"`
}

// RemoteBuilding is a data-source building name and the catalog entry it resolves to.
type RemoteBuilding struct {
	SourceName string            `json:"sourceName"`
	Canonical  string            `json:"canonical"`
	Record     *buildings.Record `json:"record,omitempty"`
}

// RoomDetails is one room's schedule plus its state at a day and time.
type RoomDetails struct {
	Building buildings.Record       `json:"building"`
	Usage    availability.RoomUsage `json:"usage"`
	Room     availability.Room      `json:"room"`
	Day      string                 `json:"day"`
	Time     string                 `json:"time"`
}

// Service implements lookups over a registry and an optional data source.
type Service struct {
	registry   *buildings.Registry
	reconciler *buildings.Reconciler
	ranker     *search.Ranker
	source     Source
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewService creates a lookup service. source may be nil for catalog-only use.
func NewService(registry *buildings.Registry, source Source, m *metrics.Metrics, logger zerolog.Logger, opts ...search.Option) *Service {
	return &Service{
		registry:   registry,
		reconciler: buildings.NewReconciler(registry),
		ranker:     search.NewRanker(registry, opts...),
		source:     source,
		metrics:    m,
		logger:     logger.With().Str("component", "lookup").Logger(),
	}
}

// Registry returns the catalog the service resolves against.
func (s *Service) Registry() *buildings.Registry {
	return s.registry
}

// Ranker returns the search ranker.
func (s *Service) Ranker() *search.Ranker {
	return s.ranker
}

// Resolve finds a building by id, legacy path, name, data-source name or search alias.
func (s *Service) Resolve(query string) (buildings.Record, error) {
	if rec, ok := s.registry.ByID(query); ok {
		return rec, nil
	}
	if rec, ok := s.registry.ByPath(query); ok {
		return rec, nil
	}
	if rec, ok := s.reconciler.Resolve(query); ok {
		return rec, nil
	}
	if rec, ok := s.registry.AliasFor(query); ok {
		return rec, nil
	}
	s.metrics.IncLookup("resolve", "not_found")
	return buildings.Record{}, fmt.Errorf("%q: %w", query, ErrUnknownBuilding)
}

// SourceNames returns the names to query the data source with for a building.
func (s *Service) SourceNames(rec buildings.Record) []string {
	return buildings.SourceNamesOf(rec)
}

// Search ranks the catalog against query.
func (s *Service) Search(query string, maxResults int) []search.Result {
	results := s.ranker.Search(query, maxResults)
	outcome := "ok"
	if len(results) == 0 {
		outcome = "empty"
	}
	s.metrics.IncLookup("search", outcome)
	return results
}

type fetchFunc func(ctx context.Context, sourceName, day, hhmm string) ([]availability.Room, error)

// Rooms fetches, merges, sorts and filters the rooms of a building. Buildings with
// several data-source names are fetched once per name in order; the call fails only
// when every fetch fails.
func (s *Service) Rooms(ctx context.Context, building string, q Query) (*BuildingRooms, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	return s.collect(ctx, "rooms", building, q, s.source.GetRooms)
}

// AvailableRooms lists only the rooms the data source reports free at the query time,
// built from their usage records.
func (s *Service) AvailableRooms(ctx context.Context, building string, q Query) (*BuildingRooms, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	return s.collect(ctx, "available", building, q, func(ctx context.Context, name, day, at string) ([]availability.Room, error) {
		usages, err := s.source.GetAvailableRooms(ctx, name, day, at)
		if err != nil {
			return nil, err
		}
		rooms := make([]availability.Room, 0, len(usages))
		for _, u := range usages {
			rooms = append(rooms, u.RoomAt(day, at))
		}
		return rooms, nil
	})
}

func (s *Service) collect(ctx context.Context, kind, building string, q Query, fetch fetchFunc) (*BuildingRooms, error) {
	rec, err := s.Resolve(building)
	if err != nil {
		return nil, err
	}
	day, err := availability.NormalizeDay(q.Day)
	if err != nil {
		s.metrics.IncLookup(kind, "bad_request")
		return nil, err
	}
	at := NormalizeClock(q.Time)

	names := s.SourceNames(rec)
	result := &BuildingRooms{
		Building:    rec,
		Day:         day,
		Time:        at,
		SourceNames: names,
	}

	batches := make([][]availability.Room, 0, len(names))
	var lastErr error
	for _, name := range names {
		rooms, err := fetch(ctx, name, day, at)
		if err != nil {
			s.logger.Warn().Err(err).Str("building", rec.ID).Str("source_name", name).Msg("room fetch failed")
			result.Failed = append(result.Failed, name)
			lastErr = err
			continue
		}
		batches = append(batches, rooms)
	}
	if len(batches) == 0 {
		s.metrics.IncLookup(kind, "error")
		return nil, fmt.Errorf("fetch rooms for %s: %w", rec.ID, lastErr)
	}

	merged := availability.MergeRooms(batches...)
	availability.SortRooms(merged)
	result.Total = len(merged)
	result.Rooms = availability.FilterRooms(merged, q.Filter)

	s.logger.Debug().
		Str("building", rec.ID).
		Str("day", day).
		Str("time", at).
		Int("rooms", result.Total).
		Int("shown", len(result.Rooms)).
		Msg(kind + " fetched")
	s.metrics.IncLookup(kind, "ok")
	return result, nil
}

// RoomDetails fetches one room's weekly schedule, trying each data-source name of
// the building in order.
func (s *Service) RoomDetails(ctx context.Context, building, room string, q Query) (*RoomDetails, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}

	rec, err := s.Resolve(building)
	if err != nil {
		return nil, err
	}
	day, err := availability.NormalizeDay(q.Day)
	if err != nil {
		return nil, err
	}
	at := NormalizeClock(q.Time)

	var lastErr error
	for _, name := range s.SourceNames(rec) {
		usage, err := s.source.GetRoomUsage(ctx, name, room)
		if err != nil {
			lastErr = err
			continue
		}
		s.metrics.IncLookup("room", "ok")
		return &RoomDetails{
			Building: rec,
			Usage:    *usage,
			Room:     usage.RoomAt(day, at),
			Day:      day,
			Time:     at,
		}, nil
	}
	s.metrics.IncLookup("room", "error")
	return nil, fmt.Errorf("room %s in %s: %w", room, rec.ID, lastErr)
}

// RemoteBuildings lists the data source's building names with the catalog entry
// each one reconciles to.
func (s *Service) RemoteBuildings(ctx context.Context) ([]RemoteBuilding, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}

	names, err := s.source.ListBuildings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}

	out := make([]RemoteBuilding, 0, len(names))
	for _, name := range names {
		rb := RemoteBuilding{SourceName: name, Canonical: s.reconciler.ToCanonicalName(name)}
		if rec, ok := s.reconciler.Canonicalize(name); ok {
			rb.Record = &rec
		}
		out = append(out, rb)
	}
	return out, nil
}

// DefaultWhen returns the day and time a query defaults to at now: weekends move to
// the nearest weekday, the time of day is kept.
func DefaultWhen(now time.Time) (string, string) {
	return availability.DayName(availability.AdjustWeekend(now)), now.Format("15:04")
}

// NormalizeClock renders t as zero-padded "HH:mm". Unparseable input becomes
// "00:00".
func NormalizeClock(t string) string {
	m := availability.ParseMinutes(t)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
