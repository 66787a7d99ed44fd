package service

import (
	"sync/atomic"

	"github.com/Badsnus/qr-studio/internal/domain/entity"
	"github.com/Badsnus/qr-studio/internal/domain/utils/geometry"
)

// Snapshot is an immutable view of the store: the configuration, the logo
// geometry derived from it and the generation bookkeeping, all from the same
// logical event.
type Snapshot struct {
	Config   entity.Configuration
	Geometry geometry.Result
	// IssuedGeneration is the highest generation handed out to an ingestion.
	IssuedGeneration uint64
	// Version increases with every applied change.
	Version uint64
}

// HasLogo reports whether a decoded logo is current.
func (s Snapshot) HasLogo() bool {
	return s.Config.Logo != nil
}

// Store holds the single canonical configuration. Reads are safe from any
// goroutine; writes must come from one goroutine at a time (the session loop).
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore(initial entity.Configuration) *Store {
	s := &Store{}
	s.publish(Sanitize(initial), 0, 0)
	return s
}

// Current returns the latest applied snapshot.
func (s *Store) Current() Snapshot {
	return *s.current.Load()
}

// ApplyUpdate applies events as one atomic change.
func (s *Store) ApplyUpdate(events ...Event) Snapshot {
	cur := s.current.Load()
	return s.publish(ReduceAll(cur.Config, events...), cur.IssuedGeneration, cur.Version+1)
}

// IssueGeneration hands out a generation strictly greater than every
// generation issued before. Issuing supersedes any ingestion still in flight.
func (s *Store) IssueGeneration() (uint64, Snapshot) {
	cur := s.current.Load()
	gen := cur.IssuedGeneration + 1
	return gen, s.publish(cur.Config, gen, cur.Version)
}

// ApplyAsset promotes asset to the current logo if its generation is still
// the highest issued. Stale assets are dropped and ok is false.
func (s *Store) ApplyAsset(asset entity.LogoAsset) (snap Snapshot, ok bool) {
	cur := s.current.Load()
	if asset.Generation != cur.IssuedGeneration {
		return *cur, false
	}
	return s.publish(Reduce(cur.Config, LogoDecoded{Asset: asset}), cur.IssuedGeneration, cur.Version+1), true
}

// ClearAsset removes the current logo and supersedes in-flight ingestions.
func (s *Store) ClearAsset() Snapshot {
	cur := s.current.Load()
	return s.publish(Reduce(cur.Config, ClearLogo{}), cur.IssuedGeneration+1, cur.Version+1)
}

func (s *Store) publish(c entity.Configuration, issued, version uint64) Snapshot {
	// ContainerSize is kept positive by the reducer, so Resolve cannot fail here.
	g, _ := geometry.Resolve(float64(c.ContainerSize), c.RequestedLogoScale, c.AspectRatio())
	snap := &Snapshot{
		Config:           c,
		Geometry:         g,
		IssuedGeneration: issued,
		Version:          version,
	}
	s.current.Store(snap)
	return *snap
}
