package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Badsnus/qr-studio/internal/domain/common/errorz"
	"github.com/Badsnus/qr-studio/internal/domain/entity"
	"github.com/Badsnus/qr-studio/pkg/logger"
	"github.com/Badsnus/qr-studio/pkg/logger/types"
)

type StatusKind string

const (
	StatusIngestApplied    StatusKind = "ingest_applied"
	StatusIngestFailed     StatusKind = "ingest_failed"
	StatusIngestSuperseded StatusKind = "ingest_superseded"
	StatusExportDone       StatusKind = "export_done"
	StatusExportFailed     StatusKind = "export_failed"
)

// Status reports the outcome of an asynchronous operation to the view layer.
type Status struct {
	Kind       StatusKind
	Generation uint64
	Path       string
	Err        error
	Snapshot   Snapshot
}

// StatusHook receives statuses. It is called from the session goroutines and
// must not block.
type StatusHook func(Status)

type SessionOptions struct {
	Initial  entity.Configuration
	Ingestor *Ingestor
	Exporter *Exporter
	Logger   *types.Logger
	OnStatus StatusHook
}

// Session owns one configuration and serializes every change to it through a
// single event loop. Logo decodes and exports run on their own goroutines and
// report back through the loop.
type Session struct {
	id       string
	store    *Store
	ingestor *Ingestor
	exporter *Exporter
	logger   *types.Logger
	onStatus StatusHook

	commands    chan func(ctx context.Context)
	completions chan IngestResult

	startOnce sync.Once
	closed    chan struct{}
	inflight  sync.WaitGroup
}

func NewSession(opts SessionOptions) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	onStatus := opts.OnStatus
	if onStatus == nil {
		onStatus = func(Status) {}
	}
	if opts.Initial.ContainerSize == 0 {
		opts.Initial = entity.DefaultConfiguration(0)
	}
	return &Session{
		id:          uuid.New().String(),
		store:       NewStore(opts.Initial),
		ingestor:    opts.Ingestor,
		exporter:    opts.Exporter,
		logger:      log,
		onStatus:    onStatus,
		commands:    make(chan func(ctx context.Context)),
		completions: make(chan IngestResult),
		closed:      make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// Current returns the latest applied snapshot without waiting for the loop.
func (s *Session) Current() Snapshot {
	return s.store.Current()
}

// Run processes events until ctx is done. In-flight decodes and exports are
// cancelled and waited for before Run returns.
func (s *Session) Run(ctx context.Context) error {
	err := errors.New("session already started")
	s.startOnce.Do(func() {
		err = s.loop(ctx)
	})
	return err
}

func (s *Session) loop(ctx context.Context) error {
	s.logger.Infow("session started", "session", s.id)
	defer func() {
		close(s.closed)
		s.inflight.Wait()
		s.logger.Infow("session closed", "session", s.id)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.commands:
			cmd(ctx)
		case res := <-s.completions:
			s.complete(res)
		}
	}
}

// do runs fn on the loop goroutine and waits for it.
func (s *Session) do(ctx context.Context, fn func(loopCtx context.Context)) error {
	done := make(chan struct{})
	cmd := func(loopCtx context.Context) {
		fn(loopCtx)
		close(done)
	}

	select {
	case s.commands <- cmd:
	case <-s.closed:
		return errorz.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// the loop runs cmd right after receiving it
	<-done
	return nil
}

// Update applies events as one atomic change and returns the new snapshot.
func (s *Session) Update(ctx context.Context, events ...Event) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func(context.Context) {
		snap = s.store.ApplyUpdate(events...)
	})
	return snap, err
}

// IngestLogo starts ingesting src and returns its generation. The decoded
// logo is applied later, and only if no newer ingestion was started in the
// meantime. An empty source removes the logo.
func (s *Session) IngestLogo(ctx context.Context, src Source) (uint64, error) {
	if src.Empty() {
		snap, err := s.ClearLogo(ctx)
		return snap.IssuedGeneration, err
	}
	if s.ingestor == nil {
		return 0, errors.New("session has no ingestor")
	}

	var gen uint64
	err := s.do(ctx, func(loopCtx context.Context) {
		gen, _ = s.store.IssueGeneration()
		s.logger.Debugw("logo ingest started", "generation", gen, "kind", src.Kind, "name", src.Name)

		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			res := s.ingestor.Load(loopCtx, gen, src)
			select {
			case s.completions <- res:
			case <-s.closed:
			}
		}()
	})
	return gen, err
}

// ClearLogo removes the current logo and discards in-flight ingestions.
func (s *Session) ClearLogo(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func(context.Context) {
		snap = s.store.ClearAsset()
	})
	return snap, err
}

func (s *Session) complete(res IngestResult) {
	if res.Err != nil {
		cur := s.store.Current()
		kind := StatusIngestFailed
		if res.Generation != cur.IssuedGeneration {
			kind = StatusIngestSuperseded
		}
		s.onStatus(Status{Kind: kind, Generation: res.Generation, Err: res.Err, Snapshot: cur})
		return
	}

	snap, ok := s.store.ApplyAsset(res.Asset)
	if !ok {
		s.logger.Debugw("stale logo discarded", "generation", res.Generation, "issued", snap.IssuedGeneration)
		s.onStatus(Status{Kind: StatusIngestSuperseded, Generation: res.Generation, Snapshot: snap})
		return
	}
	s.onStatus(Status{Kind: StatusIngestApplied, Generation: res.Generation, Snapshot: snap})
}

// ExportCurrent snapshots the configuration as of all previously applied
// events and exports it in the background. The outcome is reported through
// the status hook; the returned snapshot is the one being exported.
func (s *Session) ExportCurrent(ctx context.Context) (Snapshot, error) {
	if s.exporter == nil {
		return Snapshot{}, errors.New("session has no exporter")
	}

	var snap Snapshot
	err := s.do(ctx, func(loopCtx context.Context) {
		snap = s.store.Current()

		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			path, err := s.exporter.Export(loopCtx, s.id, snap)
			if err != nil {
				s.onStatus(Status{Kind: StatusExportFailed, Err: err, Snapshot: snap})
				return
			}
			s.onStatus(Status{Kind: StatusExportDone, Path: path, Snapshot: snap})
		}()
	})
	return snap, err
}
