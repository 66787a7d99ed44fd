package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"github.com/Badsnus/qr-studio/internal/adapters/config"
	"github.com/Badsnus/qr-studio/internal/adapters/database/postgres"
	"github.com/Badsnus/qr-studio/internal/adapters/fetcher"
	"github.com/Badsnus/qr-studio/internal/adapters/renderer"
	"github.com/Badsnus/qr-studio/internal/domain/entity"
	"github.com/Badsnus/qr-studio/internal/domain/service"
	"github.com/Badsnus/qr-studio/internal/domain/utils/hexcolor"
	"github.com/Badsnus/qr-studio/pkg/logger"
	"github.com/Badsnus/qr-studio/pkg/logger/types"
	"github.com/Badsnus/qr-studio/pkg/logocache"
)

type Studio struct {
	Session  *service.Session
	Renderer *renderer.Renderer
	Logger   *types.Logger

	history  exportHistory
	statuses chan service.Status
}

// exportHistory reads back what the export journal recorded.
type exportHistory interface {
	GetBySession(ctx context.Context, sessionID string, limit int) ([]entity.ExportRecord, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

func New(cfg *config.Config) (*Studio, error) {
	studioLogger, err := logger.Named("studio")
	if err != nil {
		return nil, err
	}
	named := func(name string) *types.Logger {
		l, errNamed := logger.Named(name)
		if errNamed != nil {
			return studioLogger
		}
		return l
	}

	var cache logocache.Cache = logocache.NewMemoryCache(
		viper.GetDuration("service.redis.ttl"),
		viper.GetInt("fetcher.cache-size"),
	)
	if cfg.Redis != nil {
		cache = cfg.Redis.Logos
	}

	var (
		journal service.ExportJournal
		history exportHistory
	)
	if cfg.Database != nil {
		exports := postgres.NewExportStorage(cfg.Database)
		journal, history = exports, exports
	}

	logoFetcher := fetcher.New(fetcher.Options{
		Timeout:      viper.GetDuration("fetcher.timeout"),
		MaxBytes:     viper.GetInt64("fetcher.max-bytes"),
		AllowPrivate: viper.GetBool("fetcher.allow-private"),
		Cache:        cache,
	}, named("fetcher"))

	r := renderer.New(&renderer.Config{
		OutputDir:     viper.GetString("studio.output-dir"),
		QuietZone:     viper.GetInt("studio.quiet-zone"),
		RecoveryLevel: viper.GetInt("studio.recovery-level"),
	}, named("renderer"))

	s := &Studio{
		Renderer: r,
		Logger:   studioLogger,
		history:  history,
		statuses: make(chan service.Status, 16),
	}

	s.Session = service.NewSession(service.SessionOptions{
		Initial: entity.DefaultConfiguration(viper.GetInt("studio.container-size")),
		Ingestor: service.NewIngestor(logoFetcher, named("ingest"), service.IngestOptions{
			Timeout:  viper.GetDuration("fetcher.timeout"),
			MaxBytes: viper.GetInt("fetcher.max-bytes"),
		}),
		Exporter: service.NewExporter(r, journal, viper.GetString("studio.export-format"), named("export")),
		Logger:   named("session"),
		OnStatus: s.onStatus,
	})

	return s, nil
}

func (s *Studio) onStatus(st service.Status) {
	switch st.Kind {
	case service.StatusIngestFailed, service.StatusExportFailed:
		s.Logger.Warnf("%s (generation %d): %v", st.Kind, st.Generation, st.Err)
	default:
		s.Logger.Debugf("%s (generation %d)", st.Kind, st.Generation)
	}

	select {
	case s.statuses <- st:
	default:
		s.Logger.Warnf("Status %s dropped", st.Kind)
	}
}

// Start applies the configured customization, exports one QR code and
// returns once it is written.
func (s *Studio) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- s.Session.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	s.Logger.Infof("Studio starting, exports go to %s", s.Renderer.OutputDir())

	snap, err := s.Session.Update(ctx, configuredEvents()...)
	if err != nil {
		return err
	}
	s.Logger.Infof("Configuration applied: payload=%q size=%d style=%s", snap.Config.Payload, snap.Config.ContainerSize, snap.Config.Style)

	if err = s.applyLogo(ctx, viper.GetString("studio.logo")); err != nil {
		return err
	}

	if _, err = s.Session.ExportCurrent(ctx); err != nil {
		return err
	}
	st, err := s.await(ctx, service.StatusExportDone, service.StatusExportFailed)
	if err != nil {
		return err
	}
	if st.Kind == service.StatusExportFailed {
		return st.Err
	}

	s.Logger.Infof("QR code saved to %s", st.Path)
	s.logHistory(ctx)
	return nil
}

func (s *Studio) logHistory(ctx context.Context) {
	if s.history == nil {
		return
	}

	records, err := s.history.GetBySession(ctx, s.Session.ID(), 5)
	if err != nil {
		s.Logger.Warnf("Failed to read export history: %v", err)
		return
	}
	for _, r := range records {
		s.Logger.Debugf("Export %s: %s.%s %s", r.ID, r.FileName, r.Format, r.Status)
	}

	failed, err := s.history.CountByStatus(ctx, entity.ExportStatusFailed)
	if err != nil {
		s.Logger.Warnf("Failed to count failed exports: %v", err)
		return
	}
	s.Logger.Infof("Session exports: %d, failed exports overall: %d", len(records), failed)
}

// applyLogo ingests the configured logo and waits for the outcome. A logo
// that cannot be loaded is logged and the export continues without it.
func (s *Studio) applyLogo(ctx context.Context, logo string) error {
	src, err := logoSource(logo)
	if err != nil {
		return err
	}
	if src.Empty() {
		return nil
	}

	gen, err := s.Session.IngestLogo(ctx, src)
	if err != nil {
		return err
	}
	for {
		st, err := s.await(ctx, service.StatusIngestApplied, service.StatusIngestFailed, service.StatusIngestSuperseded)
		if err != nil {
			return err
		}
		if st.Generation != gen {
			continue
		}
		if st.Kind == service.StatusIngestApplied {
			geo := st.Snapshot.Geometry
			s.Logger.Infof("Logo applied: %.1fx%.1f px (%s, %.0f%% of max scale)", geo.Width, geo.Height, geo.Shape, geo.EffectiveScalePercent)
		}
		return nil
	}
}

func (s *Studio) await(ctx context.Context, kinds ...service.StatusKind) (service.Status, error) {
	for {
		select {
		case <-ctx.Done():
			return service.Status{}, ctx.Err()
		case st := <-s.statuses:
			for _, k := range kinds {
				if st.Kind == k {
					return st, nil
				}
			}
		}
	}
}

// logoSource treats an existing local file as an upload and anything else as
// a URL.
func logoSource(logo string) (service.Source, error) {
	logo = strings.TrimSpace(logo)
	if logo == "" || strings.Contains(logo, "://") || strings.HasPrefix(logo, "data:") {
		return service.URLSource(logo), nil
	}

	data, err := os.ReadFile(logo)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return service.Source{}, fmt.Errorf("logo %q not found", logo)
		}
		return service.Source{}, err
	}
	return service.UploadSource(data, filepath.Base(logo)), nil
}

func configuredEvents() []service.Event {
	var events []service.Event
	if viper.IsSet("studio.payload") {
		events = append(events, service.SetPayload{Payload: viper.GetString("studio.payload")})
	}
	if viper.IsSet("studio.style") {
		events = append(events, service.SetStyle{Style: viper.GetString("studio.style")})
	}
	if viper.IsSet("studio.eye-radius") {
		events = append(events, service.SetEyeRadius{Radius: viper.GetInt("studio.eye-radius")})
	}
	if viper.IsSet("studio.logo-scale") {
		events = append(events, service.SetLogoScale{Percent: viper.GetFloat64("studio.logo-scale")})
	}
	if viper.IsSet("studio.logo-opacity") {
		events = append(events, service.SetLogoOpacity{Opacity: viper.GetFloat64("studio.logo-opacity")})
	}
	if viper.IsSet("studio.background") {
		events = append(events, service.SetBackgroundColor{Color: colorSetting("studio.background")})
	}
	if viper.IsSet("studio.foreground") {
		events = append(events, service.SetForegroundColor{Color: colorSetting("studio.foreground")})
	}
	if viper.IsSet("studio.file-name") {
		events = append(events, service.SetExportFileName{FileName: viper.GetString("studio.file-name")})
	}
	return events
}

// colorSetting reads a color key that holds either a hex string or a picker
// object such as {hex: "#ffffff"}.
func colorSetting(key string) hexcolor.Input {
	raw, err := json.Marshal(viper.Get(key))
	if err != nil {
		return hexcolor.None()
	}
	return hexcolor.FromJSON(raw)
}
