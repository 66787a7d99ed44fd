package service

import (
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/Badsnus/qr-studio/internal/domain/common/errorz"
	"github.com/Badsnus/qr-studio/internal/domain/entity"
	"github.com/Badsnus/qr-studio/internal/domain/utils/validator"
	"github.com/Badsnus/qr-studio/pkg/logger"
	"github.com/Badsnus/qr-studio/pkg/logger/types"
)

// RenderRequest carries the rendering relevant fields of a snapshot.
type RenderRequest struct {
	Payload         string
	Size            int
	LogoImageData   []byte
	LogoWidth       float64
	LogoHeight      float64
	LogoOpacity     float64
	Style           entity.Style
	EyeRadius       int
	BackgroundColor string
	ForegroundColor string
}

// NewRenderRequest builds the request for snap.
func NewRenderRequest(snap Snapshot) RenderRequest {
	c := snap.Config
	req := RenderRequest{
		Payload:         c.Payload,
		Size:            c.ContainerSize,
		LogoOpacity:     c.LogoOpacity,
		Style:           c.Style,
		EyeRadius:       c.EyeRadius,
		BackgroundColor: c.BackgroundColor,
		ForegroundColor: c.ForegroundColor,
	}
	if c.Logo != nil {
		req.LogoImageData = c.Logo.Data
		req.LogoWidth = snap.Geometry.Width
		req.LogoHeight = snap.Geometry.Height
	}
	return req
}

// Renderer is the rendering collaborator.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (image.Image, error)
	// DownloadAsRaster serializes symbol and delivers it under fileName,
	// returning where it ended up.
	DownloadAsRaster(ctx context.Context, symbol image.Image, format, fileName string) (string, error)
}

// ExportJournal records export attempts.
type ExportJournal interface {
	Create(ctx context.Context, record *entity.ExportRecord) (*entity.ExportRecord, error)
}

type Exporter struct {
	renderer Renderer
	journal  ExportJournal
	format   string
	logger   *types.Logger
}

// NewExporter creates an exporter. journal may be nil.
func NewExporter(renderer Renderer, journal ExportJournal, format string, log *types.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	if format == "" {
		format = "png"
	}
	return &Exporter{
		renderer: renderer,
		journal:  journal,
		format:   format,
		logger:   log,
	}
}

// Export renders snap and delivers the artifact. Errors wrap errorz.ErrExportFailure.
func (e *Exporter) Export(ctx context.Context, sessionID string, snap Snapshot) (string, error) {
	fileName := validator.FileName(snap.Config.ExportFileName)

	path, err := e.export(ctx, snap, fileName)
	e.record(ctx, sessionID, snap, fileName, path, err)
	if err != nil {
		e.logger.Warnw("export failed", "file", fileName, "error", err)
		return "", fmt.Errorf("%w: %w", errorz.ErrExportFailure, err)
	}

	e.logger.Infow("export done", "file", fileName, "path", path)
	return path, nil
}

func (e *Exporter) export(ctx context.Context, snap Snapshot, fileName string) (string, error) {
	symbol, err := e.renderer.Render(ctx, NewRenderRequest(snap))
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return e.renderer.DownloadAsRaster(ctx, symbol, e.format, fileName)
}

func (e *Exporter) record(ctx context.Context, sessionID string, snap Snapshot, fileName, path string, exportErr error) {
	if e.journal == nil {
		return
	}
	rec := &entity.ExportRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		FileName:  fileName,
		Format:    e.format,
		Path:      path,
		Payload:   snap.Config.Payload,
		Size:      snap.Config.ContainerSize,
		Style:     string(snap.Config.Style),
		Colors:    []string{snap.Config.BackgroundColor, snap.Config.ForegroundColor},
		Status:    entity.ExportStatusDone,
	}
	if exportErr != nil {
		rec.Status = entity.ExportStatusFailed
		rec.Error = exportErr.Error()
	}
	if _, err := e.journal.Create(ctx, rec); err != nil {
		e.logger.Warnw("failed to record export", "file", fileName, "error", err)
	}
}
