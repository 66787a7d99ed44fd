package renderer

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/Badsnus/qr-studio/internal/domain/service"
	"github.com/Badsnus/qr-studio/internal/domain/utils/hexcolor"
	"github.com/Badsnus/qr-studio/pkg/imageutil"
	"github.com/Badsnus/qr-studio/pkg/logger"
	"github.com/Badsnus/qr-studio/pkg/logger/types"
	qr "github.com/Badsnus/qr-studio/pkg/qrcode"
)

// Renderer draws QR symbols and saves them to the local file system.
type Renderer struct {
	cfg       Config
	outputDir string
	logger    *types.Logger
}

func New(cfg *Config, log *types.Logger) *Renderer {
	if cfg == nil {
		cfg = Default
	}
	if log == nil {
		log = logger.Nop()
	}

	outputDir := cfg.OutputDir
	if !filepath.IsAbs(outputDir) {
		wd, _ := os.Getwd()
		outputDir = filepath.Join(wd, outputDir)
	}

	return &Renderer{
		cfg:       *cfg,
		outputDir: outputDir,
		logger:    log,
	}
}

// OutputDir is the absolute directory exports are written to.
func (r *Renderer) OutputDir() string {
	return r.outputDir
}

func (r *Renderer) Render(ctx context.Context, req service.RenderRequest) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bg, ok := hexcolor.RGBA(req.BackgroundColor)
	if !ok {
		return nil, fmt.Errorf("invalid background color %q", req.BackgroundColor)
	}
	fg, ok := hexcolor.RGBA(req.ForegroundColor)
	if !ok {
		return nil, fmt.Errorf("invalid foreground color %q", req.ForegroundColor)
	}

	opts := qr.Options{
		Content:       req.Payload,
		Size:          req.Size,
		Style:         qr.Style(req.Style),
		EyeRadius:     float64(req.EyeRadius),
		Background:    bg,
		Foreground:    fg,
		LogoOpacity:   req.LogoOpacity,
		RecoveryLevel: r.cfg.RecoveryLevel,
		QuietZone:     r.cfg.QuietZone,
	}
	if len(req.LogoImageData) > 0 {
		logo, err := imageutil.Decode(req.LogoImageData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode logo: %w", err)
		}
		opts.Logo = logo
		opts.LogoWidth = req.LogoWidth
		opts.LogoHeight = req.LogoHeight
	}

	return qr.Render(opts)
}

// DownloadAsRaster writes symbol to <output dir>/<fileName>.<ext> and returns
// the file path. fileName must already be sanitized.
func (r *Renderer) DownloadAsRaster(ctx context.Context, symbol image.Image, format, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, ok := qr.ParseFormat(format)
	if !ok {
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	data, err := qr.EncodeBytes(symbol, f)
	if err != nil {
		return "", err
	}

	if err = r.ensureOutputDir(); err != nil {
		return "", err
	}
	filePath := filepath.Join(r.outputDir, fileName+"."+f.Extension())
	if err = os.WriteFile(filePath, data, 0644); err != nil {
		return "", err
	}

	r.logger.Debugf("Saved %s (%d bytes)", filePath, len(data))
	return filePath, nil
}

func (r *Renderer) ensureOutputDir() error {
	if _, err := os.Stat(r.outputDir); os.IsNotExist(err) {
		err = os.MkdirAll(r.outputDir, os.ModePerm)
		if err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}
	}
	return nil
}
