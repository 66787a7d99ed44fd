package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Badsnus/qr-studio/internal/domain/common/errorz"
	"github.com/Badsnus/qr-studio/internal/domain/entity"
	"github.com/Badsnus/qr-studio/pkg/imageutil"
	"github.com/Badsnus/qr-studio/pkg/logger"
	"github.com/Badsnus/qr-studio/pkg/logger/types"
)

// LogoFetcher loads logo bytes from a remote URL.
type LogoFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Source is a logo supplied by the user: either a URL or uploaded bytes.
type Source struct {
	Kind entity.SourceKind
	URL  string
	Data []byte
	// Name is the uploaded file name, used for logging only.
	Name string
}

func URLSource(rawURL string) Source {
	return Source{Kind: entity.SourceURL, URL: strings.TrimSpace(rawURL)}
}

func UploadSource(data []byte, name string) Source {
	return Source{Kind: entity.SourceUpload, Data: data, Name: name}
}

// Empty reports whether the source carries no logo at all.
func (s Source) Empty() bool {
	if s.Kind == entity.SourceUpload {
		return len(s.Data) == 0
	}
	return s.URL == ""
}

// IngestResult is the outcome of one ingestion, tagged with its generation.
type IngestResult struct {
	Generation uint64
	Asset      entity.LogoAsset
	Err        error
}

type IngestOptions struct {
	// Timeout bounds a single ingestion (default: 15s).
	Timeout time.Duration
	// MaxBytes limits the size of a logo (default: 10 MiB).
	MaxBytes int
}

// Ingestor resolves logo sources into decoded assets.
type Ingestor struct {
	fetcher  LogoFetcher
	logger   *types.Logger
	timeout  time.Duration
	maxBytes int
}

func NewIngestor(fetcher LogoFetcher, log *types.Logger, opts IngestOptions) *Ingestor {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}
	return &Ingestor{
		fetcher:  fetcher,
		logger:   log,
		timeout:  opts.Timeout,
		maxBytes: opts.MaxBytes,
	}
}

// Load resolves src and decodes its natural dimensions. It blocks until the
// image is decoded, ctx is done or the ingest timeout passes. Every error
// wraps errorz.ErrIngestFailure.
func (i *Ingestor) Load(ctx context.Context, gen uint64, src Source) IngestResult {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	asset, err := i.load(ctx, src)
	if err != nil {
		i.logger.Warnw("logo ingest failed", "generation", gen, "kind", src.Kind, "error", err)
		return IngestResult{Generation: gen, Err: fmt.Errorf("%w: %w", errorz.ErrIngestFailure, err)}
	}
	asset.Generation = gen
	i.logger.Debugw("logo decoded",
		"generation", gen,
		"kind", src.Kind,
		"width", asset.NaturalWidth,
		"height", asset.NaturalHeight,
	)
	return IngestResult{Generation: gen, Asset: asset}
}

func (i *Ingestor) load(ctx context.Context, src Source) (entity.LogoAsset, error) {
	if src.Empty() {
		return entity.LogoAsset{}, errorz.ErrEmptySource
	}

	var raw string
	switch src.Kind {
	case entity.SourceUpload:
		if len(src.Data) > i.maxBytes {
			return entity.LogoAsset{}, fmt.Errorf("%w: %d bytes", errorz.ErrLogoTooLarge, len(src.Data))
		}
		// uploads take the same path as pasted data URLs
		raw = imageutil.ToDataURL(src.Data)
	case entity.SourceURL:
		raw = src.URL
	default:
		return entity.LogoAsset{}, fmt.Errorf("unknown source kind %q", src.Kind)
	}

	data, err := i.resolve(ctx, raw)
	if err != nil {
		return entity.LogoAsset{}, err
	}
	if len(data) > i.maxBytes {
		return entity.LogoAsset{}, fmt.Errorf("%w: %d bytes", errorz.ErrLogoTooLarge, len(data))
	}

	dims, err := imageutil.DecodeDimensions(data)
	if err != nil {
		return entity.LogoAsset{}, fmt.Errorf("%w: %v", errorz.ErrUnsupportedFormat, err)
	}
	if err = ctx.Err(); err != nil {
		return entity.LogoAsset{}, err
	}

	return entity.LogoAsset{
		SourceKind:    src.Kind,
		RawSource:     raw,
		Data:          data,
		MimeType:      imageutil.DetectMIME(data),
		NaturalWidth:  dims.Width,
		NaturalHeight: dims.Height,
		AspectRatio:   dims.AspectRatio(),
	}, nil
}

func (i *Ingestor) resolve(ctx context.Context, raw string) ([]byte, error) {
	if imageutil.IsDataURL(raw) {
		data, _, err := imageutil.ParseDataURL(raw)
		return data, err
	}
	if i.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured for %q", raw)
	}
	return i.fetcher.Fetch(ctx, raw)
}
