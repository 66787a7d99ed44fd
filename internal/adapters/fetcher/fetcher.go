package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/netarmor/securenet"

	"github.com/Badsnus/qr-studio/internal/domain/common/errorz"
	"github.com/Badsnus/qr-studio/pkg/imageutil"
	"github.com/Badsnus/qr-studio/pkg/logger"
	"github.com/Badsnus/qr-studio/pkg/logger/types"
	"github.com/Badsnus/qr-studio/pkg/logocache"
)

const maxRedirects = 5

type Options struct {
	Timeout  time.Duration
	MaxBytes int64
	// AllowPrivate permits loopback and private network hosts.
	AllowPrivate bool
	Cache        logocache.Cache
}

// Fetcher downloads logo images over http(s). Unless private hosts are
// allowed, the URL, every redirect hop and every dialed address are checked
// against private, loopback and link-local networks.
type Fetcher struct {
	client       httpkit.ClientInterface
	httpClient   *http.Client
	cache        logocache.Cache
	maxBytes     int64
	allowPrivate bool
	isSafeURL    func(rawURL string) (bool, error)
	logger       *types.Logger
}

func New(opts Options, log *types.Logger) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = httpkit.DefaultHTTPTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}

	f := &Fetcher{
		cache:        opts.Cache,
		maxBytes:     opts.MaxBytes,
		allowPrivate: opts.AllowPrivate,
		isSafeURL:    securenet.IsSafeURL,
		logger:       log,
	}
	f.httpClient = f.newHTTPClient(opts.Timeout)

	// URLs are validated by checkURL, which reports ErrUnsafeURL.
	f.client = httpkit.New(opts.Timeout,
		httpkit.WithHTTPClient(f.httpClient),
		httpkit.WithSkipNetworkValidation(true),
		httpkit.WithMaxRetries(1),
		httpkit.WithInitialInterval(200*time.Millisecond),
		httpkit.WithMaxInterval(time.Second),
	)
	return f
}

func (f *Fetcher) newHTTPClient(timeout time.Duration) *http.Client {
	if f.allowPrivate {
		return &http.Client{Timeout: timeout}
	}

	client := securenet.NewSafeHTTPClient(timeout)
	if tr, ok := client.Transport.(*http.Transport); ok {
		tr.DialContext = guardDial(tr.DialContext)
	}
	client.CheckRedirect = f.checkRedirect
	return client
}

// Fetch returns the image at rawURL, serving repeated URLs from the cache.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.cache != nil {
		if data, ok := f.cache.Get(ctx, rawURL); ok {
			f.logger.Debugw("logo served from cache", "url", rawURL)
			return data, nil
		}
	}

	if err := f.checkURL(rawURL); err != nil {
		f.logger.Warnw("blocked logo url", "url", rawURL, "error", err)
		return nil, err
	}

	data, err := f.client.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", errorz.ErrLogoTooLarge, f.maxBytes)
	}
	if mime := imageutil.DetectMIME(data); !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: %s", errorz.ErrUnsupportedFormat, mime)
	}

	if f.cache != nil {
		f.cache.Set(ctx, rawURL, data)
	}
	return data, nil
}

// checkURL rejects non-http schemes and, unless private hosts are allowed,
// hosts resolving to restricted networks.
func (f *Fetcher) checkURL(rawURL string) error {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", errorz.ErrUnsafeURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", errorz.ErrUnsafeURL, parsed.Scheme)
	}
	if f.allowPrivate {
		return nil
	}

	if ip := net.ParseIP(parsed.Hostname()); ip != nil && restricted(ip) {
		return fmt.Errorf("%w: %s", errorz.ErrUnsafeURL, ip)
	}
	if ok, err := f.isSafeURL(rawURL); !ok {
		if err == nil {
			err = fmt.Errorf("%s is not allowed", parsed.Hostname())
		}
		return fmt.Errorf("%w: %v", errorz.ErrUnsafeURL, err)
	}
	return nil
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if err := f.checkURL(req.URL.String()); err != nil {
		return fmt.Errorf("redirect to %s: %w", req.URL.Redacted(), err)
	}
	return nil
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// guardDial checks the address a connection actually reached, which also
// covers hosts that change their DNS answer between check and dial.
func guardDial(dial dialFunc) dialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if tcp, ok := conn.RemoteAddr().(*net.TCPAddr); ok && restricted(tcp.IP) {
			_ = conn.Close()
			return nil, fmt.Errorf("%w: connected to %s", errorz.ErrUnsafeURL, tcp.IP)
		}
		return conn, nil
	}
}

func restricted(ip net.IP) bool {
	return ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsUnspecified()
}
