package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"salesdesk_backend/platform/kvstore"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/metrics"

	"golang.org/x/sync/singleflight"
)

// DefaultProbeTimeout bounds a whole probe (DNS plus HTTP attempts).
const DefaultProbeTimeout = 5 * time.Second

const probeCachePrefix = "probe:"

// Reachability is the outcome of a web probe. The zero value means unreachable.
type Reachability struct {
	Resolves bool `json:"resolves"`
	HTTPS    bool `json:"https"`
	HTTP     bool `json:"http"`
}

func (r Reachability) label() string {
	switch {
	case r.HTTPS:
		return "https"
	case r.HTTP:
		return "http"
	case r.Resolves:
		return "dns_only"
	default:
		return "unreachable"
	}
}

func (r Reachability) encode() string {
	b := func(v bool) string {
		if v {
			return "1"
		}
		return "0"
	}
	return b(r.Resolves) + b(r.HTTPS) + b(r.HTTP)
}

func decodeReachability(s string) (Reachability, bool) {
	if len(s) != 3 {
		return Reachability{}, false
	}
	return Reachability{Resolves: s[0] == '1', HTTPS: s[1] == '1', HTTP: s[2] == '1'}, true
}

// Prober checks whether a domain is live. Implementations never fail; any
// error means "not reachable".
type Prober interface {
	Probe(ctx context.Context, host string) Reachability
}

// Resolver is the subset of *net.Resolver the probe needs.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// HTTPProber resolves the host and then tries HTTPS and plain HTTP, each with
// HEAD falling back to GET. Concurrent probes of one host share a single
// round of network calls and outcomes can be cached.
type HTTPProber struct {
	resolver Resolver
	client   *http.Client
	timeout  time.Duration
	cache    kvstore.Store
	cacheTTL time.Duration
	urlFor   func(scheme, host string) string
	group    singleflight.Group
	log      *logger.Logger
}

// ProberOption configures an HTTPProber.
type ProberOption func(*HTTPProber)

// WithResolver replaces net.DefaultResolver.
func WithResolver(r Resolver) ProberOption {
	return func(p *HTTPProber) { p.resolver = r }
}

// WithHTTPClient replaces the default client. Redirects are still followed.
func WithHTTPClient(c *http.Client) ProberOption {
	return func(p *HTTPProber) { p.client = c }
}

// WithCache caches outcomes per host for ttl.
func WithCache(store kvstore.Store, ttl time.Duration) ProberOption {
	return func(p *HTTPProber) {
		p.cache = store
		p.cacheTTL = ttl
	}
}

// WithURLBuilder overrides how probe URLs are formed.
func WithURLBuilder(fn func(scheme, host string) string) ProberOption {
	return func(p *HTTPProber) { p.urlFor = fn }
}

// NewHTTPProber creates a prober. A non-positive timeout uses DefaultProbeTimeout.
func NewHTTPProber(timeout time.Duration, log *logger.Logger, opts ...ProberOption) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	p := &HTTPProber{
		resolver: net.DefaultResolver,
		client:   &http.Client{},
		timeout:  timeout,
		urlFor: func(scheme, host string) string {
			return fmt.Sprintf("%s://%s/", scheme, host)
		},
		log: log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, host string) Reachability {
	if host == "" {
		return Reachability{}
	}
	if cached, ok := p.cached(ctx, host); ok {
		metrics.RecordProbe("cached")
		return cached
	}

	v, _, _ := p.group.Do(host, func() (any, error) {
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		result := p.probe(probeCtx, host)
		metrics.RecordProbe(result.label())
		p.store(ctx, host, result)
		return result, nil
	})

	result, _ := v.(Reachability)
	return result
}

func (p *HTTPProber) probe(ctx context.Context, host string) Reachability {
	addrs, err := p.resolver.LookupHost(ctx, host)
	if err != nil || len(addrs) == 0 {
		p.debug("dns lookup failed", host, err)
		return Reachability{}
	}

	result := Reachability{Resolves: true}
	if p.reachable(ctx, p.urlFor("https", host)) {
		result.HTTPS = true
		return result
	}
	result.HTTP = p.reachable(ctx, p.urlFor("http", host))
	return result
}

// reachable is true when the server answered with a non-5xx status.
func (p *HTTPProber) reachable(ctx context.Context, target string) bool {
	status, err := p.request(ctx, http.MethodHead, target)
	if err == nil && status != http.StatusMethodNotAllowed && status != http.StatusNotImplemented {
		return status < http.StatusInternalServerError
	}
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		p.debug("probe timed out", target, err)
		return false
	}

	status, err = p.request(ctx, http.MethodGet, target)
	if err != nil {
		p.debug("probe request failed", target, err)
		return false
	}
	return status < http.StatusInternalServerError
}

func (p *HTTPProber) request(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "salesdesk-probe/1.0")
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func (p *HTTPProber) cached(ctx context.Context, host string) (Reachability, bool) {
	if p.cache == nil {
		return Reachability{}, false
	}
	raw, ok, err := p.cache.Get(ctx, probeCachePrefix+strings.ToLower(host))
	if err != nil || !ok {
		return Reachability{}, false
	}
	return decodeReachability(raw)
}

func (p *HTTPProber) store(ctx context.Context, host string, r Reachability) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Set(context.WithoutCancel(ctx), probeCachePrefix+strings.ToLower(host), r.encode(), p.cacheTTL); err != nil {
		p.debug("probe cache write failed", host, err)
	}
}

func (p *HTTPProber) debug(msg, target string, err error) {
	if p.log == nil {
		return
	}
	attrs := []any{slog.String("target", target)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	p.log.Debug(msg, attrs...)
}

var _ Prober = (*HTTPProber)(nil)
