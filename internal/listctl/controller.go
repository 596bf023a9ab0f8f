package listctl

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/models"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

// ErrSuperseded is returned to a fetch whose result arrived after a newer fetch
// was started. Its result was discarded.
var ErrSuperseded = errors.New("listctl: result superseded by a newer request")

// Fetcher loads one page for a filter
type Fetcher[T any, F comparable] func(ctx context.Context, filter F, page models.PageRequest) (*models.PagedResult[T], error)

// State is a snapshot of a list screen
type State[T any, F comparable] struct {
	PageIndex int
	PageSize  int
	Filter    F
	Loading   bool
	Result    *models.PagedResult[T]
	Err       error
}

// Controller keeps the page, filter and last result of one list screen. Only the
// most recently started fetch may replace the shown result.
type Controller[T any, F comparable] struct {
	mu        sync.Mutex
	name      string
	fetch     Fetcher[T, F]
	pageIndex int
	pageSize  int
	filter    F
	loading   bool
	result    *models.PagedResult[T]
	err       error
	seq       uint64

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Option configures a Controller
type Option func(*options)

type options struct {
	pageSize int
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

// WithPageSize sets the initial page size
func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = n }
}

// WithMetrics sets the collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// New creates a controller named for its screen
func New[T any, F comparable](name string, fetch Fetcher[T, F], opts ...Option) *Controller[T, F] {
	o := options{pageSize: models.DefaultPageSize, metrics: metrics.Noop()}
	for _, opt := range opts {
		opt(&o)
	}
	l := log.Logger
	if o.logger != nil {
		l = *o.logger
	}

	return &Controller[T, F]{
		name:     name,
		fetch:    fetch,
		pageSize: models.PageRequest{Size: o.pageSize}.Normalize().Size,
		metrics:  o.metrics,
		logger:   l.With().Str("component", "listctl").Str("list", name).Logger(),
	}
}

// State returns a snapshot
func (c *Controller[T, F]) State() State[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller[T, F]) snapshot() State[T, F] {
	return State[T, F]{
		PageIndex: c.pageIndex,
		PageSize:  c.pageSize,
		Filter:    c.filter,
		Loading:   c.loading,
		Result:    c.result,
		Err:       c.err,
	}
}

// SetFilter replaces the filter, returns to the first page and fetches
func (c *Controller[T, F]) SetFilter(ctx context.Context, filter F) (State[T, F], error) {
	c.mu.Lock()
	c.filter = filter
	c.pageIndex = 0
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// SetPage moves to page n and fetches
func (c *Controller[T, F]) SetPage(ctx context.Context, n int) (State[T, F], error) {
	if n < 0 {
		n = 0
	}
	c.mu.Lock()
	c.pageIndex = n
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// SetPageSize changes the page size, returns to the first page and fetches
func (c *Controller[T, F]) SetPageSize(ctx context.Context, n int) (State[T, F], error) {
	c.mu.Lock()
	c.pageSize = models.PageRequest{Size: n}.Normalize().Size
	c.pageIndex = 0
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// NextPage advances when the shown result has a next page
func (c *Controller[T, F]) NextPage(ctx context.Context) (State[T, F], error) {
	c.mu.Lock()
	if c.result == nil || !c.result.HasNext() {
		st := c.snapshot()
		c.mu.Unlock()
		return st, nil
	}
	c.pageIndex++
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// PrevPage steps back unless on the first page
func (c *Controller[T, F]) PrevPage(ctx context.Context) (State[T, F], error) {
	c.mu.Lock()
	if c.pageIndex == 0 {
		st := c.snapshot()
		c.mu.Unlock()
		return st, nil
	}
	c.pageIndex--
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// Refetch issues a new fetch for the current page and filter under its own
// context. A failed fetch keeps the previous result and records the error,
// except an authentication failure, which the session turns into a redirect.
// A fetch overtaken by a newer one returns ErrSuperseded and changes nothing.
func (c *Controller[T, F]) Refetch(ctx context.Context) (State[T, F], error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	filter := c.filter
	page := models.PageRequest{Page: c.pageIndex, Size: c.pageSize}
	c.mu.Unlock()

	res, err := c.fetch(ctx, filter, page)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.metrics.StaleDiscarded.WithLabelValues(c.name).Inc()
		c.logger.Debug().Uint64("seq", seq).Uint64("current", c.seq).Msg("Discarding superseded list result")
		return c.snapshot(), ErrSuperseded
	}

	c.loading = false
	if err != nil {
		if !apperrors.IsAuth(err) {
			c.err = err
		}
		c.logger.Debug().Err(err).Int("page", page.Page).Msg("List fetch failed")
		return c.snapshot(), err
	}

	if res == nil {
		res = &models.PagedResult[T]{Items: []T{}, PageIndex: page.Page, PageSize: page.Size}
	}
	c.result = res
	c.err = nil
	return c.snapshot(), nil
}
