// Package live runs one view store per browser session and pushes every
// render to the browser over a websocket.
package live

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"marsrover/internal/view"
	"marsrover/pkg/models"
)

// Fetcher loads the slices the page needs. backend.Client implements it.
type Fetcher interface {
	APOD(ctx context.Context) (models.APOD, error)
	Manifest(ctx context.Context, rover string) (models.Manifest, error)
	LatestPhotos(ctx context.Context, rover string) ([]models.Photo, error)
}

// Sink receives the complete markup of every render.
type Sink func(markup string)

// DefaultFetchTimeout bounds one fetch. The proxy never answers a failed
// upstream call; the deadline is what releases the slice for a retry.
const DefaultFetchTimeout = 35 * time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithFetchTimeout sets the deadline of every fetch. Zero or less keeps
// DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// Controller owns a session's store. After every render it checks for
// missing slices and fetches each one at most once at a time.
type Controller struct {
	store   *view.Store
	fetcher Fetcher
	sink    Sink
	logger  *zap.Logger

	fetchTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inflight map[string]struct{}
	idle     chan struct{} // closed while nothing is in flight
	closed   bool
	wg       sync.WaitGroup
}

func NewController(fetcher Fetcher, initial view.State, sink Sink, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = func(string) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	c := &Controller{
		fetcher:  fetcher,
		sink:     sink,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]struct{}),
		idle:     idle,

		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store = view.NewStore(initial, c.render)
	return c
}

// Start performs the initial render, which kicks off the first fetches.
func (c *Controller) Start() {
	c.store.Render()
}

// SelectRover switches tabs.
func (c *Controller) SelectRover(name string) error {
	return c.store.Merge(view.Patch{SelectedRover: &name})
}

// SetCamera changes the photo filter.
func (c *Controller) SetCamera(camera string) error {
	camera = view.NormalizeCamera(camera)
	return c.store.Merge(view.Patch{CameraType: &camera})
}

func (c *Controller) State() view.State {
	return c.store.State()
}

// Settle blocks until no fetch is in flight or ctx is done.
func (c *Controller) Settle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight fetches and waits for them to return. Nothing is
// rendered afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// render runs under the store lock, once per merge.
func (c *Controller) render(s view.State) {
	if c.ctx.Err() != nil {
		return
	}
	markup, err := view.Markup(s)
	if err != nil {
		c.logger.Error("render_failed", zap.Error(err))
	} else {
		c.sink(markup)
	}
	c.ensure(s)
}

func (c *Controller) ensure(s view.State) {
	rover := s.SelectedRover

	if s.APOD.IsZero() {
		c.fetch("apod", func(ctx context.Context) (func(view.State) view.Patch, error) {
			apod, err := c.fetcher.APOD(ctx)
			if err != nil {
				return nil, err
			}
			return func(view.State) view.Patch { return view.Patch{APOD: &apod} }, nil
		})
	}

	if _, ok := s.Manifest(rover); !ok {
		c.fetch("manifest:"+rover, func(ctx context.Context) (func(view.State) view.Patch, error) {
			m, err := c.fetcher.Manifest(ctx, rover)
			if err != nil {
				return nil, err
			}
			return func(cur view.State) view.Patch {
				return view.Patch{Rovers: cur.WithManifest(rover, m)}
			}, nil
		})
	}

	if _, ok := s.PhotosFor(rover); !ok {
		c.fetch("photos:"+rover, func(ctx context.Context) (func(view.State) view.Patch, error) {
			photos, err := c.fetcher.LatestPhotos(ctx, rover)
			if err != nil {
				return nil, err
			}
			if photos == nil {
				photos = []models.Photo{}
			}
			return func(cur view.State) view.Patch {
				return view.Patch{Photos: cur.WithPhotos(rover, photos)}
			}, nil
		})
	}
}

func (c *Controller) fetch(key string, load func(context.Context) (func(view.State) view.Patch, error)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, busy := c.inflight[key]; busy {
		c.mu.Unlock()
		return
	}
	if len(c.inflight) == 0 {
		c.idle = make(chan struct{})
	}
	c.inflight[key] = struct{}{}
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("fetch_started", zap.String("slice", key))

	go func() {
		defer c.wg.Done()
		defer c.release(key)

		ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
		patch, err := load(ctx)
		cancel()
		if err != nil {
			if c.ctx.Err() == nil {
				c.logger.Warn("fetch_failed", zap.String("slice", key), zap.Error(err))
			}
			return
		}
		if c.ctx.Err() != nil {
			return
		}
		// The key stays in flight until the merge has rendered, so the
		// render it triggers cannot start a duplicate.
		if err := c.store.Update(patch); err != nil {
			c.logger.Error("merge_failed", zap.String("slice", key), zap.Error(err))
		}
	}()
}

func (c *Controller) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
	if len(c.inflight) == 0 {
		close(c.idle)
	}
}
