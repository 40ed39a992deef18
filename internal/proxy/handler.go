// Package proxy exposes the three passthrough routes in front of the NASA API.
package proxy

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marsrover/internal/journal"
	"marsrover/internal/nasa"
)

const (
	routeAPOD   = "/apod"
	routeRover  = "/rovers/:rover_name"
	routePhotos = "/rover_photos/:rover_name"
)

// Upstream is the NASA API as seen by the handlers.
type Upstream interface {
	APOD(ctx context.Context) (*nasa.Response, error)
	Manifest(ctx context.Context, rover string) (*nasa.Response, error)
	LatestPhotos(ctx context.Context, rover string) (*nasa.Response, error)
}

// Recorder receives one entry per upstream call. Optional.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

type Handler struct {
	Upstream Upstream
	Journal  Recorder
	Logger   *zap.Logger
}

func NewHandler(upstream Upstream, rec Recorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Upstream: upstream, Journal: rec, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET(routeAPOD, h.apod)      // GET /apod
	rg.GET(routeRover, h.manifest) // GET /rovers/:rover_name
	rg.GET(routePhotos, h.photos)  // GET /rover_photos/:rover_name
}

type apodEnvelope struct {
	Image json.RawMessage `json:"image"`
}

func (h *Handler) apod(c *gin.Context) {
	resp, ok := h.call(c, routeAPOD, "", h.Upstream.APOD)
	if !ok {
		return
	}
	c.JSON(resp.Status, apodEnvelope{Image: resp.Body})
}

func (h *Handler) manifest(c *gin.Context) {
	rover := c.Param("rover_name")
	resp, ok := h.call(c, routeRover, rover, func(ctx context.Context) (*nasa.Response, error) {
		return h.Upstream.Manifest(ctx, rover)
	})
	if !ok {
		return
	}
	c.Data(resp.Status, gin.MIMEJSON, resp.Body)
}

func (h *Handler) photos(c *gin.Context) {
	rover := c.Param("rover_name")
	resp, ok := h.call(c, routePhotos, rover, func(ctx context.Context) (*nasa.Response, error) {
		return h.Upstream.LatestPhotos(ctx, rover)
	})
	if !ok {
		return
	}
	c.Data(resp.Status, gin.MIMEJSON, resp.Body)
}

// call runs one upstream request and journals it. On failure it logs, then
// holds the request open without writing anything until the caller gives up.
func (h *Handler) call(c *gin.Context, route, rover string, fetch func(context.Context) (*nasa.Response, error)) (*nasa.Response, bool) {
	ctx := c.Request.Context()
	start := time.Now()
	resp, err := fetch(ctx)

	entry := journal.Entry{
		Route:    route,
		Rover:    rover,
		Duration: time.Since(start),
	}
	if resp != nil {
		entry.Status = resp.Status
		entry.Endpoint = resp.Endpoint
	}
	if err != nil {
		entry.Error = err.Error()
	}
	h.record(entry)

	if err != nil {
		h.Logger.Error("upstream_failed",
			zap.String("route", route),
			zap.String("rover", rover),
			zap.Error(err),
		)
		<-ctx.Done()
		c.Abort()
		return nil, false
	}

	h.Logger.Debug("upstream_ok",
		zap.String("route", route),
		zap.String("rover", rover),
		zap.Int("status", resp.Status),
		zap.Duration("latency", entry.Duration),
	)
	return resp, true
}

func (h *Handler) record(e journal.Entry) {
	if h.Journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Journal.Record(ctx, e); err != nil {
		h.Logger.Warn("journal_record_failed", zap.Error(err))
	}
}
