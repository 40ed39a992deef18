package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marsrover/internal/backend"
	"marsrover/internal/grpcserver"
	"marsrover/internal/journal"
	"marsrover/internal/live"
	"marsrover/internal/nasa"
	"marsrover/internal/proxy"
	"marsrover/pkg/database"
	"marsrover/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Verbose)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	dbCfg := database.DefaultConfig(cfg.DBPath)
	db, err := database.Open(dbCfg)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), utils.GinLogger(logger.Named("http")))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	journalRepo := journal.NewRepo(db)
	hub := live.NewHub()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
				"sessions": stats.Sessions,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"db":       "ok",
			"sessions": stats.Sessions,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		recent, err := journalRepo.Recent(c.Request.Context(), 20)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "journal failed"})
			return
		}
		total, err := journalRepo.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "journal failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"db":               dbCfg.Path,
			"sessions":         hub.Stats().Sessions,
			"upstream_total":   total,
			"upstream_recent":  recent,
			"rover_endpoint":   cfg.RoverEndpoint,
			"apod_endpoint":    cfg.APODEndpoint,
			"backend_url":      cfg.BackendURL,
			"upstream_timeout": cfg.UpstreamTimeout.String(),
		})
	})

	// Proxy
	upstream := nasa.NewClient(cfg.APIKey, cfg.RoverEndpoint, cfg.APODEndpoint, cfg.UpstreamTimeout)
	proxyHandler := proxy.NewHandler(upstream, journalRepo, logger.Named("proxy"))
	proxyHandler.RegisterRoutes(router)

	// Live view sessions fetch through the proxy routes above.
	// A fetch outlives a slow but successful upstream call, then gives up.
	fetchTimeout := live.WithFetchTimeout(cfg.UpstreamTimeout + 5*time.Second)
	router.GET("/ws", live.WSHandler(hub, backend.NewClient(cfg.BackendURL), logger.Named("live"), fetchTimeout))

	// Static page
	router.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
	router.Static("/assets", filepath.Join(cfg.StaticDir, "assets"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	httpSrv := newHTTPServer(gctx, cfg.Addr(), router)

	grpcSrv := grpcserver.NewServer(logger.Named("grpc"))
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("grpc listen failed", zap.Error(err))
	}

	g.Go(func() error {
		return grpcSrv.Serve(grpcLis)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", httpSrv.Addr), zap.String("static", cfg.StaticDir))
		grpcSrv.SetServing(true)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		grpcSrv.SetServing(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		hub.CloseAll()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown error", zap.Error(err))
		}
		grpcSrv.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("servers stopped")
}

// newHTTPServer derives every request context from ctx, so requests held
// on a failed upstream call end when ctx does.
func newHTTPServer(ctx context.Context, addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}
