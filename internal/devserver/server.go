// Package devserver is a local stand-in for the news search service,
// backed by a bleve index fed from RSS/Atom sources.
package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/feed"
	"github.com/pders01/newsdesk/internal/index"
)

const maxTrendingLimit = 50

// Server serves the news API over an index.
type Server struct {
	cfg    *config.Config
	index  *index.Index
	feeds  *feed.Manager
	engine *gin.Engine
}

func New(cfg *config.Config, idx *index.Index, feeds *feed.Manager) *Server {
	if debuglog.GetLevel() > debuglog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{cfg: cfg, index: idx, feeds: feeds, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger, allowCORS)

	s.engine.GET("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	api := s.engine.Group("/api/news")
	api.GET("/suggestions", s.handleSuggestions)
	api.GET("/trending", s.handleTrending)
	api.POST("/search", s.handleSearch)
	api.GET("/article/:id", s.handleArticle)
	api.POST("/article/:id/:action", s.handleTrack)

	return s
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Refresh ingests all sources and indexes what they returned. Source
// failures are reported but whatever was fetched is still indexed.
func (s *Server) Refresh(ctx context.Context) (int, error) {
	if s.feeds == nil {
		return 0, nil
	}
	articles, fetchErr := s.feeds.Refresh(ctx)
	if err := s.index.Upsert(articles); err != nil {
		return 0, errors.Join(fetchErr, err)
	}
	return len(articles), fetchErr
}

// Run listens on cfg.Server.Addr until ctx is cancelled, refreshing sources
// on the configured interval.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.refreshLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		debuglog.Infof("dev server listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) refreshLoop(ctx context.Context) {
	refresh := func() {
		n, err := s.Refresh(ctx)
		if err != nil {
			debuglog.Warnf("refresh: %v", err)
		}
		debuglog.Infof("indexed %d articles", n)
	}

	refresh()
	interval := s.cfg.Server.RefreshInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

func requestLogger(ctx *gin.Context) {
	start := time.Now()
	ctx.Next()
	debuglog.WithFields(map[string]interface{}{
		"method": ctx.Request.Method,
		"path":   ctx.Request.URL.Path,
		"status": ctx.Writer.Status(),
		"took":   time.Since(start).Round(time.Microsecond),
	}).Debugf("request")
}

// allowCORS lets browser front-ends served from loopback call the API.
func allowCORS(ctx *gin.Context) {
	origin := ctx.Request.Header.Get("Origin")
	allowed := false
	if origin != "" {
		if u, err := url.Parse(origin); err == nil {
			host := strings.ToLower(u.Hostname())
			allowed = host == "localhost" || host == "127.0.0.1" || host == "::1"
		}
	}

	if allowed {
		ctx.Header("Access-Control-Allow-Origin", origin)
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, Accept")
		ctx.Header("Vary", "Origin")
		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
	} else if origin != "" && ctx.Request.Method == http.MethodOptions {
		ctx.AbortWithStatus(http.StatusForbidden)
		return
	}

	ctx.Next()
}
