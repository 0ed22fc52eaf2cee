package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pursewatch-dev/pursewatch/internal/bus"
	"github.com/pursewatch-dev/pursewatch/internal/model"
)

// Server is the HTTP bridge between the browser-side collector and the
// engine.
type Server struct {
	manager *Manager
	bus     *bus.Bus
	addr    string
	router  *gin.Engine
}

// New creates the server and registers its routes.
func New(addr string, manager *Manager, b *bus.Bus) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		manager: manager,
		bus:     b,
		addr:    addr,
		router:  router,
	}

	router.GET("/healthz", s.handleHealth)
	v1 := router.Group("/v1")
	{
		v1.POST("/events", s.handleEvent)
		v1.GET("/status", s.handleStatus)
		v1.GET("/sessions", s.handleSessions)
		v1.GET("/stream", s.handleStream)
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.manager.Start(ctx)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.manager.StopAll()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleEvent(c *gin.Context) {
	var event model.PageEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}
	if event.Type == "" || event.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event type and url are required"})
		return
	}
	if event.SessionID == "" {
		event.SessionID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	accepted := s.manager.Dispatch(event)
	c.JSON(http.StatusAccepted, gin.H{
		"session_id": event.SessionID,
		"accepted":   accepted,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	sessionID := c.Query("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session query parameter is required"})
		return
	}
	status, ok := s.manager.Status(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.manager.SessionIDs()})
}

// handleStream feeds outbound events to a companion surface over SSE.
// Delivery is best-effort; a disconnected client just misses events.
func (s *Server) handleStream(c *gin.Context) {
	events, cancel := s.bus.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(_ io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
