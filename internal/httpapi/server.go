// Package httpapi serves the task API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"task-tracker/internal/api"
	"task-tracker/internal/logging"
)

// Server is the task HTTP server
type Server struct {
	api    api.TaskAPI
	router *gin.Engine
	log    zerolog.Logger
}

// NewServer creates a new server and registers its routes
func NewServer(taskAPI api.TaskAPI) *Server {
	s := &Server{
		api:    taskAPI,
		router: gin.New(),
		log:    logging.Component("http"),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())

	tasks := s.router.Group("/tasks")
	{
		tasks.GET("/task", s.handleListTasks)
		tasks.POST("/task", s.handleCreateTask)
		tasks.DELETE("/task", s.handleDeleteAllTasks)
		tasks.GET("/task/:id", s.handleGetTask)
		tasks.POST("/task/:id", s.handleUpdateTask)
		tasks.PUT("/task/:id", s.handleUpdateTask)
		tasks.DELETE("/task/:id", s.handleDeleteTask)

		tasks.GET("/epic", s.handleListEpics)
		tasks.POST("/epic", s.handleCreateEpic)
		tasks.DELETE("/epic", s.handleDeleteAllEpics)
		tasks.GET("/epic/:id", s.handleGetEpic)
		tasks.POST("/epic/:id", s.handleUpdateEpic)
		tasks.PUT("/epic/:id", s.handleUpdateEpic)
		tasks.DELETE("/epic/:id", s.handleDeleteEpic)

		tasks.GET("/subtask", s.handleListSubtasks)
		tasks.POST("/subtask", s.handleCreateSubtask)
		tasks.DELETE("/subtask", s.handleDeleteAllSubtasks)
		tasks.GET("/subtask/epic/:id", s.handleEpicSubtasks)
		tasks.GET("/subtask/:id", s.handleGetSubtask)
		tasks.POST("/subtask/:id", s.handleUpdateSubtask)
		tasks.PUT("/subtask/:id", s.handleUpdateSubtask)
		tasks.DELETE("/subtask/:id", s.handleDeleteSubtask)

		tasks.GET("/history", s.handleHistory)
		tasks.GET("/priorities", s.handlePriorities)
		tasks.GET("/upcoming", s.handleUpcoming)
		tasks.GET("/free", s.handleFreeSlots)
		tasks.GET("/summary", s.handleSummary)
	}
	s.router.DELETE("/tasks", s.handleDeleteEverything)

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("task server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info().Msg("task server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := s.log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = s.log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
