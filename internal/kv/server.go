// Package kv is a small key-value storage service reached over HTTP, with a
// client and a snapshot backend built on it.
package kv

import (
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"task-tracker/internal/logging"
)

// TokenParam is the query parameter carrying the API token.
const TokenParam = "API_TOKEN"

// Server keeps values in memory. Every request except /register must carry
// the token handed out by /register.
type Server struct {
	mu     sync.RWMutex
	data   map[string]string
	token  string
	router *gin.Engine
	log    zerolog.Logger
}

// NewServer creates a Server with a fresh random token.
func NewServer() *Server {
	s := &Server{
		data:   make(map[string]string),
		token:  uuid.NewString(),
		router: gin.New(),
		log:    logging.Component("kv"),
	}
	s.router.Use(gin.Recovery())

	s.router.GET("/register", s.handleRegister)
	s.router.POST("/save/:key", s.requireToken, s.handleSave)
	s.router.GET("/load/:key", s.requireToken, s.handleLoad)

	return s
}

// Token returns the API token clients must present.
func (s *Server) Token() string {
	return s.token
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("kv server listening")
	return s.router.Run(addr)
}

func (s *Server) handleRegister(c *gin.Context) {
	c.String(http.StatusOK, s.token)
}

func (s *Server) requireToken(c *gin.Context) {
	if c.Query(TokenParam) != s.token {
		s.log.Warn().Str("path", c.FullPath()).Msg("rejected request with bad token")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing or invalid " + TokenParam})
		return
	}
	c.Next()
}

func (s *Server) handleSave(c *gin.Context) {
	key := c.Param("key")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty value for key " + key})
		return
	}

	s.mu.Lock()
	s.data[key] = string(body)
	s.mu.Unlock()

	s.log.Debug().Str("key", key).Int("bytes", len(body)).Msg("saved")
	c.Status(http.StatusOK)
}

func (s *Server) handleLoad(c *gin.Context) {
	key := c.Param("key")

	s.mu.RLock()
	value, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no value for key " + key})
		return
	}
	c.String(http.StatusOK, value)
}
