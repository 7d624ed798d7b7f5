// Package httpapi is the HTTP transport: a gin engine carrying the GraphQL
// endpoint, with bearer-token authentication resolved into a request
// principal before the resolvers run.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/logging"
	"github.com/vevey/vevey/internal/server/graph"
	"github.com/vevey/vevey/internal/server/sessions"
)

type Server struct {
	address        string
	schema         *graph.Schema
	sessions       *sessions.Service
	logger         logging.Logger
	requestTimeout time.Duration
}

func NewServer(address string, schema *graph.Schema, sess *sessions.Service, logger logging.Logger, requestTimeout time.Duration) *Server {
	return &Server{
		address:        address,
		schema:         schema,
		sessions:       sess,
		logger:         logger.With("module", "http_server"),
		requestTimeout: requestTimeout,
	}
}

// Router builds the gin engine. Split out from Run so tests can drive the
// handler stack through httptest without binding a port.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(s.bearerAuth())

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.POST("/graphql", s.handleGraphQL)

	return r
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

func (s *Server) handleGraphQL(c *gin.Context) {
	var req graphqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		kind := common.KindInvalidInput
		c.JSON(kind.HTTPStatus(), gin.H{
			"errors": []gin.H{{
				"message":    "invalid request body",
				"extensions": gin.H{"code": string(kind)},
			}},
		})
		return
	}

	ctx := c.Request.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	result := s.schema.Execute(ctx, req.Query, req.Variables, req.OperationName)
	c.JSON(http.StatusOK, result)
}
