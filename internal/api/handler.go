// Package api serves the function catalog as a JSON HTTP API.
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialgap/app"
	"socialgap/domain/core"
)

// CallIDHeader carries the call id of every response
const CallIDHeader = "X-Call-ID"

// FunctionHandler handles catalog requests
type FunctionHandler struct {
	service *app.Service
	logger  *zap.Logger
}

// NewFunctionHandler creates a new function handler
func NewFunctionHandler(service *app.Service, logger *zap.Logger) *FunctionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FunctionHandler{service: service, logger: logger.Named("api")}
}

// NewRouter builds the gin engine with every /api route
func NewRouter(service *app.Service, logger *zap.Logger) *gin.Engine {
	h := NewFunctionHandler(service, logger)
	r := gin.New()
	r.Use(gin.Recovery(), h.callID(), h.accessLog())
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the handlers under /api
func (h *FunctionHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/healthz", h.Health)
	api.GET("/functions", h.ListFunctions)
	api.POST("/functions/:name", h.CallFunction)
	api.POST("/translate", h.Translate)
	api.POST("/query", h.Query)
}

// callID assigns a call id, honoring one sent by the client
func (h *FunctionHandler) callID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := core.CallID(c.GetHeader(CallIDHeader))
		if id.IsEmpty() {
			id = core.NewCallID()
		}
		c.Header(CallIDHeader, id.String())
		c.Request = c.Request.WithContext(app.WithCallID(c.Request.Context(), id))
		c.Next()
	}
}

func (h *FunctionHandler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info("request",
			zap.String("call_id", c.Writer.Header().Get(CallIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// Health reports readiness and the loaded table size
func (h *FunctionHandler) Health(c *gin.Context) {
	table := h.service.Table()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"rows":     table.Len(),
		"programs": table.Programs(),
	})
}

// ListFunctions returns the catalog
func (h *FunctionHandler) ListFunctions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"functions": app.Catalog()})
}

// CallFunction runs a catalog function with the JSON body as arguments
func (h *FunctionHandler) CallFunction(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	args, err := app.ParseArguments(body)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.Call(c.Request.Context(), c.Param("name"), args)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

// Translate maps a free-text query to criteria without running it
func (h *FunctionHandler) Translate(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, core.NewInvalidArgumentError("query", err.Error()))
		return
	}
	c.JSON(http.StatusOK, h.service.Translate(req.Query))
}

// Query translates and runs a free-text query
func (h *FunctionHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, core.NewInvalidArgumentError("query", err.Error()))
		return
	}
	result, err := h.service.Query(c.Request.Context(), req.Query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FunctionHandler) fail(c *gin.Context, err error) {
	res := app.NewErrorResult(err)
	c.JSON(statusFor(res.Kind), res)
}

func statusFor(kind string) int {
	switch kind {
	case app.KindSchema:
		return http.StatusNotFound
	case app.KindMissingDependency:
		return http.StatusUnprocessableEntity
	case app.KindAmbiguous, app.KindInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
