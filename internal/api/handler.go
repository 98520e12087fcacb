package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/firegrid/hydrant-reach/internal/config"
	"github.com/firegrid/hydrant-reach/internal/rangefinder"
	"github.com/firegrid/hydrant-reach/internal/repository"
	"github.com/firegrid/hydrant-reach/internal/session"
)

// Runner executes one full range computation.
type Runner interface {
	Run(ctx context.Context, points []rangefinder.InputPoint, withElevation bool) (*rangefinder.MergedResult, error)
}

// Renderer turns a merged result into a downloadable artifact.
type Renderer interface {
	Render(res *rangefinder.MergedResult) ([]byte, error)
}

type Handler struct {
	runner   Runner
	renderer Renderer
	sessions *session.Cache
	runs     repository.RunRepository // optional
	limits   config.LimitsConfig
}

func NewHandler(runner Runner, renderer Renderer, sessions *session.Cache, runs repository.RunRepository, limits config.LimitsConfig) *Handler {
	return &Handler{
		runner:   runner,
		renderer: renderer,
		sessions: sessions,
		runs:     runs,
		limits:   limits,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/range", h.computeRange)
	r.GET("/maps/:session_id", h.viewMap)
	r.GET("/download", h.download)
	r.GET("/api/runs", h.listRuns)
	r.GET("/health", h.health)
}

func (h *Handler) computeRange(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	points, withElevation, err := parseRequest(body, h.limits)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := time.Now()
	res, runErr := h.runner.Run(c.Request.Context(), points, withElevation)

	if runErr != nil && errors.Is(runErr, rangefinder.ErrNoSurvivors) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "no valid output map could be generated, try again with different locations",
		})
		return
	}
	if runErr != nil && !errors.Is(runErr, rangefinder.ErrElevationUnavailable) {
		slog.Error("range computation failed", "error", runErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "range computation failed"})
		return
	}

	artifact, err := h.renderer.Render(res)
	if err != nil {
		slog.Error("map rendering failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render map"})
		return
	}

	sessionID := h.sessions.Put(artifact)
	h.recordRun(c.Request.Context(), points, res, withElevation, time.Since(started))

	resp := gin.H{
		"session_id":   sessionID,
		"map_url":      "/maps/" + sessionID,
		"download_url": "/download?session_id=" + sessionID,
		"points":       len(points),
		"survivors":    len(res.Points),
		"layers":       len(res.Layers),
		"segments":     len(res.Segments),
	}
	// The elevation pass failing leaves the base result usable; report
	// the condition instead of failing the request.
	if runErr != nil && errors.Is(runErr, rangefinder.ErrElevationUnavailable) {
		resp["warning"] = rangefinder.ErrElevationUnavailable.Error()
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) viewMap(c *gin.Context) {
	artifact, ok := h.sessions.Get(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no map data available, your session may have timed out"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", artifact)
}

func (h *Handler) download(c *gin.Context) {
	artifact, ok := h.sessions.Get(c.Query("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no map data available for download, your session may have timed out"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="output_map.html"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", artifact)
}

func (h *Handler) listRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run log not enabled"})
		return
	}

	limit := 20
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// recordRun writes the audit entry; failures only log.
func (h *Handler) recordRun(ctx context.Context, points []rangefinder.InputPoint, res *rangefinder.MergedResult, withElevation bool, took time.Duration) {
	if h.runs == nil {
		return
	}

	modes := make([]string, len(points))
	for i, pt := range points {
		modes[i] = string(pt.Mode)
	}

	rec := &repository.RunRecord{
		ID:         uuid.NewString(),
		Points:     len(points),
		Survivors:  len(res.Points),
		Elevation:  withElevation,
		Modes:      strings.Join(modes, ","),
		DurationMS: took.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if err := h.runs.Add(ctx, rec); err != nil {
		slog.Error("error recording run", "id", rec.ID, "error", err)
	}
}
