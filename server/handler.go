package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/revelaction/signpose/annotate"
	"github.com/revelaction/signpose/gloss"
	"github.com/revelaction/signpose/logger"
	"github.com/revelaction/signpose/pipeline"
	"github.com/revelaction/signpose/render"
	sent "github.com/revelaction/signpose/sentence"
)

// MIMEMsgpack selects the length prefixed msgpack timeline encoding.
const MIMEMsgpack = "application/x-msgpack"

// Runner is the pipeline as the handlers use it.
type Runner interface {
	Run(ctx context.Context, text string) (pipeline.Result, error)
	RunTokens(ctx context.Context, tokens []sent.Token) (pipeline.Result, error)
	RunGloss(ctx context.Context, text string) (pipeline.Result, error)
}

type Handler struct {
	runner Runner

	// keys are the sorted dictionary keys
	keys []string
}

func NewHandler(runner Runner, keys []string) *Handler {
	return &Handler{runner: runner, keys: keys}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Gloss orders annotated tokens into gloss without resolving them.
func (h *Handler) Gloss(c *gin.Context) {
	ctx := c.Request.Context()

	var req GlossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seq, err := gloss.Order(req.Tokens)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, &GlossResponse{Gloss: seq.Text(), Tokens: seq.Tokens(), Sequence: seq})
}

func (h *Handler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Source: logger.Ptr("gloss")})
	res, err := h.runner.RunGloss(ctx, req.Gloss)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ToResolveResponse(res))
}

// Timeline runs the whole pipeline. The response is the JSON result, or the
// msgpack timeline alone when the client accepts application/x-msgpack.
func (h *Handler) Timeline(c *gin.Context) {
	ctx := c.Request.Context()

	var req TimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.inputs() != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of tokens, text or gloss is required"})
		return
	}

	var (
		res pipeline.Result
		err error
	)

	switch {
	case req.Tokens != nil:
		ctx = logger.WithLogFields(ctx, logger.LogFields{Source: logger.Ptr("tokens")})
		res, err = h.runner.RunTokens(ctx, req.Tokens)
	case req.Text != nil:
		ctx = logger.WithLogFields(ctx, logger.LogFields{Source: logger.Ptr("text")})
		res, err = h.runner.Run(ctx, *req.Text)
	default:
		ctx = logger.WithLogFields(ctx, logger.LogFields{Source: logger.Ptr("gloss")})
		res, err = h.runner.RunGloss(ctx, *req.Gloss)
	}

	if err != nil {
		h.fail(c, err)
		return
	}

	if c.NegotiateFormat(gin.MIMEJSON, MIMEMsgpack) == MIMEMsgpack {
		c.Header("Content-Type", MIMEMsgpack)
		c.Header("X-Gloss", res.Text)
		c.Status(http.StatusOK)
		if err := render.NewMsgpackRenderer(c.Writer).Render(res.Timeline); err != nil {
			slog.ErrorContext(ctx, "failed to write msgpack timeline", "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// Keys lists the dictionary keys, optionally filtered by a prefix.
func (h *Handler) Keys(c *gin.Context) {
	prefix := strings.ToUpper(c.Query("prefix"))

	keys := []string{}
	for _, k := range h.keys {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}

	c.JSON(http.StatusOK, &KeysResponse{Keys: keys})
}

func (h *Handler) fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	status := StatusFor(err)

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "pipeline failed", "error", err)
	} else {
		slog.WarnContext(ctx, "pipeline rejected request", "error", err)
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// StatusFor maps pipeline errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, sent.ErrMalformedToken):
		return http.StatusUnprocessableEntity
	case errors.Is(err, annotate.ErrAnnotator):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrNoAnnotator):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}
