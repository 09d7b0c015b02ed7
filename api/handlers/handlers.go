package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/devadigapratham/zpl2pdf/api/models"
	"github.com/devadigapratham/zpl2pdf/apperr"
	"github.com/devadigapratham/zpl2pdf/gateway"
	"github.com/devadigapratham/zpl2pdf/i18n"
	"github.com/devadigapratham/zpl2pdf/pdfproxy"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// DefaultMaxBodyBytes caps the ZPL accepted by /api/convert
const DefaultMaxBodyBytes = 8 << 20

// Handler represents the API handlers
type Handler struct {
	Gateway *gateway.Gateway
	Proxy   *pdfproxy.Fetcher
	Logger  *slog.Logger

	// MaxBodyBytes caps the request body of /api/convert
	MaxBodyBytes int64

	locale language.Tag
}

// NewHandler creates a new Handler. locale is used when the client sends no
// usable Accept-Language header.
func NewHandler(gw *gateway.Gateway, proxy *pdfproxy.Fetcher, locale language.Tag, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Gateway:      gw,
		Proxy:        proxy,
		Logger:       logger,
		MaxBodyBytes: DefaultMaxBodyBytes,
		locale:       locale,
	}
}

// RequestIDMiddleware tags every request with an ID, reusing the caller's
// X-Request-ID when present
func (h *Handler) RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware logs one line per request
func (h *Handler) LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		h.Logger.Log(c.Request.Context(), level, "request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration", time.Since(start),
		)
	}
}

// translator picks the message locale for this request
func (h *Handler) translator(c *gin.Context) *i18n.Translator {
	return i18n.New(i18n.Negotiate(c.GetHeader("Accept-Language"), h.locale))
}

// respondError converts err into the JSON error body. Causes are logged, never
// sent to the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	tr := h.translator(c)
	status := apperr.HTTPStatus(err)

	msg := tr.T(i18n.MsgInternalError)
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		msg = tr.T(e.Message)
	}

	if apperr.KindOf(err) == apperr.Internal {
		h.Logger.ErrorContext(c.Request.Context(), "request failed",
			"request_id", c.GetString(requestIDKey),
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg})
}
