// Package gateway forwards ZPL documents to the external conversion service
// and normalizes its answer.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devadigapratham/zpl2pdf/apperr"
	"github.com/devadigapratham/zpl2pdf/i18n"
)

// ContentType is sent with every conversion request
const ContentType = "text/plain"

var (
	errNullBody     = errors.New("converter returned a null body")
	errTrailingData = errors.New("converter returned data after the JSON object")
)

// Result is the upstream JSON object plus the pdfUrl alias of its url field.
// Fields other than url are opaque and passed through untouched.
type Result map[string]any

// PDFURL returns the pdfUrl field, or "" when it is absent or not a string
func (r Result) PDFURL() string {
	s, _ := r["pdfUrl"].(string)
	return s
}

// Gateway talks to the external converter
type Gateway struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a Gateway for endpoint. An empty endpoint leaves the gateway
// unconfigured and every conversion fails with apperr.NotConfigured.
func New(endpoint string, client *http.Client, logger *slog.Logger) *Gateway {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// Configured reports whether a converter endpoint is set
func (g *Gateway) Configured() bool {
	return g.endpoint != ""
}

// Convert sends zpl to the converter. The text is forwarded as received; the
// blank check only looks at its trimmed form. There is exactly one attempt.
func (g *Gateway) Convert(ctx context.Context, zpl string) (Result, error) {
	// Configuration is checked before anything touches the network
	if !g.Configured() {
		return nil, apperr.New(apperr.NotConfigured, i18n.MsgConverterNotConfigured)
	}

	if strings.TrimSpace(zpl) == "" {
		return nil, apperr.New(apperr.InvalidInput, i18n.MsgZPLRequired)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(zpl))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgInternalError, err)
	}
	req.Header.Set("Content-Type", ContentType)

	g.logger.DebugContext(ctx, "forwarding conversion", "bytes", len(zpl))

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgInternalError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		g.logger.WarnContext(ctx, "converter rejected document", "status", resp.StatusCode)
		return nil, apperr.Upstream(resp.StatusCode, i18n.MsgConversionFailed)
	}

	result, err := decodeResult(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgInternalError, err)
	}

	return result, nil
}

func decodeResult(r io.Reader) (Result, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errNullBody
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	// The client only ever reads pdfUrl
	if u, ok := data["url"]; ok {
		data["pdfUrl"] = u
	}
	return Result(data), nil
}
