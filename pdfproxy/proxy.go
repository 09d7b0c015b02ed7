// Package pdfproxy fetches generated PDFs from the single allow-listed host so
// the browser can read them same-origin.
package pdfproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/devadigapratham/zpl2pdf/apperr"
	"github.com/devadigapratham/zpl2pdf/i18n"
)

// Response headers for proxied PDFs
const (
	ContentType        = "application/pdf"
	ContentDisposition = `inline; filename="label.pdf"`
	CacheControl       = "public, max-age=3600"
)

// maxRedirects matches net/http's default limit
const maxRedirects = 10

// MaxPDFBytes caps the size of a proxied PDF
const MaxPDFBytes = 32 << 20

// Fetcher retrieves PDFs from the allow-listed domain only
type Fetcher struct {
	domain   string
	client   *http.Client
	logger   *slog.Logger
	maxBytes int64
}

// New creates a Fetcher restricted to domain. An empty domain leaves the
// fetcher unconfigured. Redirects are followed only while they stay on domain.
func New(domain string, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Fetcher{
		domain:   strings.ToLower(domain),
		logger:   logger,
		maxBytes: MaxPDFBytes,
	}

	// Copy the client so the redirect policy does not leak into shared clients
	c := *client
	c.CheckRedirect = f.checkRedirect
	f.client = &c

	return f
}

// Configured reports whether an allow-listed domain is set
func (f *Fetcher) Configured() bool {
	return f.domain != ""
}

// Authorize parses rawURL and checks its host against the allow-list. It never
// touches the network.
func (f *Fetcher) Authorize(rawURL string) (*url.URL, error) {
	if !f.Configured() {
		return nil, apperr.New(apperr.NotConfigured, i18n.MsgProxyNotConfigured)
	}
	if rawURL == "" {
		return nil, apperr.New(apperr.InvalidInput, i18n.MsgURLRequired)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgFetchError, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgFetchError, fmt.Errorf("not an absolute URL: %q", rawURL))
	}

	if !f.allowed(u) {
		return nil, apperr.New(apperr.Forbidden, i18n.MsgInvalidDomain)
	}
	return u, nil
}

// Fetch authorizes rawURL and downloads the whole body
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := f.Authorize(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgFetchError, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgFetchError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		f.logger.WarnContext(ctx, "pdf host returned an error", "status", resp.StatusCode, "host", u.Host)
		return nil, apperr.Upstream(resp.StatusCode, i18n.MsgFetchFailed)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgFetchError, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, apperr.Wrap(apperr.Internal, i18n.MsgFetchError, fmt.Errorf("pdf exceeds %d bytes", f.maxBytes))
	}

	f.logger.DebugContext(ctx, "fetched pdf", "bytes", len(data), "host", u.Host)
	return data, nil
}

func (f *Fetcher) allowed(u *url.URL) bool {
	return strings.ToLower(u.Hostname()) == f.domain
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}
	if !f.allowed(req.URL) {
		return fmt.Errorf("redirect to %q leaves the allow-listed domain", req.URL.Hostname())
	}
	return nil
}
