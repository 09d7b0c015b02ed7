// Package orchestrator is the client side of zpl2pdf: a state machine that
// takes ZPL from an edit buffer, submits it for conversion, fetches the
// resulting PDF through the proxy and owns the blob holding it.
//
// States move input -> loading -> preview|error and back to input on reset.
// Every blocking call captures a generation number before it releases the
// lock and drops its result if the number changed while it was waiting.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/devadigapratham/zpl2pdf/blob"
	"github.com/devadigapratham/zpl2pdf/i18n"
)

// DownloadName is the file name offered for downloads
const DownloadName = "label.pdf"

// Orchestrator drives one client session
type Orchestrator struct {
	mu sync.Mutex

	api    API
	blobs  *blob.Store
	tr     *i18n.Translator
	logger *slog.Logger

	content string
	state   State
	pdfURL  string
	fields  map[string]any
	errMsg  string
	preview PreviewStatus
	handle  *blob.Handle
	gen     uint64
	closed  bool
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithTranslator sets the locale used for fallback messages
func WithTranslator(tr *i18n.Translator) Option {
	return func(o *Orchestrator) { o.tr = tr }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New creates an Orchestrator in StateInput
func New(api API, blobs *blob.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:     api,
		blobs:   blobs,
		state:   StateInput,
		preview: PreviewIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.blobs == nil {
		o.blobs = blob.NewStore()
	}
	if o.tr == nil {
		o.tr = i18n.New(i18n.DefaultLocale)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Snapshot is a consistent view of the orchestrator
type Snapshot struct {
	State        State
	Content      string
	PDFURL       string
	ErrorMessage string
	Preview      PreviewView
}

// PreviewView describes what the preview area shows
type PreviewView struct {
	Status PreviewStatus
	// BlobURL and Size are set when Status is PreviewReady
	BlobURL string
	Size    int
	// DirectURL and Message are set when Status is PreviewFailed
	DirectURL string
	Message   string
}

// Snapshot returns the current state
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	return Snapshot{
		State:        o.state,
		Content:      o.content,
		PDFURL:       o.pdfURL,
		ErrorMessage: o.errMsg,
		Preview:      o.previewView(),
	}
}

// State returns the current top-level state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// PDFURL returns the stored PDF reference
func (o *Orchestrator) PDFURL() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pdfURL
}

// Fields returns a copy of the passthrough fields of the last conversion
func (o *Orchestrator) Fields() map[string]any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.fields)
}

// ErrorMessage returns the message shown in StateError
func (o *Orchestrator) ErrorMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMsg
}

// Submit converts the buffer. It is refused with ErrSubmitDisabled while the
// buffer is blank. Otherwise the orchestrator moves to StateLoading and then
// to StatePreview or StateError; a conversion error is also returned.
//
// Entering StatePreview leaves the preview in PreviewIdle, meaning the fetch
// is pending. Drivers call LoadPreview right after a successful Submit.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if err := ValidateTransition(o.state, StateLoading); err != nil {
		o.mu.Unlock()
		return err
	}
	if strings.TrimSpace(o.content) == "" {
		o.mu.Unlock()
		return ErrSubmitDisabled
	}

	o.state = StateLoading
	o.errMsg = ""
	o.gen++
	token := o.gen
	content := o.content
	o.mu.Unlock()

	conv, err := o.api.Convert(ctx, content)

	o.mu.Lock()
	defer o.mu.Unlock()

	if token != o.gen {
		o.logger.Debug("discarding stale conversion result")
		return nil
	}

	if err == nil && conv.PDFURL == "" {
		err = errors.New("conversion response has no pdfUrl")
		o.fail(o.tr.T(i18n.MsgUnknownError))
		return err
	}
	if err != nil {
		o.fail(o.conversionMessage(err))
		o.logger.Warn("conversion failed", "error", err)
		return err
	}

	o.state = StatePreview
	o.setPDFURL(conv.PDFURL)
	o.fields = conv.Fields
	o.preview = PreviewIdle
	return nil
}

// LoadPreview fetches the PDF through the proxy and wraps it in a blob. A
// failure leaves the orchestrator in StatePreview with a failed preview that
// links to the PDF directly. A result that arrives after a reset, a close or
// a newer LoadPreview is discarded.
func (o *Orchestrator) LoadPreview(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.state != StatePreview {
		o.mu.Unlock()
		return fmt.Errorf("%w: preview requires state %s, have %s", ErrInvalidTransition, StatePreview, o.state)
	}

	o.gen++
	token := o.gen
	pdfURL := o.pdfURL
	o.preview = PreviewLoading
	o.mu.Unlock()

	data, err := o.api.FetchPDF(ctx, pdfURL)

	o.mu.Lock()
	defer o.mu.Unlock()

	if token != o.gen || o.pdfURL != pdfURL {
		o.logger.Debug("discarding stale preview", "pdf_url", pdfURL)
		return nil
	}

	if err != nil {
		o.preview = PreviewFailed
		o.logger.Warn("preview fetch failed", "error", err)
		return err
	}

	o.releaseBlob()
	o.handle = o.blobs.Create(data)
	o.preview = PreviewReady
	return nil
}

// Preview returns the preview area state
func (o *Orchestrator) Preview() PreviewView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.previewView()
}

// OpenURL returns the blob reference for opening the PDF in a new tab
func (o *Orchestrator) OpenURL() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.handle == nil {
		return "", ErrNoBlob
	}
	return o.handle.URL(), nil
}

// Download writes the loaded PDF to w
func (o *Orchestrator) Download(w io.Writer) (int64, error) {
	o.mu.Lock()
	h := o.handle
	o.mu.Unlock()

	if h == nil {
		return 0, ErrNoBlob
	}
	// A reset racing with the copy surfaces as blob.ErrRevoked
	return h.WriteTo(w)
}

// SaveFile writes the loaded PDF to path
func (o *Orchestrator) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := o.Download(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Reset returns to StateInput from StatePreview or StateError, dropping the
// PDF reference, the blob and the error message. Resetting in StateInput does
// nothing.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.state == StateInput {
		return nil
	}
	if err := ValidateTransition(o.state, StateInput); err != nil {
		return err
	}

	o.gen++
	o.state = StateInput
	o.setPDFURL("")
	o.fields = nil
	o.errMsg = ""
	o.preview = PreviewIdle
	return nil
}

// Close releases the blob and invalidates in-flight calls. The orchestrator
// refuses further actions. Close is idempotent.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	o.gen++
	o.releaseBlob()
}

// setPDFURL stores u and drops the blob of a previous, different URL
func (o *Orchestrator) setPDFURL(u string) {
	if u != o.pdfURL {
		o.releaseBlob()
	}
	o.pdfURL = u
}

func (o *Orchestrator) releaseBlob() {
	if o.handle == nil {
		return
	}
	o.handle.Release()
	o.handle = nil
}

func (o *Orchestrator) fail(msg string) {
	o.state = StateError
	o.errMsg = msg
}

func (o *Orchestrator) conversionMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return o.tr.T(i18n.MsgConvertFallback)
}

func (o *Orchestrator) previewView() PreviewView {
	v := PreviewView{Status: o.preview}
	switch o.preview {
	case PreviewReady:
		if o.handle != nil {
			v.BlobURL = o.handle.URL()
			v.Size = o.handle.Size()
		}
	case PreviewFailed:
		v.DirectURL = o.pdfURL
		v.Message = o.tr.T(i18n.MsgPreviewUnavailable)
	}
	return v
}
