package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devadigapratham/zpl2pdf/blob"
	"github.com/devadigapratham/zpl2pdf/logging"
)

const (
	sampleZPL = "^XA^FO50,50^A0N,50,50^FDTest^FS^XZ"
	samplePDF = "https://files.example/labels/1.pdf"
)

type fakeAPI struct {
	convert      func(ctx context.Context, zpl string) (*Conversion, error)
	fetch        func(ctx context.Context, pdfURL string) ([]byte, error)
	convertCalls int32
	fetchCalls   int32
}

func (f *fakeAPI) Convert(ctx context.Context, zpl string) (*Conversion, error) {
	atomic.AddInt32(&f.convertCalls, 1)
	if f.convert == nil {
		return &Conversion{PDFURL: samplePDF, Fields: map[string]any{"url": samplePDF, "pdfUrl": samplePDF}}, nil
	}
	return f.convert(ctx, zpl)
}

func (f *fakeAPI) FetchPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	atomic.AddInt32(&f.fetchCalls, 1)
	if f.fetch == nil {
		return []byte("%PDF-1.4 label"), nil
	}
	return f.fetch(ctx, pdfURL)
}

func newTestOrchestrator(api API) (*Orchestrator, *blob.Store) {
	store := blob.NewStore()
	return New(api, store, WithLogger(logging.Discard())), store
}

func TestSubmit_Success(t *testing.T) {
	api := &fakeAPI{}
	var sawLoading bool
	o, _ := newTestOrchestrator(api)
	api.convert = func(ctx context.Context, zpl string) (*Conversion, error) {
		sawLoading = o.State() == StateLoading
		assert.Equal(t, sampleZPL, zpl)
		return &Conversion{PDFURL: samplePDF, Fields: map[string]any{"url": samplePDF, "pdfUrl": samplePDF, "id": "42"}}, nil
	}

	require.NoError(t, o.SetContent(sampleZPL))
	assert.True(t, o.CanSubmit())
	require.NoError(t, o.Submit(context.Background()))

	assert.True(t, sawLoading)
	assert.Equal(t, StatePreview, o.State())
	assert.Equal(t, samplePDF, o.PDFURL())
	assert.Equal(t, "42", o.Fields()["id"])
	assert.Empty(t, o.ErrorMessage())
	assert.Equal(t, PreviewIdle, o.Preview().Status)
}

func TestFields_ReturnsCopy(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeAPI{})
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))

	fields := o.Fields()
	fields["pdfUrl"] = "https://evil.example/x.pdf"
	delete(fields, "url")

	assert.Equal(t, samplePDF, o.Fields()["pdfUrl"])
	assert.Equal(t, samplePDF, o.Fields()["url"])
}

func TestSnapshot(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeAPI{})
	require.NoError(t, o.SetContent(sampleZPL))

	snap := o.Snapshot()
	assert.Equal(t, StateInput, snap.State)
	assert.Equal(t, sampleZPL, snap.Content)
	assert.Equal(t, PreviewIdle, snap.Preview.Status)

	require.NoError(t, o.Submit(context.Background()))
	snap = o.Snapshot()
	assert.Equal(t, StatePreview, snap.State)
	assert.Equal(t, samplePDF, snap.PDFURL)
	// The fetch is pending until LoadPreview runs
	assert.Equal(t, PreviewIdle, snap.Preview.Status)

	require.NoError(t, o.LoadPreview(context.Background()))
	snap = o.Snapshot()
	assert.Equal(t, PreviewReady, snap.Preview.Status)
	assert.Equal(t, len("%PDF-1.4 label"), snap.Preview.Size)
	assert.Empty(t, snap.ErrorMessage)
}

func TestDownload_AfterResetHasNoBlob(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeAPI{})
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))
	require.NoError(t, o.LoadPreview(context.Background()))
	require.NoError(t, o.Reset())

	_, err := o.Download(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoBlob)
}

func TestSubmit_BlankIsDisabled(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t\r\n"} {
		api := &fakeAPI{}
		o, _ := newTestOrchestrator(api)
		require.NoError(t, o.SetContent(content))

		assert.False(t, o.CanSubmit())
		err := o.Submit(context.Background())
		assert.ErrorIs(t, err, ErrSubmitDisabled)
		assert.Equal(t, StateInput, o.State())
		assert.Equal(t, int32(0), atomic.LoadInt32(&api.convertCalls))
	}
}

func TestSubmit_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &RequestError{Status: http.StatusBadRequest, Message: "ZPL inválido"}, "ZPL inválido"},
		{"empty server message", &RequestError{Status: http.StatusBadRequest}, "Falha na conversão"},
		{"network failure", errors.New("connection refused"), "Falha na conversão"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{convert: func(context.Context, string) (*Conversion, error) {
				return nil, tt.err
			}}
			o, _ := newTestOrchestrator(api)
			require.NoError(t, o.SetContent(sampleZPL))

			err := o.Submit(context.Background())
			require.Error(t, err)
			assert.Equal(t, StateError, o.State())
			assert.Equal(t, tt.want, o.ErrorMessage())
			assert.Empty(t, o.PDFURL())
		})
	}
}

func TestSubmit_MissingPDFURL(t *testing.T) {
	api := &fakeAPI{convert: func(context.Context, string) (*Conversion, error) {
		return &Conversion{Fields: map[string]any{"status": "queued"}}, nil
	}}
	o, _ := newTestOrchestrator(api)
	require.NoError(t, o.SetContent(sampleZPL))

	require.Error(t, o.Submit(context.Background()))
	assert.Equal(t, StateError, o.State())
	assert.Equal(t, "Erro desconhecido. Tente novamente.", o.ErrorMessage())
}

func TestSubmit_OnlyFromInput(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeAPI{})
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))

	err := o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatePreview, o.State())
}

func TestReset_FromErrorClearsMessage(t *testing.T) {
	api := &fakeAPI{convert: func(context.Context, string) (*Conversion, error) {
		return nil, &RequestError{Status: http.StatusBadRequest, Message: "bad"}
	}}
	o, _ := newTestOrchestrator(api)
	require.NoError(t, o.SetContent(sampleZPL))
	require.Error(t, o.Submit(context.Background()))

	require.NoError(t, o.Reset())
	assert.Equal(t, StateInput, o.State())
	assert.Empty(t, o.ErrorMessage())
	// The buffer survives so the user can fix and retry
	assert.Equal(t, sampleZPL, o.Content())
}

func TestSubmit_ClearsPreviousError(t *testing.T) {
	fail := true
	api := &fakeAPI{}
	api.convert = func(context.Context, string) (*Conversion, error) {
		if fail {
			return nil, &RequestError{Status: http.StatusBadRequest, Message: "bad"}
		}
		return &Conversion{PDFURL: samplePDF}, nil
	}
	o, _ := newTestOrchestrator(api)
	require.NoError(t, o.SetContent(sampleZPL))
	require.Error(t, o.Submit(context.Background()))
	require.NoError(t, o.Reset())

	fail = false
	require.NoError(t, o.Submit(context.Background()))
	assert.Empty(t, o.ErrorMessage())
	assert.Equal(t, StatePreview, o.State())
}

func TestLoadPreview_Success(t *testing.T) {
	api := &fakeAPI{}
	o, store := newTestOrchestrator(api)
	api.fetch = func(_ context.Context, pdfURL string) ([]byte, error) {
		assert.Equal(t, samplePDF, pdfURL)
		assert.Equal(t, PreviewLoading, o.Preview().Status)
		return []byte("%PDF-1.4 label"), nil
	}

	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))
	require.NoError(t, o.LoadPreview(context.Background()))

	view := o.Preview()
	assert.Equal(t, PreviewReady, view.Status)
	assert.Contains(t, view.BlobURL, blob.Scheme)
	assert.Equal(t, len("%PDF-1.4 label"), view.Size)

	openURL, err := o.OpenURL()
	require.NoError(t, err)
	assert.Equal(t, view.BlobURL, openURL)

	var buf bytes.Buffer
	_, err = o.Download(&buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 label", buf.String())
	assert.Equal(t, 1, store.Len())
}

func TestLoadPreview_FailureStaysInPreview(t *testing.T) {
	api := &fakeAPI{fetch: func(context.Context, string) ([]byte, error) {
		return nil, &RequestError{Status: http.StatusNotFound, Message: "Falha ao buscar o PDF"}
	}}
	o, store := newTestOrchestrator(api)
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))

	require.Error(t, o.LoadPreview(context.Background()))

	assert.Equal(t, StatePreview, o.State())
	view := o.Preview()
	assert.Equal(t, PreviewFailed, view.Status)
	assert.Equal(t, samplePDF, view.DirectURL)
	assert.Equal(t, "Não foi possível carregar o preview do PDF.", view.Message)
	assert.Empty(t, view.BlobURL)
	assert.Equal(t, 0, store.Len())

	_, err := o.Download(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoBlob)

	// "New conversion" from the fallback
	require.NoError(t, o.Reset())
	assert.Equal(t, StateInput, o.State())
}

func TestLoadPreview_RequiresPreviewState(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeAPI{})
	err := o.LoadPreview(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReset_ReleasesBlobExactlyOnce(t *testing.T) {
	o, store := newTestOrchestrator(&fakeAPI{})
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))
	require.NoError(t, o.LoadPreview(context.Background()))
	require.Equal(t, 1, store.Len())

	require.NoError(t, o.Reset())
	require.NoError(t, o.Reset())

	stats := store.Stats()
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Revoked)
	assert.Equal(t, 0, stats.Live)
	assert.Equal(t, StateInput, o.State())
	assert.Empty(t, o.PDFURL())

	_, err := o.OpenURL()
	assert.ErrorIs(t, err, ErrNoBlob)
}

func TestLoadPreview_StaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{fetch: func(context.Context, string) ([]byte, error) {
		close(started)
		<-release
		return []byte("%PDF late"), nil
	}}
	o, store := newTestOrchestrator(api)
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))

	done := make(chan error, 1)
	go func() { done <- o.LoadPreview(context.Background()) }()

	<-started
	require.NoError(t, o.Reset())
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, StateInput, o.State())
	assert.Equal(t, PreviewIdle, o.Preview().Status)
	assert.Equal(t, 0, store.Stats().Created)
}

func TestLoadPreview_NewerCallWins(t *testing.T) {
	var n int32
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	api := &fakeAPI{fetch: func(context.Context, string) ([]byte, error) {
		if atomic.AddInt32(&n, 1) == 1 {
			close(firstStarted)
			<-release
			return []byte("first"), nil
		}
		return []byte("second"), nil
	}}
	o, store := newTestOrchestrator(api)
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))

	done := make(chan error, 1)
	go func() { done <- o.LoadPreview(context.Background()) }()
	<-firstStarted

	require.NoError(t, o.LoadPreview(context.Background()))
	close(release)
	require.NoError(t, <-done)

	var buf bytes.Buffer
	_, err := o.Download(&buf)
	require.NoError(t, err)
	assert.Equal(t, "second", buf.String())
	assert.Equal(t, 1, store.Len())
}

func TestSetPDFURL_ChangeReleasesBlob(t *testing.T) {
	o, store := newTestOrchestrator(&fakeAPI{})
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))
	require.NoError(t, o.LoadPreview(context.Background()))

	o.mu.Lock()
	o.setPDFURL(samplePDF)
	o.mu.Unlock()
	assert.Equal(t, 1, store.Len(), "same URL keeps the blob")

	o.mu.Lock()
	o.setPDFURL("https://files.example/labels/2.pdf")
	o.mu.Unlock()
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 1, store.Stats().Revoked)
}

func TestClose_ReleasesBlob(t *testing.T) {
	o, store := newTestOrchestrator(&fakeAPI{})
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))
	require.NoError(t, o.LoadPreview(context.Background()))

	o.Close()
	o.Close()

	assert.Equal(t, 1, store.Stats().Revoked)
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, o.Reset(), ErrClosed)
	assert.ErrorIs(t, o.Submit(context.Background()), ErrClosed)
	assert.False(t, o.CanSubmit())
}

func TestClose_DuringLoadingDiscardsConversion(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{convert: func(context.Context, string) (*Conversion, error) {
		close(started)
		<-release
		return &Conversion{PDFURL: samplePDF}, nil
	}}
	o, _ := newTestOrchestrator(api)
	require.NoError(t, o.SetContent(sampleZPL))

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background()) }()
	<-started
	o.Close()
	close(release)

	require.NoError(t, <-done)
	assert.Empty(t, o.PDFURL())
}

func TestReset_DuringLoadingRefused(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{convert: func(context.Context, string) (*Conversion, error) {
		close(started)
		<-release
		return &Conversion{PDFURL: samplePDF}, nil
	}}
	o, _ := newTestOrchestrator(api)
	require.NoError(t, o.SetContent(sampleZPL))

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background()) }()
	<-started

	assert.ErrorIs(t, o.Reset(), ErrInvalidTransition)
	assert.ErrorIs(t, o.SetContent("x"), ErrInputDisabled)
	assert.False(t, o.CanSubmit())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StatePreview, o.State())
}

func TestSaveFile(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeAPI{})
	require.NoError(t, o.SetContent(sampleZPL))
	require.NoError(t, o.Submit(context.Background()))

	path := filepath.Join(t.TempDir(), DownloadName)
	assert.ErrorIs(t, o.SaveFile(path), ErrNoBlob)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, o.LoadPreview(context.Background()))
	require.NoError(t, o.SaveFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 label", string(data))
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{StateInput, StateLoading, true},
		{StateLoading, StatePreview, true},
		{StateLoading, StateError, true},
		{StatePreview, StateInput, true},
		{StateError, StateInput, true},
		{StateInput, StatePreview, false},
		{StateLoading, StateInput, false},
		{StatePreview, StateLoading, false},
		{StateError, StateLoading, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}
