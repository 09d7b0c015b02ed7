package orchestrator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// AcceptedExtensions are the file types offered by the file picker
var AcceptedExtensions = []string{".zpl", ".txt", ".prn"}

// Accepted reports whether name has one of AcceptedExtensions
func Accepted(name string) bool {
	return slices.Contains(AcceptedExtensions, strings.ToLower(filepath.Ext(name)))
}

// DecodeText reads r as UTF-8. A leading byte order mark is dropped and
// invalid sequences become U+FFFD.
func DecodeText(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return string(b), nil
}

// SetContent replaces the edit buffer
func (o *Orchestrator) SetContent(content string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.inputEnabled(); err != nil {
		return err
	}
	o.content = content
	return nil
}

// Clear empties the edit buffer
func (o *Orchestrator) Clear() error {
	return o.SetContent("")
}

// LoadFile reads a file chosen through the file picker into the buffer,
// overwriting what was there
func (o *Orchestrator) LoadFile(path string) error {
	if !Accepted(path) {
		return fmt.Errorf("%w: %s (accepted: %s)", ErrUnsupportedFile, filepath.Base(path), strings.Join(AcceptedExtensions, ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return o.LoadReader(f)
}

// LoadReader reads dropped or pasted content into the buffer. Unlike
// LoadFile it does not look at the file type.
func (o *Orchestrator) LoadReader(r io.Reader) error {
	// Refuse early so a disabled input does not consume the reader
	o.mu.Lock()
	err := o.inputEnabled()
	o.mu.Unlock()
	if err != nil {
		return err
	}

	text, err := DecodeText(r)
	if err != nil {
		return err
	}
	return o.SetContent(text)
}

// Content returns the edit buffer
func (o *Orchestrator) Content() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.content
}

// CanSubmit reports whether the submit action is enabled
func (o *Orchestrator) CanSubmit() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.closed && o.state == StateInput && strings.TrimSpace(o.content) != ""
}

func (o *Orchestrator) inputEnabled() error {
	if o.closed {
		return ErrClosed
	}
	if o.state != StateInput {
		return ErrInputDisabled
	}
	return nil
}
