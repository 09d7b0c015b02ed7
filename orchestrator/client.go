package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// API is the server surface the orchestrator drives
type API interface {
	Convert(ctx context.Context, zpl string) (*Conversion, error)
	FetchPDF(ctx context.Context, pdfURL string) ([]byte, error)
}

// Conversion is a successful /api/convert answer
type Conversion struct {
	PDFURL string
	Fields map[string]any
}

// RequestError is a non-success answer from the server. Message is the
// server's error text and may be empty.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// Client calls the conversion and proxy endpoints of a zpl2pdf server
type Client struct {
	baseURL string
	http    *http.Client
	locale  string
}

// NewClient creates a Client for the server at baseURL
func NewClient(baseURL string, httpClient *http.Client, locale string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		locale:  locale,
	}
}

// Convert posts zpl to /api/convert
func (c *Client) Convert(ctx context.Context, zpl string) (*Conversion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/convert", strings.NewReader(zpl))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	c.setLocale(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readRequestError(resp)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode conversion: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to decode conversion: unexpected data after the JSON object")
	}

	pdfURL, _ := fields["pdfUrl"].(string)
	return &Conversion{PDFURL: pdfURL, Fields: fields}, nil
}

// FetchPDF downloads pdfURL through /api/pdf-proxy
func (c *Client) FetchPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	endpoint := c.baseURL + "/api/pdf-proxy?url=" + url.QueryEscape(pdfURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setLocale(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readRequestError(resp)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) setLocale(req *http.Request) {
	if c.locale != "" {
		req.Header.Set("Accept-Language", c.locale)
	}
}

func readRequestError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	// A body that is not JSON leaves Message empty
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body)
	return &RequestError{Status: resp.StatusCode, Message: body.Error}
}
