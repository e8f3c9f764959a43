// Package fetcher retrieves competitor documents from the web: raw PDF bytes,
// reader-cleaned page text, liveness checks, and product-link discovery on
// company sites.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/jacksonhblau/patent-detector/internal/config"
)

// Fetcher downloads documents with a bounded redirect chain and a body size
// cap. HTML-like URLs are routed through a reader service that returns the
// page as clean text; everything else is fetched directly.
type Fetcher struct {
	httpClient    *http.Client
	verifyClient  *http.Client
	userAgent     string
	maxBytes      int64
	readerBaseURL string
}

// New creates a Fetcher from configuration.
func New(cfg *config.FetcherConfig) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		verifyClient: &http.Client{
			Timeout: cfg.VerifyTimeout,
		},
		userAgent:     cfg.UserAgent,
		maxBytes:      cfg.MaxBodyBytes,
		readerBaseURL: strings.TrimRight(cfg.ReaderBaseURL, "/"),
	}
}

// Document is a fetched document plus enough metadata to persist it.
type Document struct {
	Body        []byte
	ContentType string
	FinalURL    string
	// IsText is true when the body came back through the reader service
	// and is already clean text rather than raw bytes.
	IsText bool
}

// Verification is the result of a liveness probe.
type Verification struct {
	Live        bool
	StatusCode  int
	ContentType string
}

// FetchDocument retrieves the document behind a URL. PDFs and unrecognized
// extensions are fetched directly; HTML pages and extensionless URLs go
// through the reader service so the result is text, not markup.
func (f *Fetcher) FetchDocument(ctx context.Context, rawURL string) (*Document, error) {
	if isPageURL(rawURL) {
		text, err := f.FetchText(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return &Document{
			Body:        []byte(text),
			ContentType: "text/plain",
			FinalURL:    rawURL,
			IsText:      true,
		}, nil
	}
	return f.fetchRaw(ctx, rawURL)
}

// FetchText fetches a page as clean text via the reader service.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	doc, err := f.fetchRaw(ctx, f.readerBaseURL+"/"+rawURL)
	if err != nil {
		return "", fmt.Errorf("fetcher.FetchText: %w", err)
	}
	return strings.TrimSpace(string(doc.Body)), nil
}

func (f *Fetcher) fetchRaw(ctx context.Context, rawURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetcher: unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetcher: read body: %w", err)
	}

	return &Document{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// VerifyURL probes a URL with a HEAD request on a short timeout. A dead or
// slow URL is reported, not treated as an error; only request construction
// fails hard.
func (f *Fetcher) VerifyURL(ctx context.Context, rawURL string) (*Verification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher.VerifyURL: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.verifyClient.Do(req)
	if err != nil {
		return &Verification{Live: false}, nil
	}
	defer resp.Body.Close()

	return &Verification{
		Live:        resp.StatusCode >= 200 && resp.StatusCode < 400,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// isPageURL reports whether a URL should be read as a page rather than
// downloaded as a file. Pages are .html, .htm, and extensionless paths.
func isPageURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case "", ".html", ".htm":
		return true
	case ".pdf":
		return false
	default:
		return false
	}
}

// pdfURL reports whether a URL points at a PDF by extension.
func pdfURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".pdf")
}
