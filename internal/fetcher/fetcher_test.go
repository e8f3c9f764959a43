package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jacksonhblau/patent-detector/internal/config"
	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, handler http.Handler) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := New(&config.FetcherConfig{
		VerifyTimeout: 2 * time.Second,
		FetchTimeout:  5 * time.Second,
		UserAgent:     "patent-detector-test/1.0",
		MaxBodyBytes:  1 << 20,
		ReaderBaseURL: srv.URL + "/reader",
	})
	return f, srv
}

func TestFetchDocument_PDFGoesDirect(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake body")
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/datasheet.pdf", r.URL.Path)
		assert.Equal(t, "patent-detector-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))

	doc, err := f.FetchDocument(context.Background(), srv.URL+"/files/datasheet.pdf")
	require.NoError(t, err)
	assert.Equal(t, pdf, doc.Body)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.False(t, doc.IsText)
}

func TestFetchDocument_PageGoesThroughReader(t *testing.T) {
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/reader/"),
			"page URLs must be routed through the reader, got %s", r.URL.Path)
		fmt.Fprint(w, "  Clean article text.  \n")
	}))

	doc, err := f.FetchDocument(context.Background(), srv.URL+"/about")
	require.NoError(t, err)
	assert.True(t, doc.IsText)
	assert.Equal(t, "Clean article text.", string(doc.Body))
	assert.Equal(t, "text/plain", doc.ContentType)
}

func TestFetchDocument_BodySizeCapped(t *testing.T) {
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	f.maxBytes = 100

	doc, err := f.FetchDocument(context.Background(), srv.URL+"/big.bin")
	require.NoError(t, err)
	assert.Len(t, doc.Body, 100)
}

func TestFetchDocument_NonSuccessStatusIsError(t *testing.T) {
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := f.FetchDocument(context.Background(), srv.URL+"/files/gone.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestVerifyURL(t *testing.T) {
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/live":
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	v, err := f.VerifyURL(context.Background(), srv.URL+"/live")
	require.NoError(t, err)
	assert.True(t, v.Live)
	assert.Equal(t, "text/html", v.ContentType)

	v, err = f.VerifyURL(context.Background(), srv.URL+"/dead")
	require.NoError(t, err)
	assert.False(t, v.Live)
	assert.Equal(t, http.StatusNotFound, v.StatusCode)
}

func TestVerifyURL_UnreachableHostIsNotAnError(t *testing.T) {
	f, _ := newTestFetcher(t, http.NotFoundHandler())

	v, err := f.VerifyURL(context.Background(), "http://127.0.0.1:1/nothing")
	require.NoError(t, err)
	assert.False(t, v.Live)
}

func TestCleanPage(t *testing.T) {
	page := `<html><head><style>body{color:red}</style><script>alert(1)</script></head>
	<body>
		<nav><a href="/">Home</a></nav>
		<header>Site header</header>
		<main><h1>Relay  Platform</h1><p>Low-latency   secure relays.</p></main>
		<footer>Copyright</footer>
	</body></html>`

	got := CleanPage(page, 0)
	assert.Equal(t, "Relay Platform Low-latency secure relays.", got)
}

func TestCleanPage_Truncates(t *testing.T) {
	got := CleanPage("<p>"+strings.Repeat("word ", 100)+"</p>", 20)
	assert.Len(t, []rune(got), 20)
}

func TestDiscoverProductURLs(t *testing.T) {
	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/files/relay-datasheet-spec.pdf">Relay datasheet</a>
			<a href="/products/relay">Product overview</a>
			<a href="/about">About us</a>
			<a href="https://other.example.com/products/thing">External product</a>
			<a href="#top">Back to top</a>
			<a href="/careers">Careers</a>
		</body></html>`)
	}))

	links, err := f.DiscoverProductURLs(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Len(t, links, 2)

	byURL := make(map[string]ProductLink)
	for _, l := range links {
		byURL[l.URL] = l
	}

	pdf, ok := byURL[srv.URL+"/files/relay-datasheet-spec.pdf"]
	require.True(t, ok, "pdf with technical filename should be discovered")
	assert.Equal(t, domain.DocTypePDF, pdf.Type)
	assert.Greater(t, pdf.Confidence, 0.0)

	page, ok := byURL[srv.URL+"/products/relay"]
	require.True(t, ok, "same-origin product path should be discovered")
	assert.Equal(t, domain.DocTypeProductPage, page.Type)

	_, ok = byURL["https://other.example.com/products/thing"]
	assert.False(t, ok, "cross-origin page links are ignored")
}

func TestDiscoverProductURLs_Caps(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<a href="/products/item-%d">Product %d</a>`, i, i)
	}
	b.WriteString("</body></html>")

	f, srv := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, b.String())
	}))

	links, err := f.DiscoverProductURLs(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Len(t, links, maxDiscoveredLinks)
}
