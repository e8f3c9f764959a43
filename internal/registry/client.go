// Package registry is a client for the patent office's Open Data API. It
// covers three concerns: applicant search, identifier resolution for a known
// application, and best-effort retrieval of full-text XML through a ladder of
// bulk-data strategies.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jacksonhblau/patent-detector/internal/config"
	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	searchPath = "/api/v1/patent/applications/search"
	detailPath = "/api/v1/patent/applications/"
	bulkPath   = "/api/v1/datasets/products/"

	productGrant       = "PTGRXML"
	productApplication = "APPXML"

	// minXMLBytes gates whether a downloaded body counts as usable
	// full text rather than an error page or an empty shell.
	minXMLBytes = 100
)

// Client calls the patent registry API. Authentication is a per-request API
// key header; responses are decoded with ordered path lists so schema drift
// between API revisions does not break field extraction.
type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	http     *http.Client
}

// NewClient creates a registry client from configuration.
func NewClient(cfg *config.RegistryConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		pageSize: cfg.PageSize,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		},
	}
}

type searchRequest struct {
	Q          string           `json:"q"`
	Pagination searchPagination `json:"pagination"`
	Sort       []searchSort     `json:"sort"`
}

type searchPagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type searchSort struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// Search finds patents held by any of the given applicant names. For each
// name an applicant-filtered query runs first; if it returns nothing, a
// quoted free-text query runs and its rows are kept only when they actually
// mention the name in an applicant or inventor field. Results are deduplicated
// by application number across all names.
func (c *Client) Search(ctx context.Context, names []string) ([]domain.PatentRecord, error) {
	seen := make(map[string]bool)
	var records []domain.PatentRecord

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		rows, err := c.search(ctx, fmt.Sprintf("applicationMetaData.firstNamedApplicant:%q", name))
		if err != nil {
			return nil, fmt.Errorf("registry.Search: %w", err)
		}
		if len(rows) == 0 {
			rows, err = c.search(ctx, fmt.Sprintf("%q", name))
			if err != nil {
				return nil, fmt.Errorf("registry.Search: %w", err)
			}
			rows = filterByName(rows, name)
		}

		for _, rec := range rows {
			if rec.ApplicationNumber == "" || seen[rec.ApplicationNumber] {
				continue
			}
			seen[rec.ApplicationNumber] = true
			records = append(records, rec)
		}
	}
	return records, nil
}

func (c *Client) search(ctx context.Context, query string) ([]domain.PatentRecord, error) {
	body, err := json.Marshal(searchRequest{
		Q:          query,
		Pagination: searchPagination{Offset: 0, Limit: c.pageSize},
		Sort:       []searchSort{{Field: "applicationMetaData.filingDate", Order: "desc"}},
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The API signals "no matches" for filtered queries as 404 rather
	// than an empty result set.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var records []domain.PatentRecord
	for _, doc := range resultSet(raw) {
		records = append(records, decodeRecord(doc))
	}
	return records, nil
}

// ResolveIdentifiers fills in the grant and publication numbers for a record
// that was found with only an application number, via the detail endpoint.
// Fields already present are never overwritten.
func (c *Client) ResolveIdentifiers(ctx context.Context, rec domain.PatentRecord) (domain.PatentRecord, error) {
	if !rec.Resolvable() {
		return rec, nil
	}

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+detailPath+url.PathEscape(rec.ApplicationNumber), nil)
	if err != nil {
		return rec, fmt.Errorf("registry.ResolveIdentifiers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return rec, nil
	}
	if resp.StatusCode != http.StatusOK {
		return rec, fmt.Errorf("registry.ResolveIdentifiers: detail returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return rec, fmt.Errorf("registry.ResolveIdentifiers: %w", err)
	}

	doc := gjson.ParseBytes(raw)
	// Detail responses sometimes wrap the record in the same bag as search.
	if rows := resultSet(raw); len(rows) > 0 {
		doc = rows[0]
	}
	detail := decodeRecord(doc)

	merge := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	merge(&rec.PatentNumber, detail.PatentNumber)
	merge(&rec.PublicationNumber, detail.PublicationNumber)
	merge(&rec.Title, detail.Title)
	merge(&rec.FilingDate, detail.FilingDate)
	merge(&rec.GrantDate, detail.GrantDate)
	merge(&rec.Abstract, detail.Abstract)
	if len(rec.Applicants) == 0 {
		rec.Applicants = detail.Applicants
	}
	if len(rec.Inventors) == 0 {
		rec.Inventors = detail.Inventors
	}
	return rec, nil
}

// Product labels reported on a successful full-text fetch.
const (
	XMLProductGrant       = "grant"
	XMLProductApplication = "application"
)

// XMLResult is a successful full-text retrieval: the document body, the URL
// it was downloaded from, and which bulk-data dialect served it. Grant and
// application XML carry different root elements, so downstream parsing cares
// which one it got.
type XMLResult struct {
	XML     []byte
	URL     string
	Product string
}

// FetchXML tries to obtain full-text XML for a patent, walking a ladder of
// bulk-data strategies from most to least specific:
//
//  1. grant bulk product, searched by application number
//  2. application bulk product, searched by application number
//  3. grant bulk product, searched by patent number
//  4. a bulk-file URL constructed from the grant date
//
// Every strategy failure is logged and swallowed; exhausting the ladder
// returns (nil, nil). Full text is an enrichment, never a hard requirement.
func (c *Client) FetchXML(ctx context.Context, applicationNumber, patentNumber string) (*XMLResult, error) {
	type strategy struct {
		name    string
		product string
		run     func(context.Context) ([]byte, string, error)
	}

	strategies := []strategy{
		{"grant product by application number", XMLProductGrant, func(ctx context.Context) ([]byte, string, error) {
			return c.bulkSearch(ctx, productGrant, "applicationNumberText:"+applicationNumber)
		}},
		{"application product by application number", XMLProductApplication, func(ctx context.Context) ([]byte, string, error) {
			return c.bulkSearch(ctx, productApplication, "applicationNumberText:"+applicationNumber)
		}},
		{"grant product by patent number", XMLProductGrant, func(ctx context.Context) ([]byte, string, error) {
			if patentNumber == "" {
				return nil, "", fmt.Errorf("no patent number")
			}
			return c.bulkSearch(ctx, productGrant, "patentNumber:"+patentNumber)
		}},
		{"constructed bundle URL", XMLProductGrant, func(ctx context.Context) ([]byte, string, error) {
			return c.constructedBundle(ctx, applicationNumber)
		}},
	}

	for _, s := range strategies {
		xml, fileURL, err := s.run(ctx)
		if err != nil {
			log.Printf("registry.FetchXML: app %s: %s: %v", applicationNumber, s.name, err)
			continue
		}
		if usableXML(xml) {
			return &XMLResult{XML: xml, URL: fileURL, Product: s.product}, nil
		}
		log.Printf("registry.FetchXML: app %s: %s: body not usable xml", applicationNumber, s.name)
	}
	return nil, nil
}

// bulkSearch queries a bulk-data product's file listing and downloads the
// first file it advertises, reporting the URL it downloaded from.
func (c *Client) bulkSearch(ctx context.Context, product, query string) ([]byte, string, error) {
	u := fmt.Sprintf("%s%s%s/files?q=%s", c.baseURL, bulkPath, product, url.QueryEscape(query))
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("file search returned status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	var fileURL string
	for _, path := range []string{"fileDataBag", "files", "productFileBag.fileDataBag"} {
		v := gjson.GetBytes(raw, path)
		if v.Exists() && v.IsArray() {
			for _, f := range v.Array() {
				if dl := f.Get("fileDownloadURI").String(); dl != "" {
					fileURL = dl
					break
				}
				if dl := f.Get("fileDownloadUrl").String(); dl != "" {
					fileURL = dl
					break
				}
			}
		}
		if fileURL != "" {
			break
		}
	}
	if fileURL == "" {
		return nil, "", fmt.Errorf("no downloadable file in listing")
	}
	if strings.HasPrefix(fileURL, "/") {
		fileURL = c.baseURL + fileURL
	}
	body, err := c.download(ctx, fileURL)
	return body, fileURL, err
}

// constructedBundle is the last resort: look up the grant date through the
// detail endpoint and derive the daily bundle path from it.
func (c *Client) constructedBundle(ctx context.Context, applicationNumber string) ([]byte, string, error) {
	rec, err := c.ResolveIdentifiers(ctx, domain.PatentRecord{ApplicationNumber: applicationNumber})
	if err != nil {
		return nil, "", err
	}
	if len(rec.GrantDate) < 10 {
		return nil, "", fmt.Errorf("no grant date to construct bundle path from")
	}
	// Grant dates arrive as YYYY-MM-DD; the bundle id is ipg + YYMMDD.
	year := rec.GrantDate[:4]
	bundle := "ipg" + rec.GrantDate[2:4] + rec.GrantDate[5:7] + rec.GrantDate[8:10]
	u := fmt.Sprintf("%s%s%s/files/%s/%s.xml", c.baseURL, bulkPath, productGrant, year, bundle)
	body, err := c.download(ctx, u)
	return body, u, err
}

func (c *Client) download(ctx context.Context, fileURL string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func decodeRecord(doc gjson.Result) domain.PatentRecord {
	return domain.PatentRecord{
		ApplicationNumber: digitsOnly(firstScalar(doc, "applicationNumber")),
		PatentNumber:      firstScalar(doc, "patentNumber"),
		PublicationNumber: firstScalar(doc, "publicationNumber"),
		Title:             firstScalar(doc, "title"),
		FilingDate:        firstScalar(doc, "filingDate"),
		GrantDate:         firstScalar(doc, "grantDate"),
		Abstract:          firstScalar(doc, "abstract"),
		Applicants:        firstList(doc, "applicants"),
		Inventors:         firstList(doc, "inventors"),
	}
}

// filterByName keeps rows whose applicant or inventor names share at least
// one significant word with the searched name. Free-text search matches on
// any field, so unfiltered rows routinely belong to unrelated parties.
func filterByName(rows []domain.PatentRecord, name string) []domain.PatentRecord {
	words := significantWords(name)
	if len(words) == 0 {
		return rows
	}
	var kept []domain.PatentRecord
	for _, rec := range rows {
		haystack := strings.ToLower(strings.Join(append(rec.Applicants, rec.Inventors...), " "))
		for _, w := range words {
			if strings.Contains(haystack, w) {
				kept = append(kept, rec)
				break
			}
		}
	}
	return kept
}

func significantWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		w = strings.Trim(w, ".,")
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func usableXML(body []byte) bool {
	return len(body) > minXMLBytes && bytes.ContainsRune(body, '<')
}
