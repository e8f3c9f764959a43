package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/jacksonhblau/patent-detector/internal/domain"
	"golang.org/x/net/html"
)

// maxDiscoveredLinks bounds how many product links a single site crawl may
// yield before downstream verification fans out.
const maxDiscoveredLinks = 10

// ProductLink is a candidate product document discovered on a company site.
// Confidence is the fraction of classifier keywords the link matched; it is a
// heuristic score, not a probability.
type ProductLink struct {
	URL        string
	Name       string
	Type       domain.DocumentType
	Confidence float64
}

// pdfKeywords classify a PDF by filename as technical product literature.
var pdfKeywords = []string{"spec", "datasheet", "whitepaper", "technical", "manual", "guide"}

// anchorKeywords classify a same-origin page link by its anchor text.
var anchorKeywords = []string{"product", "specification", "technical", "documentation"}

// pathKeywords classify a same-origin page link by its path segments.
var pathKeywords = []string{"/products/", "/docs/", "/specifications/"}

// DiscoverProductURLs fetches a company site and extracts links that look
// like product literature: PDF hrefs with technical filenames, and
// same-origin page links whose anchor text or path suggests product
// documentation. Results are deduplicated by URL, ordered by confidence, and
// capped.
func (f *Fetcher) DiscoverProductURLs(ctx context.Context, siteURL string) ([]ProductLink, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("fetcher.DiscoverProductURLs: parse %q: %w", siteURL, err)
	}

	doc, err := f.fetchRaw(ctx, siteURL)
	if err != nil {
		return nil, fmt.Errorf("fetcher.DiscoverProductURLs: %w", err)
	}

	root, err := html.Parse(strings.NewReader(string(doc.Body)))
	if err != nil {
		return nil, fmt.Errorf("fetcher.DiscoverProductURLs: parse html: %w", err)
	}

	seen := make(map[string]bool)
	var links []ProductLink

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := classifyAnchor(base, n); ok && !seen[link.URL] {
				seen[link.URL] = true
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Confidence > links[j].Confidence
	})
	if len(links) > maxDiscoveredLinks {
		links = links[:maxDiscoveredLinks]
	}
	return links, nil
}

func classifyAnchor(base *url.URL, n *html.Node) (ProductLink, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ProductLink{}, false
	}

	resolved, err := base.Parse(href)
	if err != nil || (resolved.Scheme != "http" && resolved.Scheme != "https") {
		return ProductLink{}, false
	}

	text := collapse(anchorText(n))

	if pdfURL(resolved.String()) {
		conf := keywordConfidence(strings.ToLower(resolved.Path), pdfKeywords)
		if conf == 0 {
			return ProductLink{}, false
		}
		return ProductLink{
			URL:        resolved.String(),
			Name:       linkName(text, resolved),
			Type:       domain.DocTypePDF,
			Confidence: conf,
		}, true
	}

	// Page links are only interesting on the company's own site.
	if !strings.EqualFold(resolved.Host, base.Host) {
		return ProductLink{}, false
	}

	haystack := strings.ToLower(text)
	conf := keywordConfidence(haystack, anchorKeywords)
	if pathConf := keywordConfidence(strings.ToLower(resolved.Path)+"/", pathKeywords); pathConf > conf {
		conf = pathConf
	}
	if conf == 0 {
		return ProductLink{}, false
	}
	return ProductLink{
		URL:        resolved.String(),
		Name:       linkName(text, resolved),
		Type:       domain.DocTypeProductPage,
		Confidence: conf,
	}, true
}

// keywordConfidence is the fraction of keywords present in the haystack.
func keywordConfidence(haystack string, keywords []string) float64 {
	var hits int
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return float64(hits) / float64(len(keywords))
}

func anchorText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func linkName(text string, u *url.URL) string {
	if text != "" {
		return text
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}
