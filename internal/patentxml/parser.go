// Package patentxml extracts structured fields from raw USPTO patent XML.
// The registry serves two dialects (granted patents and published
// applications) that use different element names for the same concepts, so
// every field is resolved against an ordered vocabulary of patterns; the
// first match with enough cleaned content wins. Parsing is pure and
// deterministic: the same input always yields the same output, and unmatched
// fields come back empty rather than as errors.
package patentxml

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// ParsedPatent is the read-only projection of one patent XML document.
type ParsedPatent struct {
	Title             string
	Abstract          string
	Claims            []ParsedClaim
	Description       string
	Inventors         []string
	Assignee          string
	FilingDate        string
	ApplicationNumber string
	PatentNumber      string
}

// ParsedClaim carries one claim with its heuristic dependency classification.
// The classification has no ground truth: claim text can mention "claim" in
// non-structural ways, so Confidence qualifies the label.
type ParsedClaim struct {
	Number     int
	Type       domain.ClaimType
	Text       string
	Confidence float64
}

// fieldPattern is one entry in a field's ordered vocabulary.
type fieldPattern struct {
	re     *regexp.Regexp
	minLen int
}

// Vocabularies are data, not branches: supporting a new upstream dialect is
// one more entry in a list.
var (
	titlePatterns = []fieldPattern{
		{re: regexp.MustCompile(`(?s)<invention-title[^>]*>(.*?)</invention-title>`), minLen: 1},
		{re: regexp.MustCompile(`(?s)<title-of-invention[^>]*>(.*?)</title-of-invention>`), minLen: 1},
	}

	abstractPatterns = []fieldPattern{
		{re: regexp.MustCompile(`(?s)<abstract[^>]*>(.*?)</abstract>`), minLen: 10},
		{re: regexp.MustCompile(`(?s)<us-abstract[^>]*>(.*?)</us-abstract>`), minLen: 10},
		{re: regexp.MustCompile(`(?s)<subdoc-abstract[^>]*>(.*?)</subdoc-abstract>`), minLen: 10},
	}

	descriptionPatterns = []fieldPattern{
		{re: regexp.MustCompile(`(?s)<description[^>]*>(.*?)</description>`), minLen: 10},
		{re: regexp.MustCompile(`(?s)<detailed-description[^>]*>(.*?)</detailed-description>`), minLen: 10},
		{re: regexp.MustCompile(`(?s)<subdoc-description[^>]*>(.*?)</subdoc-description>`), minLen: 10},
	}

	claimElementRe   = regexp.MustCompile(`(?s)<claim\s+[^>]*id="(?:CLM-)?0*(\d+)"[^>]*>(.*?)</claim>`)
	claimsBlockRe    = regexp.MustCompile(`(?s)<claims[^>]*>(.*?)</claims>`)
	claimStartRe     = regexp.MustCompile(`(?m)^\s*(\d+)\s*\.\s+`)
	claimRefRe       = regexp.MustCompile(`<claim-ref\b`)
	claimTextRefRe   = regexp.MustCompile(`(?i)\b(?:according to|of|as (?:claimed|recited) in|in)\s+claims?\s+\d+`)
	bareClaimNumRe   = regexp.MustCompile(`(?i)\bclaims?\s+\d+\b`)
	inventorBlockRe  = regexp.MustCompile(`(?s)<inventor[ >](.*?)</inventor>`)
	firstNameRe      = regexp.MustCompile(`(?s)<first-name[^>]*>(.*?)</first-name>`)
	lastNameRe       = regexp.MustCompile(`(?s)<last-name[^>]*>(.*?)</last-name>`)
	orgnameRe        = regexp.MustCompile(`(?s)<assignees?[^>]*>.*?<orgname[^>]*>(.*?)</orgname>`)
	appRefRe         = regexp.MustCompile(`(?s)<application-reference[^>]*>(.*?)</application-reference>`)
	pubRefRe         = regexp.MustCompile(`(?s)<publication-reference[^>]*>(.*?)</publication-reference>`)
	docNumberRe      = regexp.MustCompile(`(?s)<doc-number[^>]*>(.*?)</doc-number>`)
	docDateRe        = regexp.MustCompile(`(?s)<date[^>]*>(.*?)</date>`)
	tagRe            = regexp.MustCompile(`<[^>]+>`)
	nonDigitRe       = regexp.MustCompile(`\D`)
)

// Parse extracts all fields from raw patent XML.
func Parse(xml string) *ParsedPatent {
	p := &ParsedPatent{
		Title:       firstMatch(xml, titlePatterns),
		Abstract:    Abstract(xml),
		Claims:      Claims(xml),
		Description: Description(xml),
		Inventors:   inventors(xml),
		Assignee:    assignee(xml),
	}
	if m := appRefRe.FindStringSubmatch(xml); m != nil {
		if d := docNumberRe.FindStringSubmatch(m[1]); d != nil {
			p.ApplicationNumber = nonDigitRe.ReplaceAllString(cleanText(d[1]), "")
		}
		if d := docDateRe.FindStringSubmatch(m[1]); d != nil {
			p.FilingDate = cleanText(d[1])
		}
	}
	if m := pubRefRe.FindStringSubmatch(xml); m != nil {
		if d := docNumberRe.FindStringSubmatch(m[1]); d != nil {
			p.PatentNumber = cleanText(d[1])
		}
	}
	return p
}

// Abstract returns the patent abstract, trying each known dialect in order.
func Abstract(xml string) string {
	return firstMatch(xml, abstractPatterns)
}

// Description returns the detailed description, trying each known dialect in order.
func Description(xml string) string {
	return firstMatch(xml, descriptionPatterns)
}

// Claims extracts individual claims. Individually tagged claim elements are
// preferred; when none are found, a bare <claims> block is split on numbered
// claim-start markers so a non-empty block always yields at least one claim.
func Claims(xml string) []ParsedClaim {
	var claims []ParsedClaim
	for _, m := range claimElementRe.FindAllStringSubmatch(xml, -1) {
		num, err := strconv.Atoi(m[1])
		if err != nil || num < 1 {
			continue
		}
		inner := m[2]
		text := cleanText(inner)
		if text == "" {
			continue
		}
		claimType, conf := classifyClaim(inner, text)
		claims = append(claims, ParsedClaim{Number: num, Type: claimType, Text: text, Confidence: conf})
	}
	if len(claims) > 0 {
		return claims
	}
	return claimsFromBlock(xml)
}

func claimsFromBlock(xml string) []ParsedClaim {
	m := claimsBlockRe.FindStringSubmatch(xml)
	if m == nil {
		return nil
	}
	block := cleanText(m[1])
	if block == "" {
		return nil
	}

	starts := claimStartRe.FindAllStringSubmatchIndex(m[1], -1)
	if len(starts) == 0 {
		// No recognizable markers: the whole block is one claim.
		return []ParsedClaim{{Number: 1, Type: domain.ClaimIndependent, Text: block, Confidence: 0.5}}
	}

	var claims []ParsedClaim
	for i, loc := range starts {
		end := len(m[1])
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		num, _ := strconv.Atoi(m[1][loc[2]:loc[3]])
		segment := m[1][loc[1]:end]
		text := cleanText(segment)
		if text == "" {
			continue
		}
		claimType, conf := classifyClaim(segment, text)
		claims = append(claims, ParsedClaim{Number: num, Type: claimType, Text: text, Confidence: conf})
	}
	if len(claims) == 0 {
		return []ParsedClaim{{Number: 1, Type: domain.ClaimIndependent, Text: block, Confidence: 0.5}}
	}
	return claims
}

// classifyClaim applies the dependency heuristic. An explicit cross-reference
// element is the strongest signal; a textual "claim N" reference is weaker;
// absence of both is called independent with moderate confidence.
func classifyClaim(rawInner, cleaned string) (domain.ClaimType, float64) {
	if claimRefRe.MatchString(rawInner) {
		return domain.ClaimDependent, 0.95
	}
	if claimTextRefRe.MatchString(cleaned) {
		return domain.ClaimDependent, 0.8
	}
	if bareClaimNumRe.MatchString(cleaned) {
		return domain.ClaimDependent, 0.6
	}
	return domain.ClaimIndependent, 0.7
}

func inventors(xml string) []string {
	var names []string
	for _, m := range inventorBlockRe.FindAllStringSubmatch(xml, -1) {
		var parts []string
		if f := firstNameRe.FindStringSubmatch(m[1]); f != nil {
			parts = append(parts, cleanText(f[1]))
		}
		if l := lastNameRe.FindStringSubmatch(m[1]); l != nil {
			parts = append(parts, cleanText(l[1]))
		}
		if name := strings.TrimSpace(strings.Join(parts, " ")); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func assignee(xml string) string {
	if m := orgnameRe.FindStringSubmatch(xml); m != nil {
		return cleanText(m[1])
	}
	return ""
}

func firstMatch(xml string, patterns []fieldPattern) string {
	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(xml); m != nil {
			text := cleanText(m[1])
			if len(text) >= p.minLen {
				return text
			}
		}
	}
	return ""
}

// cleanText strips tags, unescapes entities, and collapses whitespace.
func cleanText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
