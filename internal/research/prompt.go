package research

import (
	"fmt"
	"strings"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

// buildProfilePrompt returns the web-research prompt for a competitor.
func buildProfilePrompt(name, website string) string {
	hint := ""
	if website != "" {
		hint = fmt.Sprintf("\nTheir website is believed to be %s.", website)
	}
	return fmt.Sprintf(`You are a competitive intelligence researcher. Research the company %q using web search.%s

Identify:
- The official registered company name and any aliases or former names it operates under.
- The company website.
- A concise description of what the company does.
- The technologies the company builds on (protocols, platforms, hardware categories).
- Between 3 and 8 of their current products or services. For each, give the product name, the URL of its page on the company site, and a one-sentence description.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

The object must follow this schema:
{
  "official_name": "",
  "aliases": [""],
  "website": "",
  "description": "",
  "tech_stack": [""],
  "products": [
    {"name": "", "url": "", "description": ""}
  ]
}`, name, hint)
}

// buildScoringPrompt returns the infringement-scoring prompt. The portfolio
// summary and the gathered evidence are embedded verbatim; the model must not
// search.
func buildScoringPrompt(competitorName, portfolioSummary, evidence string, patents []domain.Patent) string {
	var patentList strings.Builder
	for _, p := range patents {
		fmt.Fprintf(&patentList, "- %s (application %s", p.Title, p.ApplicationNumber)
		if p.PatentNumber != "" {
			fmt.Fprintf(&patentList, ", patent %s", p.PatentNumber)
		}
		patentList.WriteString(")")
		if p.Abstract != "" {
			fmt.Fprintf(&patentList, ": %s", p.Abstract)
		}
		patentList.WriteString("\n")
	}

	return fmt.Sprintf(`You are a patent litigation analyst. Assess how likely the company %q is to be infringing the patent portfolio described below, and how likely a settlement would be if the portfolio owner asserted its patents.

PORTFOLIO OWNER'S SUMMARY:
%s

PORTFOLIO PATENTS:
%s
EVIDENCE GATHERED ABOUT THE COMPANY:
%s

Score each of the company's products for infringement probability on a 0-100 scale using these bands:
- 0-20: no plausible overlap with any portfolio claim
- 21-40: superficial similarity, no claim element mapping
- 41-60: partial overlap with at least one independent claim
- 61-80: most elements of an independent claim plausibly present
- 81-100: strong element-by-element correspondence to one or more claims

Also score the overall probability (0-100) that the company would settle rather than litigate, considering company size, litigation history, and the strength of the overlap. Classify the overall risk the company poses to the portfolio owner as "High", "Medium", or "Low".

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object.

The object must follow this schema:
{
  "settlement_probability": 0,
  "company_risk": "Medium",
  "settlement_factors": [
    {"factor": "", "impact": "positive|negative|neutral", "detail": ""}
  ],
  "products": [
    {"name": "", "infringement_probability": 0, "relevant_patents": [""], "reasoning": ""}
  ]
}`, competitorName, portfolioSummary, patentList.String(), evidence)
}
