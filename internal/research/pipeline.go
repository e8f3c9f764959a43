// Package research runs the competitor research pipeline: profile the company
// with a web-search completion, gather product and patent evidence, then score
// the gathered evidence against the portfolio.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacksonhblau/patent-detector/internal/config"
	"github.com/jacksonhblau/patent-detector/internal/domain"
	"github.com/jacksonhblau/patent-detector/internal/fetcher"
	"github.com/jacksonhblau/patent-detector/internal/llm"
	"github.com/jacksonhblau/patent-detector/internal/patentxml"
	"github.com/jacksonhblau/patent-detector/internal/port"
	"github.com/jacksonhblau/patent-detector/internal/registry"
)

// RegistryClient is the slice of the patent registry the pipeline uses.
type RegistryClient interface {
	Search(ctx context.Context, names []string) ([]domain.PatentRecord, error)
	ResolveIdentifiers(ctx context.Context, rec domain.PatentRecord) (domain.PatentRecord, error)
	FetchXML(ctx context.Context, applicationNumber, patentNumber string) (*registry.XMLResult, error)
}

// DocFetcher is the slice of the document fetcher the pipeline uses.
type DocFetcher interface {
	VerifyURL(ctx context.Context, url string) (*fetcher.Verification, error)
	FetchText(ctx context.Context, url string) (string, error)
}

// Pipeline executes one research run for a competitor. Enrichment steps
// degrade on failure; only the profile completion and the final persistence
// are fatal.
type Pipeline struct {
	completer   port.Completer
	registry    RegistryClient
	fetcher     DocFetcher
	competitors port.CompetitorRepository
	documents   port.CompetitorDocumentRepository
	analyses    port.AnalysisRepository
	companies   port.CompanyRepository
	patents     port.PatentRepository
	cfg         config.ResearchConfig
}

// NewPipeline wires a research pipeline.
func NewPipeline(
	completer port.Completer,
	registry RegistryClient,
	docFetcher DocFetcher,
	competitors port.CompetitorRepository,
	documents port.CompetitorDocumentRepository,
	analyses port.AnalysisRepository,
	companies port.CompanyRepository,
	patents port.PatentRepository,
	cfg config.ResearchConfig,
) *Pipeline {
	return &Pipeline{
		completer:   completer,
		registry:    registry,
		fetcher:     docFetcher,
		competitors: competitors,
		documents:   documents,
		analyses:    analyses,
		companies:   companies,
		patents:     patents,
		cfg:         cfg,
	}
}

// Run researches one competitor end to end and returns the stored analysis.
func (p *Pipeline) Run(ctx context.Context, competitorID uuid.UUID) (*domain.Analysis, error) {
	competitor, err := p.competitors.GetByID(ctx, competitorID)
	if err != nil {
		return nil, fmt.Errorf("research.Run: %w", err)
	}
	company, err := p.companies.Get(ctx, competitor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("research.Run: %w", err)
	}

	profile, err := p.researchProfile(ctx, competitor)
	if err != nil {
		return nil, fmt.Errorf("research.Run: profile: %w", err)
	}
	p.applyProfile(ctx, competitor, profile)

	p.collectProductDocs(ctx, competitor, profile)
	p.collectPatentDocs(ctx, competitor, profile)

	docs, err := p.documents.ListByCompetitor(ctx, competitor.ID)
	if err != nil {
		return nil, fmt.Errorf("research.Run: %w", err)
	}
	evidence := buildEvidence(docs)

	patents, _, err := p.patents.ListByCompany(ctx, company.ID, 0, 100)
	if err != nil {
		return nil, fmt.Errorf("research.Run: %w", err)
	}

	result := p.score(ctx, competitor, company, evidence, patents, profile)

	analysis := assembleAnalysis(competitor.ID, result)
	if err := p.analyses.Upsert(ctx, analysis); err != nil {
		return nil, fmt.Errorf("research.Run: %w", err)
	}
	return analysis, nil
}

func (p *Pipeline) researchProfile(ctx context.Context, competitor *domain.Competitor) (*CompanyProfile, error) {
	text, err := p.completer.Complete(ctx, port.CompletionRequest{
		Prompt:       buildProfilePrompt(competitor.Name, competitor.Website),
		MaxTokens:    4096,
		UseWebSearch: true,
	})
	if err != nil {
		return nil, err
	}
	raw, err := llm.ExtractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("profile output: %w", err)
	}
	var profile CompanyProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("profile output: %w", err)
	}
	return &profile, nil
}

// applyProfile merges researched facts into the competitor row. Existing
// user-entered fields win; only gaps are filled. Failure to save the merge is
// logged, not fatal.
func (p *Pipeline) applyProfile(ctx context.Context, competitor *domain.Competitor, profile *CompanyProfile) {
	if competitor.Website == "" {
		competitor.Website = profile.Website
	}
	if competitor.Description == "" {
		competitor.Description = profile.Description
	}
	competitor.Aliases = mergeUnique(competitor.Aliases, profile.Aliases)
	competitor.TechStack = mergeUnique(competitor.TechStack, profile.TechStack)

	if err := p.competitors.Update(ctx, competitor); err != nil {
		log.Printf("research.applyProfile: competitor %s: %v", competitor.ID, err)
	}
}

func (p *Pipeline) collectProductDocs(ctx context.Context, competitor *domain.Competitor, profile *CompanyProfile) {
	products := profile.Products
	if len(products) > p.cfg.MaxProductLinks {
		products = products[:p.cfg.MaxProductLinks]
	}

	for _, product := range products {
		doc := domain.CompetitorDocument{
			CompetitorID:  competitor.ID,
			SourceURL:     product.URL,
			DocumentName:  product.Name,
			DocumentType:  domain.DocTypeProductService,
			ExtractedText: product.Description,
			Status:        domain.DocStatusAIResearched,
		}

		if product.URL != "" {
			v, err := p.fetcher.VerifyURL(ctx, product.URL)
			switch {
			case err != nil || !v.Live:
				doc.Status = domain.DocStatusFetchFailed
			case strings.Contains(v.ContentType, "pdf"):
				doc.DocumentType = domain.DocTypePDF
				doc.Status = domain.DocStatusVerified
			default:
				doc.DocumentType = domain.DocTypeProductPage
				doc.Status = domain.DocStatusVerified
				if text, err := p.fetcher.FetchText(ctx, product.URL); err == nil && text != "" {
					page := fetcher.CleanPage(text, p.cfg.PageTextCap)
					doc.ExtractedText = strings.TrimSpace(product.Description + "\n\n" + page)
				} else if err != nil {
					log.Printf("research.collectProductDocs: fetch %s: %v", product.URL, err)
				}
			}
		}

		if err := p.documents.Upsert(ctx, &doc); err != nil {
			log.Printf("research.collectProductDocs: persist %q: %v", product.Name, err)
		}
	}
}

func (p *Pipeline) collectPatentDocs(ctx context.Context, competitor *domain.Competitor, profile *CompanyProfile) {
	names := mergeUnique([]string{competitor.Name}, profile.Aliases)
	if profile.OfficialName != "" {
		names = mergeUnique(names, []string{profile.OfficialName})
	}

	records, err := p.registry.Search(ctx, names)
	if err != nil {
		log.Printf("research.collectPatentDocs: search: %v", err)
		return
	}
	if len(records) > p.cfg.MaxPatents {
		records = records[:p.cfg.MaxPatents]
	}

	for _, rec := range records {
		rec, err = p.registry.ResolveIdentifiers(ctx, rec)
		if err != nil {
			log.Printf("research.collectPatentDocs: resolve %s: %v", rec.ApplicationNumber, err)
		}

		doc := domain.CompetitorDocument{
			CompetitorID: competitor.ID,
			DocumentName: patentDocName(rec),
			DocumentType: domain.DocTypePatent,
			Status:       domain.DocStatusMetadataOnly,
			ExtractedText: strings.TrimSpace(fmt.Sprintf(
				"%s\nApplication: %s\nPatent: %s\nFiled: %s\n\n%s",
				rec.Title, rec.ApplicationNumber, rec.PatentNumber, rec.FilingDate, rec.Abstract)),
		}

		res, err := p.registry.FetchXML(ctx, rec.ApplicationNumber, rec.PatentNumber)
		if err != nil {
			log.Printf("research.collectPatentDocs: fetch xml %s: %v", rec.ApplicationNumber, err)
		}
		if res != nil && len(res.XML) > 0 {
			parsed := patentxml.Parse(string(res.XML))
			if parsed.Abstract != "" || len(parsed.Claims) > 0 {
				doc.Status = domain.DocStatusXMLAvailable
				doc.SourceURL = res.URL
				doc.ExtractedText = patentEvidenceText(rec, res.Product, parsed)
			}
		}

		if err := p.documents.Upsert(ctx, &doc); err != nil {
			log.Printf("research.collectPatentDocs: persist %s: %v", rec.ApplicationNumber, err)
		}
	}
}

// score runs the scoring completion and decodes it. Bad model output falls
// back to a neutral assessment instead of failing the run.
func (p *Pipeline) score(ctx context.Context, competitor *domain.Competitor, company *domain.Company, evidence string, patents []domain.Patent, profile *CompanyProfile) *scoringResult {
	text, err := p.completer.Complete(ctx, port.CompletionRequest{
		Prompt:    buildScoringPrompt(competitor.Name, company.PortfolioSummary, evidence, patents),
		MaxTokens: 8192,
	})
	if err != nil {
		log.Printf("research.score: competitor %s: %v", competitor.ID, err)
		return neutralScoring(profile)
	}

	raw, err := llm.ExtractJSON(text)
	if err != nil {
		log.Printf("research.score: competitor %s: %v", competitor.ID, err)
		return neutralScoring(profile)
	}
	var result scoringResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("research.score: competitor %s: decode: %v", competitor.ID, err)
		return neutralScoring(profile)
	}
	return &result
}

// neutralScoring is the conservative default used when the model's scoring
// output cannot be parsed: 50% settlement, medium risk, 50% per product.
func neutralScoring(profile *CompanyProfile) *scoringResult {
	result := &scoringResult{
		SettlementProbability: 50,
		CompanyRisk:           string(domain.RiskMedium),
	}
	for _, product := range profile.Products {
		result.Products = append(result.Products, scoringProduct{
			Name:                    product.Name,
			InfringementProbability: 50,
			Reasoning:               "scoring unavailable, neutral default applied",
		})
	}
	return result
}

func assembleAnalysis(competitorID uuid.UUID, result *scoringResult) *domain.Analysis {
	maxScore, sum := 0, 0
	for i := range result.Products {
		score := domain.ClampScore(result.Products[i].InfringementProbability)
		result.Products[i].InfringementProbability = score
		if score > maxScore {
			maxScore = score
		}
		sum += score
	}
	mean := 0
	if len(result.Products) > 0 {
		mean = sum / len(result.Products)
	}

	factors, _ := json.Marshal(result.SettlementFactors)
	products, _ := json.Marshal(result.Products)

	return &domain.Analysis{
		CompetitorID:          competitorID,
		SettlementProbability: domain.ClampScore(result.SettlementProbability),
		CompanyRisk:           domain.ParseRiskLevel(result.CompanyRisk),
		SettlementFactors:     factors,
		Products:              products,
		MaxInfringement:       maxScore,
		MeanInfringement:      mean,
		AnalyzedAt:            time.Now().UTC(),
	}
}

// buildEvidence concatenates persisted documents into the evidence block the
// scoring prompt embeds.
func buildEvidence(docs []domain.CompetitorDocument) string {
	var b strings.Builder
	for _, doc := range docs {
		if doc.ExtractedText == "" {
			continue
		}
		fmt.Fprintf(&b, "== %s (%s) ==\n%s\n\n", doc.DocumentName, doc.DocumentType, doc.ExtractedText)
	}
	if b.Len() == 0 {
		return "No documents could be gathered."
	}
	return b.String()
}

func patentDocName(rec domain.PatentRecord) string {
	if rec.PatentNumber != "" {
		return "Patent " + rec.PatentNumber
	}
	return "Patent application " + rec.ApplicationNumber
}

func patentEvidenceText(rec domain.PatentRecord, product string, parsed *patentxml.ParsedPatent) string {
	var b strings.Builder
	title := parsed.Title
	if title == "" {
		title = rec.Title
	}
	fmt.Fprintf(&b, "%s\nApplication: %s\nPatent: %s\nFull text: %s publication\n\n",
		title, rec.ApplicationNumber, rec.PatentNumber, product)
	if parsed.Abstract != "" {
		b.WriteString(parsed.Abstract + "\n\n")
	}
	for _, claim := range parsed.Claims {
		if claim.Type == domain.ClaimIndependent {
			fmt.Fprintf(&b, "Claim %d: %s\n", claim.Number, claim.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

func mergeUnique(base, extra []string) domain.StringSlice {
	seen := make(map[string]bool)
	var merged domain.StringSlice
	for _, s := range append(append([]string{}, base...), extra...) {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		merged = append(merged, s)
	}
	return merged
}
