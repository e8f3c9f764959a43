package domain

// ClaimType classifies a patent claim. The classification is heuristic;
// consumers should consult Claim.Confidence before treating it as ground truth.
type ClaimType string

const (
	ClaimIndependent ClaimType = "independent"
	ClaimDependent   ClaimType = "dependent"
)

// DocumentType categorizes a competitor document by its origin.
type DocumentType string

const (
	DocTypeProductService DocumentType = "product_service"
	DocTypeProductPage    DocumentType = "product_page"
	DocTypePDF            DocumentType = "pdf"
	DocTypeUploaded       DocumentType = "uploaded"
	DocTypePatent         DocumentType = "patent"
)

// DocumentStatus is the lifecycle state of a competitor document. Transitions
// move monotonically toward a terminal state; a document never reverts from
// verified/xml_available back to pending_extraction.
type DocumentStatus string

const (
	DocStatusPendingExtraction DocumentStatus = "pending_extraction"
	DocStatusFetchFailed       DocumentStatus = "fetch_failed"
	DocStatusAIResearched      DocumentStatus = "ai_researched"
	DocStatusMetadataOnly      DocumentStatus = "metadata_only"
	DocStatusXMLAvailable      DocumentStatus = "xml_available"
	DocStatusVerified          DocumentStatus = "verified"
)

// statusRank orders document statuses from least to most settled.
var statusRank = map[DocumentStatus]int{
	DocStatusPendingExtraction: 0,
	DocStatusFetchFailed:       1,
	DocStatusAIResearched:      2,
	DocStatusMetadataOnly:      3,
	DocStatusXMLAvailable:      4,
	DocStatusVerified:          5,
}

// StatusRank returns the monotonic rank of a document status. Unknown
// statuses rank lowest.
func StatusRank(s DocumentStatus) int {
	return statusRank[s]
}

// CanTransition reports whether a document status change is allowed.
// Equal-rank rewrites are permitted; regressions are not.
func CanTransition(from, to DocumentStatus) bool {
	return StatusRank(to) >= StatusRank(from)
}

// ResearchStatus drives the competitor research queue.
type ResearchStatus string

const (
	ResearchIdle     ResearchStatus = "idle"
	ResearchQueued   ResearchStatus = "queued"
	ResearchRunning  ResearchStatus = "running"
	ResearchComplete ResearchStatus = "complete"
	ResearchFailed   ResearchStatus = "failed"
)

// RiskLevel is the coarse company-level risk judgment.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// ParseRiskLevel normalizes an LLM-supplied risk string, defaulting to Medium.
func ParseRiskLevel(s string) RiskLevel {
	switch s {
	case "High", "high", "HIGH":
		return RiskHigh
	case "Low", "low", "LOW":
		return RiskLow
	default:
		return RiskMedium
	}
}
