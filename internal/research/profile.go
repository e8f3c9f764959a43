package research

// CompanyProfile is what the web-research completion returns about a
// competitor.
type CompanyProfile struct {
	OfficialName string           `json:"official_name"`
	Aliases      []string         `json:"aliases"`
	Website      string           `json:"website"`
	Description  string           `json:"description"`
	TechStack    []string         `json:"tech_stack"`
	Products     []ProfileProduct `json:"products"`
}

// ProfileProduct is one product the research step identified.
type ProfileProduct struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// scoringResult is the shape the scoring completion must return.
type scoringResult struct {
	SettlementProbability int              `json:"settlement_probability"`
	CompanyRisk           string           `json:"company_risk"`
	SettlementFactors     []scoringFactor  `json:"settlement_factors"`
	Products              []scoringProduct `json:"products"`
}

type scoringFactor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"`
	Detail string `json:"detail"`
}

type scoringProduct struct {
	Name                    string   `json:"name"`
	InfringementProbability int      `json:"infringement_probability"`
	RelevantPatents         []string `json:"relevant_patents"`
	Reasoning               string   `json:"reasoning"`
}
