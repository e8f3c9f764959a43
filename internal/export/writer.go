// Package export renders analysis results as XLSX workbooks for download.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

const (
	summarySheet  = "Summary"
	productsSheet = "Products"
	factorsSheet  = "Settlement Factors"
)

var productColumns = []string{
	"Product",
	"Infringement Probability",
	"Relevant Patents",
	"Reasoning",
}

var factorColumns = []string{
	"Factor",
	"Impact",
	"Detail",
}

// WriteAnalysisReport writes a three-sheet workbook for one competitor's
// analysis: a summary, the per-product scores, and the settlement factors.
// Unparseable stored JSON leaves the corresponding sheet empty rather than
// failing the export.
func WriteAnalysisReport(w io.Writer, competitor *domain.Competitor, analysis *domain.Analysis) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet becomes the summary.
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("export.WriteAnalysisReport: %w", err)
	}

	summary := [][]interface{}{
		{"Competitor", competitor.Name},
		{"Website", competitor.Website},
		{"Analyzed At", analysis.AnalyzedAt.Format(time.RFC3339)},
		{"Company Risk", string(analysis.CompanyRisk)},
		{"Settlement Probability", analysis.SettlementProbability},
		{"Max Infringement", analysis.MaxInfringement},
		{"Mean Infringement", analysis.MeanInfringement},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("export.WriteAnalysisReport: %w", err)
		}
	}

	if err := writeProducts(f, analysis.Products); err != nil {
		return err
	}
	if err := writeFactors(f, analysis.SettlementFactors); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.WriteAnalysisReport: %w", err)
	}
	return nil
}

func writeProducts(f *excelize.File, raw json.RawMessage) error {
	if _, err := f.NewSheet(productsSheet); err != nil {
		return fmt.Errorf("export.writeProducts: %w", err)
	}
	header := toRow(productColumns)
	if err := f.SetSheetRow(productsSheet, "A1", &header); err != nil {
		return fmt.Errorf("export.writeProducts: %w", err)
	}

	var products []domain.AnalysisProduct
	if len(raw) == 0 || json.Unmarshal(raw, &products) != nil {
		return nil
	}

	for i, p := range products {
		row := []interface{}{
			p.Name,
			p.InfringementProbability,
			strings.Join(p.RelevantPatents, ", "),
			p.Reasoning,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(productsSheet, cell, &row); err != nil {
			return fmt.Errorf("export.writeProducts: %w", err)
		}
	}
	return nil
}

func writeFactors(f *excelize.File, raw json.RawMessage) error {
	if _, err := f.NewSheet(factorsSheet); err != nil {
		return fmt.Errorf("export.writeFactors: %w", err)
	}
	header := toRow(factorColumns)
	if err := f.SetSheetRow(factorsSheet, "A1", &header); err != nil {
		return fmt.Errorf("export.writeFactors: %w", err)
	}

	var factors []domain.SettlementFactor
	if len(raw) == 0 || json.Unmarshal(raw, &factors) != nil {
		return nil
	}

	for i, factor := range factors {
		row := []interface{}{factor.Factor, factor.Impact, factor.Detail}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(factorsSheet, cell, &row); err != nil {
			return fmt.Errorf("export.writeFactors: %w", err)
		}
	}
	return nil
}

func toRow(columns []string) []interface{} {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	return row
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a competitor name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_competitor_name}_{YYYY-MM-DD}.xlsx
func BuildFilename(competitorName string) string {
	sanitized := SanitizeFilename(competitorName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.xlsx", sanitized, date)
}
