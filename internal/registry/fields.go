package registry

import (
	"strings"

	"github.com/tidwall/gjson"
)

// The registry API has shipped several response shapes over time; the same
// logical field can live at different nesting depths depending on endpoint
// and API revision. Extraction is therefore schema-tolerant: each logical
// field has an ordered list of candidate paths and the first non-empty hit
// wins. The lists are data, so a new upstream shape is one entry away.

// resultSetPaths locate the array of result rows inside a search envelope.
var resultSetPaths = []string{
	"patentFileWrapperDataBag",
	"results",
	"patentBag",
	"response.docs",
}

// scalarPaths are the candidate locations of each scalar record field.
var scalarPaths = map[string][]string{
	"applicationNumber": {
		"applicationNumberText",
		"applicationMetaData.applicationNumberText",
		"patentCaseMetadata.applicationNumberText.value",
		"applicationNumber",
	},
	"patentNumber": {
		"applicationMetaData.patentNumber",
		"patentCaseMetadata.patentGrantIdentification.patentNumber",
		"patentNumber",
		"grantDocumentMetaData.patentNumber",
	},
	"publicationNumber": {
		"applicationMetaData.earliestPublicationNumber",
		"patentCaseMetadata.patentPublicationIdentification.publicationNumber",
		"publicationNumber",
	},
	"title": {
		"applicationMetaData.inventionTitle",
		"patentCaseMetadata.inventionTitle.content.0",
		"inventionTitle",
		"title",
	},
	"filingDate": {
		"applicationMetaData.filingDate",
		"patentCaseMetadata.filingDate",
		"filingDate",
	},
	"grantDate": {
		"applicationMetaData.grantDate",
		"patentCaseMetadata.patentGrantIdentification.grantDate",
		"grantDate",
	},
	"abstract": {
		"applicationMetaData.abstractText",
		"abstractText",
		"abstract",
	},
}

// listPaths are the candidate locations of each name-list field. Entries may
// resolve to arrays of strings or arrays of objects with name parts.
var listPaths = map[string][]string{
	"applicants": {
		"applicationMetaData.applicantBag",
		"applicantBag",
		"parties.applicants",
	},
	"inventors": {
		"applicationMetaData.inventorBag",
		"inventorBag",
		"parties.inventors",
	},
}

// namePartPaths extract a display name from one element of a name-list.
var namePartPaths = []string{
	"applicantNameText",
	"inventorNameText",
	"nameText",
	"name",
}

func firstScalar(doc gjson.Result, field string) string {
	for _, path := range scalarPaths[field] {
		if v := doc.Get(path); v.Exists() {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstList(doc gjson.Result, field string) []string {
	for _, path := range listPaths[field] {
		v := doc.Get(path)
		if !v.Exists() || !v.IsArray() {
			continue
		}
		var names []string
		v.ForEach(func(_, item gjson.Result) bool {
			if item.Type == gjson.String {
				if s := strings.TrimSpace(item.String()); s != "" {
					names = append(names, s)
				}
				return true
			}
			for _, np := range namePartPaths {
				if n := strings.TrimSpace(item.Get(np).String()); n != "" {
					names = append(names, n)
					return true
				}
			}
			// Fall back to first/last name parts.
			first := strings.TrimSpace(item.Get("firstName").String())
			last := strings.TrimSpace(item.Get("lastName").String())
			if full := strings.TrimSpace(first + " " + last); full != "" {
				names = append(names, full)
			}
			return true
		})
		if len(names) > 0 {
			return names
		}
	}
	return nil
}

func resultSet(body []byte) []gjson.Result {
	root := gjson.ParseBytes(body)
	for _, path := range resultSetPaths {
		if v := root.Get(path); v.Exists() && v.IsArray() {
			return v.Array()
		}
	}
	return nil
}
