package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "Here is the company profile:\n```json\n{\"name\": \"Meridian\", \"products\": [{\"url\": \"https://m.example/a\"}]}\n```\nLet me know if you need more."

	raw, err := ExtractJSON(text)
	require.NoError(t, err)

	var got struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Meridian", got.Name)
}

func TestExtractJSON_BareObject(t *testing.T) {
	text := `Based on my analysis: {"settlement_probability": 72, "company_risk": "High"} is my assessment.`

	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"settlement_probability": 72, "company_risk": "High"}`, string(raw))
}

func TestExtractJSON_NestedBracesAndStrings(t *testing.T) {
	text := `{"note": "uses {braces} and \"quotes\"", "inner": {"depth": 2}} trailing {`

	raw, err := ExtractJSON(text)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, `uses {braces} and "quotes"`, got["note"])
}

func TestExtractJSON_FencedWinsOverEarlierBareObject(t *testing.T) {
	text := "ignore {\"wrong\": true} this\n```json\n{\"right\": true}\n```"

	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"right": true}`, string(raw))
}

func TestExtractJSON_LabeledFenceBeatsUnlabeledFence(t *testing.T) {
	text := "```\n{\"unlabeled\": true}\n```\nand then\n```json\n{\"labeled\": true}\n```"

	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"labeled": true}`, string(raw))
}

func TestExtractJSON_UnlabeledFenceFoundByScan(t *testing.T) {
	text := "```\n{\"scanned\": 1}\n```"

	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scanned": 1}`, string(raw))
}

func TestExtractJSON_InvalidFenceFallsBackToScan(t *testing.T) {
	text := "```json\n{broken\n```\nbut later {\"ok\": 1} appears"

	raw, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": 1}`, string(raw))
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := ExtractJSON("the model declined to answer in JSON")
	assert.Error(t, err)
}
