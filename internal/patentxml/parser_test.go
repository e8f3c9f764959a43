package patentxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacksonhblau/patent-detector/internal/domain"
)

const grantXML = `<?xml version="1.0" encoding="UTF-8"?>
<us-patent-grant>
  <us-bibliographic-data-grant>
    <publication-reference>
      <document-id><country>US</country><doc-number>10411897</doc-number><kind>B2</kind><date>20190910</date></document-id>
    </publication-reference>
    <application-reference appl-type="utility">
      <document-id><country>US</country><doc-number>15/456,067</doc-number><date>20170310</date></document-id>
    </application-reference>
    <invention-title id="d2e53">Secure communication relay apparatus</invention-title>
    <us-parties>
      <inventors>
        <inventor sequence="001"><addressbook><last-name>Harmon</last-name><first-name>Delia</first-name></addressbook></inventor>
        <inventor sequence="002"><addressbook><last-name>Okafor</last-name><first-name>Chidi</first-name></addressbook></inventor>
      </inventors>
    </us-parties>
    <assignees>
      <assignee><addressbook><orgname>Relay Dynamics, Inc.</orgname></addressbook></assignee>
    </assignees>
  </us-bibliographic-data-grant>
  <abstract id="abstract">
    <p>A relay apparatus establishes an encrypted tunnel between endpoints and rotates session keys on a fixed schedule.</p>
  </abstract>
  <description id="description">
    <p>FIELD OF THE INVENTION. The present disclosure relates to secure network relays and key rotation schedules thereof.</p>
  </description>
  <claims id="claims">
    <claim id="CLM-00001" num="00001">
      <claim-text>1. A relay apparatus comprising: a processor; and a memory storing instructions.</claim-text>
    </claim>
    <claim id="CLM-00002" num="00002">
      <claim-text>2. The relay apparatus of <claim-ref idref="CLM-00001">claim 1</claim-ref>, wherein the memory further stores a key schedule.</claim-text>
    </claim>
    <claim id="CLM-00003" num="00003">
      <claim-text>3. The relay apparatus according to claim 2, wherein the key schedule rotates hourly.</claim-text>
    </claim>
  </claims>
</us-patent-grant>`

const applicationXML = `<?xml version="1.0"?>
<patent-application-publication>
  <subdoc-abstract>
    <paragraph>A method for scheduling encrypted relay sessions across heterogeneous endpoints is disclosed herein.</paragraph>
  </subdoc-abstract>
  <subdoc-description>
    <paragraph>This application describes relay session scheduling in detail, including failover behavior.</paragraph>
  </subdoc-description>
  <claims>
1. A method comprising receiving a session request and assigning a relay node.
2. The method of claim 1, further comprising rotating an encryption key.
  </claims>
</patent-application-publication>`

func TestParse_GrantDialect(t *testing.T) {
	p := Parse(grantXML)

	assert.Equal(t, "Secure communication relay apparatus", p.Title)
	assert.Contains(t, p.Abstract, "encrypted tunnel")
	assert.Contains(t, p.Description, "secure network relays")
	assert.Equal(t, "Relay Dynamics, Inc.", p.Assignee)
	assert.Equal(t, []string{"Delia Harmon", "Chidi Okafor"}, p.Inventors)
	assert.Equal(t, "15456067", p.ApplicationNumber)
	assert.Equal(t, "20170310", p.FilingDate)
	assert.Equal(t, "10411897", p.PatentNumber)
}

func TestParse_Deterministic(t *testing.T) {
	first := Parse(grantXML)
	second := Parse(grantXML)
	assert.Equal(t, first, second)
}

func TestClaims_TaggedElements(t *testing.T) {
	claims := Claims(grantXML)
	require.Len(t, claims, 3)

	assert.Equal(t, 1, claims[0].Number)
	assert.Equal(t, domain.ClaimIndependent, claims[0].Type)

	// Explicit claim-ref element: strongest dependency signal.
	assert.Equal(t, 2, claims[1].Number)
	assert.Equal(t, domain.ClaimDependent, claims[1].Type)
	assert.InDelta(t, 0.95, claims[1].Confidence, 0.001)

	// Textual "according to claim 2" reference: weaker signal.
	assert.Equal(t, domain.ClaimDependent, claims[2].Type)
	assert.InDelta(t, 0.8, claims[2].Confidence, 0.001)
}

func TestClaims_BlockFallback(t *testing.T) {
	claims := Claims(applicationXML)
	require.GreaterOrEqual(t, len(claims), 1)
	require.Len(t, claims, 2)

	assert.Equal(t, 1, claims[0].Number)
	assert.Equal(t, domain.ClaimIndependent, claims[0].Type)
	assert.Contains(t, claims[0].Text, "receiving a session request")

	assert.Equal(t, 2, claims[1].Number)
	assert.Equal(t, domain.ClaimDependent, claims[1].Type)
}

func TestClaims_UnmarkedBlockYieldsSingleClaim(t *testing.T) {
	xml := `<claims>A single run-on claim body without numbered markers at all.</claims>`
	claims := Claims(xml)
	require.Len(t, claims, 1)
	assert.Equal(t, 1, claims[0].Number)
	assert.Contains(t, claims[0].Text, "run-on claim body")
}

func TestAbstract_DialectOrderAndMinLength(t *testing.T) {
	// Application dialect resolves through the subdoc vocabulary.
	assert.Contains(t, Abstract(applicationXML), "scheduling encrypted relay sessions")

	// Too-short content is treated as boilerplate and skipped.
	assert.Equal(t, "", Abstract(`<abstract><p>N/A</p></abstract>`))
}

func TestParse_EmptyInput(t *testing.T) {
	p := Parse("")
	assert.Empty(t, p.Title)
	assert.Empty(t, p.Abstract)
	assert.Empty(t, p.Claims)
	assert.Empty(t, p.Inventors)
}
