package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSite() *SiteConfig {
	site := NewSiteConfig()
	site.Name = "Luximmo"
	site.BaseURL = "https://www.luximmo.com"
	site.SearchURLs = []string{"https://www.luximmo.com/search"}
	site.Selectors.Fields["title"] = FieldSelector{Selector: "h1", Attribute: AttrText, Required: true}
	site.Selectors.Fields["price"] = FieldSelector{Selector: ".price strong", Attribute: AttrText, Required: true}
	site.Selectors.Fields["city"] = FieldSelector{Selector: "[itemprop='address']", Attribute: AttrText, Required: true}
	return site
}

func TestSelectorSetJSONRoundtrip(t *testing.T) {
	set := SelectorSet{
		Fields: map[string]FieldSelector{
			"title":  {Selector: "h1", Attribute: AttrText, Required: true},
			"images": {Selector: ".gallery img", Attribute: AttrSrc},
			"price":  {Selector: ".price strong", Attribute: AttrText, Required: true, Regex: `([\d,]+)`},
		},
		PropertyLinks:  "a.property-link",
		NextPageButton: ".pagination .next",
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)

	// Navigation selectors ride in the same object as plain strings.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"a.property-link"`, string(raw["propertyLinks"]))
	assert.JSONEq(t, `".pagination .next"`, string(raw["nextPageButton"]))

	var decoded SelectorSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, set.PropertyLinks, decoded.PropertyLinks)
	assert.Equal(t, set.NextPageButton, decoded.NextPageButton)
	assert.Equal(t, set.Fields, decoded.Fields)
}

func TestSelectorSetUnmarshalDefaultsAttribute(t *testing.T) {
	var set SelectorSet
	require.NoError(t, json.Unmarshal([]byte(`{"title":{"selector":"h1"}}`), &set))
	assert.Equal(t, AttrText, set.Fields["title"].Attribute)
}

func TestValidateAcceptsCompleteSite(t *testing.T) {
	require.NoError(t, validSite().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*SiteConfig)
		wantDetail string
	}{
		{
			name:       "empty name",
			mutate:     func(s *SiteConfig) { s.Name = "  " },
			wantDetail: "name",
		},
		{
			name:       "empty base url",
			mutate:     func(s *SiteConfig) { s.BaseURL = "" },
			wantDetail: "baseUrl",
		},
		{
			name:       "relative base url",
			mutate:     func(s *SiteConfig) { s.BaseURL = "/search" },
			wantDetail: "baseUrl",
		},
		{
			name:       "zero max pages",
			mutate:     func(s *SiteConfig) { s.MaxPages = 0 },
			wantDetail: "maxPages",
		},
		{
			name:       "negative wait time",
			mutate:     func(s *SiteConfig) { s.WaitTimes.BetweenPages = -1 },
			wantDetail: "waitTimes.betweenPages",
		},
		{
			name:       "missing required selector",
			mutate:     func(s *SiteConfig) { delete(s.Selectors.Fields, "city") },
			wantDetail: "selectors.city",
		},
		{
			name: "blank required selector",
			mutate: func(s *SiteConfig) {
				s.Selectors.Fields["price"] = FieldSelector{Selector: "   "}
			},
			wantDetail: "selectors.price",
		},
		{
			name: "unsupported attribute",
			mutate: func(s *SiteConfig) {
				s.Selectors.Fields["images"] = FieldSelector{Selector: "img", Attribute: "alt"}
			},
			wantDetail: "selectors.images",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := validSite()
			tt.mutate(site)

			err := site.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Details, tt.wantDetail)
		})
	}
}

func TestRequiredFields(t *testing.T) {
	for _, name := range []string{"title", "price", "city"} {
		assert.True(t, IsRequiredField(name), name)
	}
	for _, name := range []string{"area", "description", "agency", "propertyLinks"} {
		assert.False(t, IsRequiredField(name), name)
	}
}

func TestParseImportSingleSite(t *testing.T) {
	data, err := json.Marshal(validSite())
	require.NoError(t, err)

	sites, err := ParseImport(data)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Luximmo", sites[0].Name)
}

func TestParseImportExportDocument(t *testing.T) {
	doc := Export{Sites: []*SiteConfig{validSite(), validSite()}}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	sites, err := ParseImport(data)
	require.NoError(t, err)
	assert.Len(t, sites, 2)
}

func TestParseImportAcceptsEmptyExport(t *testing.T) {
	data, err := json.Marshal(Export{Sites: []*SiteConfig{}})
	require.NoError(t, err)

	sites, err := ParseImport(data)
	require.NoError(t, err, "an export of an empty database imports as a no-op")
	assert.Empty(t, sites)
}

func TestParseImportRejectsUnrecognized(t *testing.T) {
	for _, body := range []string{`{}`, `{"foo":"bar"}`, `[1,2,3]`, `"just a string"`} {
		_, err := ParseImport([]byte(body))
		assert.ErrorIs(t, err, ErrUnrecognizedConfig, body)
	}
}
