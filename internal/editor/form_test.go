package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
)

func TestDefaultForm(t *testing.T) {
	form := DefaultForm()

	assert.True(t, form.Enabled)
	assert.Equal(t, "3", form.MaxPages)
	assert.Equal(t, "2000", form.BetweenPages)
	assert.Equal(t, "1000", form.BetweenProperties)
	assert.Equal(t, []string{""}, form.SearchURLs, "one blank search-URL row")

	require.Len(t, form.Selectors, len(parser.FieldNames))
	for _, name := range parser.FieldNames {
		row := form.Selectors[name]
		assert.Empty(t, row.Selector, name)
		assert.Equal(t, parser.AttrText, row.Attribute, name)
	}
}

func TestCollectDefaults(t *testing.T) {
	cfg := DefaultForm().Collect()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, parser.DefaultMaxPages, cfg.MaxPages)
	assert.Equal(t, parser.DefaultBetweenPagesMs, cfg.WaitTimes.BetweenPages)
	assert.Equal(t, parser.DefaultBetweenPropsMs, cfg.WaitTimes.BetweenProperties)
	assert.Empty(t, cfg.SearchURLs)
	assert.Empty(t, cfg.Selectors.Fields, "blank selector inputs are omitted")
}

func TestCollectFiltersBlankSearchURLs(t *testing.T) {
	form := DefaultForm()
	form.SearchURLs = []string{"https://a.com", "  ", "", "\thttps://b.com/search  "}

	cfg := form.Collect()
	assert.Equal(t, []string{"https://a.com", "https://b.com/search"}, cfg.SearchURLs)
}

func TestCollectComputesRequired(t *testing.T) {
	form := DefaultForm()
	for _, name := range parser.FieldNames {
		form.Selectors[name] = SelectorRow{Selector: "." + name, Attribute: parser.AttrText}
	}

	cfg := form.Collect()
	require.Len(t, cfg.Selectors.Fields, len(parser.FieldNames))
	for name, fs := range cfg.Selectors.Fields {
		assert.Equal(t, parser.IsRequiredField(name), fs.Required, name)
	}
}

func TestCollectOmitsEmptySelectors(t *testing.T) {
	form := DefaultForm()
	form.Selectors["title"] = SelectorRow{Selector: "h1"}
	form.Selectors["price"] = SelectorRow{Selector: "   "}

	cfg := form.Collect()
	assert.Contains(t, cfg.Selectors.Fields, "title")
	assert.NotContains(t, cfg.Selectors.Fields, "price")
	assert.Equal(t, parser.AttrText, cfg.Selectors.Fields["title"].Attribute, "attribute defaults to text")
}

func TestCollectParsesNumericFields(t *testing.T) {
	form := DefaultForm()
	form.MaxPages = "12"
	form.BetweenPages = "500"
	form.BetweenProperties = "not a number"

	cfg := form.Collect()
	assert.Equal(t, 12, cfg.MaxPages)
	assert.Equal(t, 500, cfg.WaitTimes.BetweenPages)
	assert.Equal(t, parser.DefaultBetweenPropsMs, cfg.WaitTimes.BetweenProperties,
		"unparseable input falls back to the default")
}

func TestPopulateCollectRoundtrip(t *testing.T) {
	original := &parser.SiteConfig{
		Name:       "Luximmo",
		BaseURL:    "https://www.luximmo.com",
		UserAgent:  "Mozilla/5.0 (X11; Linux x86_64)",
		Enabled:    false,
		MaxPages:   7,
		SearchURLs: []string{"https://www.luximmo.com/bg", "https://www.luximmo.com/sofia"},
		Selectors: parser.SelectorSet{
			Fields: map[string]parser.FieldSelector{
				"title":  {Selector: "h1", Attribute: parser.AttrText, Required: true},
				"price":  {Selector: ".price strong", Attribute: parser.AttrText, Required: true, Regex: `([\d,]+)`},
				"city":   {Selector: "[itemprop='address']", Attribute: parser.AttrText, Required: true},
				"images": {Selector: ".gallery img", Attribute: parser.AttrSrc},
				"phone":  {Selector: ".consultant-box .phone", Attribute: parser.AttrText},
			},
			PropertyLinks:  "a.property-link",
			NextPageButton: ".pagination .next",
		},
		WaitTimes: parser.WaitTimes{BetweenPages: 3000, BetweenProperties: 1500},
	}

	form := DefaultForm()
	form.Populate(original)
	collected := form.Collect()

	assert.Equal(t, original.Name, collected.Name)
	assert.Equal(t, original.BaseURL, collected.BaseURL)
	assert.Equal(t, original.UserAgent, collected.UserAgent)
	assert.Equal(t, original.Enabled, collected.Enabled)
	assert.Equal(t, original.MaxPages, collected.MaxPages)
	assert.Equal(t, original.SearchURLs, collected.SearchURLs)
	assert.Equal(t, original.WaitTimes, collected.WaitTimes)
	assert.Equal(t, original.Selectors.PropertyLinks, collected.Selectors.PropertyLinks)
	assert.Equal(t, original.Selectors.NextPageButton, collected.Selectors.NextPageButton)
	assert.Equal(t, original.Selectors.Fields, collected.Selectors.Fields)
}

func TestPopulateKeepsStoredAttribute(t *testing.T) {
	cfg := parser.NewSiteConfig()
	cfg.Selectors.Fields["images"] = parser.FieldSelector{Selector: "img.photo", Attribute: parser.AttrSrc}

	form := DefaultForm()
	form.Populate(cfg)
	assert.Equal(t, parser.AttrSrc, form.Selectors["images"].Attribute)
	assert.Equal(t, parser.AttrText, form.Selectors["title"].Attribute)
}

func TestPopulateEmptySearchURLsGetsBlankRow(t *testing.T) {
	form := DefaultForm()
	form.Populate(parser.NewSiteConfig())
	assert.Equal(t, []string{""}, form.SearchURLs)
}
