// Package editor implements the parser-site configuration editor: a
// view-model form that is populated from and collected into site configs,
// an explicit editing session, and the client that drives the admin API.
package editor

import (
	"strconv"
	"strings"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
)

// SelectorRow is the editable state of one field-selector block: the CSS
// selector input, the attribute dropdown and the optional regex input.
type SelectorRow struct {
	Selector  string
	Attribute string
	Regex     string
}

// Form is the view model of the site editor. Every value mirrors a form
// control, so numeric fields are strings until collection. Selector rows
// exist for every field in the registry whether or not they are filled in.
type Form struct {
	Name      string
	BaseURL   string
	UserAgent string
	Enabled   bool
	MaxPages  string

	SearchURLs []string

	Selectors      map[string]SelectorRow
	PropertyLinks  string
	NextPageButton string

	BetweenPages      string
	BetweenProperties string
}

// DefaultForm returns the editor's state for a new site: enabled, default
// limits, one blank search-URL row and a blank selector row per field.
func DefaultForm() *Form {
	f := &Form{
		Enabled:           true,
		MaxPages:          strconv.Itoa(parser.DefaultMaxPages),
		SearchURLs:        []string{""},
		Selectors:         make(map[string]SelectorRow, len(parser.FieldNames)),
		BetweenPages:      strconv.Itoa(parser.DefaultBetweenPagesMs),
		BetweenProperties: strconv.Itoa(parser.DefaultBetweenPropsMs),
	}
	for _, name := range parser.FieldNames {
		f.Selectors[name] = SelectorRow{Attribute: parser.AttrText}
	}
	return f
}

// Populate fills every form binding from a site config: one search-URL row
// per URL and one selector row per registry field, keeping the stored
// attribute selected.
func (f *Form) Populate(cfg *parser.SiteConfig) {
	f.Name = cfg.Name
	f.BaseURL = cfg.BaseURL
	f.UserAgent = cfg.UserAgent
	f.Enabled = cfg.Enabled
	f.MaxPages = strconv.Itoa(cfg.MaxPages)

	f.SearchURLs = append([]string(nil), cfg.SearchURLs...)
	if len(f.SearchURLs) == 0 {
		f.SearchURLs = []string{""}
	}

	f.Selectors = make(map[string]SelectorRow, len(parser.FieldNames))
	for _, name := range parser.FieldNames {
		row := SelectorRow{Attribute: parser.AttrText}
		if fs, ok := cfg.Selectors.Fields[name]; ok {
			row.Selector = fs.Selector
			row.Regex = fs.Regex
			if fs.Attribute != "" {
				row.Attribute = fs.Attribute
			}
		}
		f.Selectors[name] = row
	}
	f.PropertyLinks = cfg.Selectors.PropertyLinks
	f.NextPageButton = cfg.Selectors.NextPageButton

	f.BetweenPages = strconv.Itoa(cfg.WaitTimes.BetweenPages)
	f.BetweenProperties = strconv.Itoa(cfg.WaitTimes.BetweenProperties)
}

// Collect reads the form back into a site config. Search URLs are trimmed
// and blank rows dropped; a field selector is included only when its
// selector input is non-empty; required is always computed from the field
// name, never read from the form.
func (f *Form) Collect() *parser.SiteConfig {
	cfg := &parser.SiteConfig{
		Name:      strings.TrimSpace(f.Name),
		BaseURL:   strings.TrimSpace(f.BaseURL),
		UserAgent: strings.TrimSpace(f.UserAgent),
		Enabled:   f.Enabled,
		MaxPages:  intOr(f.MaxPages, parser.DefaultMaxPages),
		WaitTimes: parser.WaitTimes{
			BetweenPages:      intOr(f.BetweenPages, parser.DefaultBetweenPagesMs),
			BetweenProperties: intOr(f.BetweenProperties, parser.DefaultBetweenPropsMs),
		},
		Selectors: parser.SelectorSet{
			Fields:         make(map[string]parser.FieldSelector),
			PropertyLinks:  strings.TrimSpace(f.PropertyLinks),
			NextPageButton: strings.TrimSpace(f.NextPageButton),
		},
	}

	cfg.SearchURLs = []string{}
	for _, u := range f.SearchURLs {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			cfg.SearchURLs = append(cfg.SearchURLs, trimmed)
		}
	}

	for _, name := range parser.FieldNames {
		row, ok := f.Selectors[name]
		if !ok {
			continue
		}
		selector := strings.TrimSpace(row.Selector)
		if selector == "" {
			continue
		}
		attribute := row.Attribute
		if attribute == "" {
			attribute = parser.AttrText
		}
		cfg.Selectors.Fields[name] = parser.FieldSelector{
			Selector:  selector,
			Attribute: attribute,
			Required:  parser.IsRequiredField(name),
			Regex:     strings.TrimSpace(row.Regex),
		}
	}
	return cfg
}

// intOr parses a numeric form value, falling back to a default on empty or
// unparseable input.
func intOr(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
