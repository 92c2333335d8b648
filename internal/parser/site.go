package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Attribute names a DOM attribute a field selector extracts from matched
// elements. "text" is the element's text content.
const (
	AttrText  = "text"
	AttrHref  = "href"
	AttrSrc   = "src"
	AttrValue = "value"
)

// FieldNames is the fixed set of property fields a parser site can be
// configured to extract, in form order.
var FieldNames = []string{
	"title", "price", "area", "rooms", "floor", "totalFloors",
	"city", "quarter", "address", "description", "propertyType",
	"images", "phone", "email", "agency", "features",
}

// requiredFields are the fields a site cannot be saved without.
var requiredFields = map[string]bool{
	"title": true,
	"price": true,
	"city":  true,
}

// IsRequiredField reports whether the named field must have a selector for
// a site config to be valid.
func IsRequiredField(name string) bool {
	return requiredFields[name]
}

// ValidAttribute reports whether attr is one of the supported extraction
// attributes.
func ValidAttribute(attr string) bool {
	switch attr {
	case AttrText, AttrHref, AttrSrc, AttrValue:
		return true
	}
	return false
}

// FieldSelector maps one property field to a CSS selector, the attribute to
// extract and an optional regex applied to the extracted value.
type FieldSelector struct {
	Selector  string `json:"selector"`
	Attribute string `json:"attribute"`
	Required  bool   `json:"required"`
	Regex     string `json:"regex,omitempty"`
}

// SelectorSet holds per-field selectors plus the two navigation selectors,
// which are plain strings on the wire. The whole set serializes as a single
// JSON object: field names map to FieldSelector values, propertyLinks and
// nextPageButton map to strings.
type SelectorSet struct {
	Fields         map[string]FieldSelector
	PropertyLinks  string
	NextPageButton string
}

// MarshalJSON flattens fields and navigation selectors into one object.
func (s SelectorSet) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Fields)+2)
	for name, fs := range s.Fields {
		out[name] = fs
	}
	if s.PropertyLinks != "" {
		out["propertyLinks"] = s.PropertyLinks
	}
	if s.NextPageButton != "" {
		out["nextPageButton"] = s.NextPageButton
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the mixed object back into typed fields. String
// values are navigation selectors, object values are field selectors.
func (s *SelectorSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Fields = make(map[string]FieldSelector)
	for name, msg := range raw {
		switch name {
		case "propertyLinks":
			if err := json.Unmarshal(msg, &s.PropertyLinks); err != nil {
				return fmt.Errorf("selector %q: %w", name, err)
			}
		case "nextPageButton":
			if err := json.Unmarshal(msg, &s.NextPageButton); err != nil {
				return fmt.Errorf("selector %q: %w", name, err)
			}
		default:
			var fs FieldSelector
			if err := json.Unmarshal(msg, &fs); err != nil {
				return fmt.Errorf("selector %q: %w", name, err)
			}
			if fs.Attribute == "" {
				fs.Attribute = AttrText
			}
			s.Fields[name] = fs
		}
	}
	return nil
}

// WaitTimes configures pauses between scraped pages and between individual
// property fetches, in milliseconds.
type WaitTimes struct {
	BetweenPages      int `json:"betweenPages"`
	BetweenProperties int `json:"betweenProperties"`
}

// SiteConfig is a configured scraping target. The server assigns IDs;
// a config arriving with an empty ID is a new site.
type SiteConfig struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name"`
	BaseURL    string      `json:"baseUrl"`
	UserAgent  string      `json:"userAgent,omitempty"`
	Enabled    bool        `json:"enabled"`
	MaxPages   int         `json:"maxPages"`
	SearchURLs []string    `json:"searchUrls"`
	Selectors  SelectorSet `json:"selectors"`
	WaitTimes  WaitTimes   `json:"waitTimes"`
	CreatedAt  time.Time   `json:"createdAt,omitempty"`
	UpdatedAt  time.Time   `json:"updatedAt,omitempty"`
}

// Default wait times and page limit for a newly created site.
const (
	DefaultMaxPages       = 3
	DefaultBetweenPagesMs = 2000
	DefaultBetweenPropsMs = 1000
)

// NewSiteConfig returns a config with form defaults: enabled, default page
// limit and wait times, no selectors.
func NewSiteConfig() *SiteConfig {
	return &SiteConfig{
		Enabled:  true,
		MaxPages: DefaultMaxPages,
		WaitTimes: WaitTimes{
			BetweenPages:      DefaultBetweenPagesMs,
			BetweenProperties: DefaultBetweenPropsMs,
		},
		Selectors: SelectorSet{Fields: map[string]FieldSelector{}},
	}
}

// ValidationError carries per-field validation messages alongside a
// summary, matching the API's error/details envelope.
type ValidationError struct {
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the invariants a site must satisfy before it can be
// saved: name and base URL present, base URL parseable, positive page
// limit, non-negative wait times, every required field selector present and
// every attribute one of the supported set.
func (c *SiteConfig) Validate() error {
	details := make(map[string]string)

	if strings.TrimSpace(c.Name) == "" {
		details["name"] = "name cannot be empty"
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		details["baseUrl"] = "base URL cannot be empty"
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" {
		details["baseUrl"] = "base URL must be a valid absolute URL"
	}
	if c.MaxPages <= 0 {
		details["maxPages"] = "max pages must be positive"
	}
	if c.WaitTimes.BetweenPages < 0 {
		details["waitTimes.betweenPages"] = "wait time cannot be negative"
	}
	if c.WaitTimes.BetweenProperties < 0 {
		details["waitTimes.betweenProperties"] = "wait time cannot be negative"
	}

	for name := range requiredFields {
		fs, ok := c.Selectors.Fields[name]
		if !ok || strings.TrimSpace(fs.Selector) == "" {
			details["selectors."+name] = "selector is required"
		}
	}
	for name, fs := range c.Selectors.Fields {
		if fs.Attribute != "" && !ValidAttribute(fs.Attribute) {
			details["selectors."+name] = fmt.Sprintf("unsupported attribute %q", fs.Attribute)
		}
	}

	if len(details) > 0 {
		return &ValidationError{Message: "site configuration is invalid", Details: details}
	}
	return nil
}
