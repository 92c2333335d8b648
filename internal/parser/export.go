package parser

import (
	"encoding/json"
	"errors"
	"time"
)

// Export is the document produced by the configuration export endpoint and
// accepted back by import.
type Export struct {
	ExportedAt time.Time     `json:"exportedAt"`
	Sites      []*SiteConfig `json:"sites"`
}

var ErrUnrecognizedConfig = errors.New("unrecognized config format")

// ParseImport interprets an imported configuration document, which may be a
// full export or a single site config.
func ParseImport(data []byte) ([]*SiteConfig, error) {
	// Sites is a pointer so an export of an empty database, which has a
	// "sites" key with zero entries, is distinguishable from a document
	// without one.
	var doc struct {
		Sites *[]*SiteConfig `json:"sites"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Sites != nil {
		return *doc.Sites, nil
	}

	var site SiteConfig
	if err := json.Unmarshal(data, &site); err != nil {
		return nil, ErrUnrecognizedConfig
	}
	if site.Name == "" && site.BaseURL == "" {
		return nil, ErrUnrecognizedConfig
	}
	return []*SiteConfig{&site}, nil
}
