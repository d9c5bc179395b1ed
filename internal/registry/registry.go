package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rddelacosta/UKBinCollectionData/internal/urlutil"
)

// Council is one configured waste-collection source.
type Council struct {
	Slug          string `yaml:"slug"`
	Name          string `yaml:"name"`
	WasteURL      string `yaml:"waste_url"`
	Source        string `yaml:"source"` // ics, html, or auto
	AnchorPhrase  string `yaml:"anchor_phrase"`
	Postcode      string `yaml:"postcode"`
	UPRN          string `yaml:"uprn"`
	NeedsPostcode bool   `yaml:"needs_postcode"`
	NeedsUPRN     bool   `yaml:"needs_uprn"`
}

type file struct {
	Councils []Council `yaml:"councils"`
}

// Registry is the loaded council catalogue, keyed by slug.
type Registry struct {
	councils map[string]Council
	order    []string
}

var validSources = map[string]struct{}{
	"ics":  {},
	"html": {},
	"auto": {},
}

// Load reads and validates a councils file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read councils file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse councils file: %w", err)
	}
	return New(f.Councils)
}

// New builds a registry from already-decoded entries, normalizing URLs and
// defaulting the source kind to auto.
func New(councils []Council) (*Registry, error) {
	r := &Registry{councils: make(map[string]Council, len(councils))}
	for i, c := range councils {
		c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
		if c.Slug == "" {
			return nil, fmt.Errorf("council %d: slug is required", i)
		}
		if _, ok := r.councils[c.Slug]; ok {
			return nil, fmt.Errorf("council %q: duplicate slug", c.Slug)
		}
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("council %q: name is required", c.Slug)
		}

		normalized, host, err := urlutil.Normalize(c.WasteURL)
		if err != nil || host == "" {
			return nil, fmt.Errorf("council %q: bad waste_url %q", c.Slug, c.WasteURL)
		}
		c.WasteURL = normalized

		if c.Source == "" {
			c.Source = "auto"
		}
		if _, ok := validSources[c.Source]; !ok {
			return nil, fmt.Errorf("council %q: unknown source %q", c.Slug, c.Source)
		}

		r.councils[c.Slug] = c
		r.order = append(r.order, c.Slug)
	}
	sort.Strings(r.order)
	return r, nil
}

func (r *Registry) Get(slug string) (Council, bool) {
	c, ok := r.councils[strings.ToLower(strings.TrimSpace(slug))]
	return c, ok
}

// All returns the catalogue ordered by slug.
func (r *Registry) All() []Council {
	out := make([]Council, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.councils[slug])
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.councils)
}
