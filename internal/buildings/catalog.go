package buildings

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// BuildingConfig is a single building entry of catalog.yaml.
type BuildingConfig struct {
	ID          string   `yaml:"id"`
	FullName    string   `yaml:"full_name"`
	DisplayName string   `yaml:"display_name,omitempty"`
	Path        string   `yaml:"path"`
	LegacyPaths []string `yaml:"legacy_paths,omitempty"`
	SourceNames []string `yaml:"source_names,omitempty"`
}

// SearchAliasConfig maps a colloquial search term onto a building display name.
type SearchAliasConfig struct {
	Term     string `yaml:"term"`
	Building string `yaml:"building"`
}

// Catalog is the root of catalog.yaml.
type Catalog struct {
	Buildings     []BuildingConfig    `yaml:"buildings"`
	SearchAliases []SearchAliasConfig `yaml:"search_aliases"`
}

// EmbeddedCatalog parses the catalog compiled into the binary.
func EmbeddedCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

// LoadCatalog reads, validates and normalizes a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog YAML and validates it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	cat.applyDefaults()

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return &cat, nil
}

// Validate checks the catalog for errors.
func (c *Catalog) Validate() error {
	if len(c.Buildings) == 0 {
		return fmt.Errorf("no buildings defined")
	}

	ids := make(map[string]bool)
	paths := make(map[string]string)
	names := make(map[string]string)

	for i, b := range c.Buildings {
		if b.ID == "" {
			return fmt.Errorf("building[%d]: id is required", i)
		}
		if !idPattern.MatchString(b.ID) {
			return fmt.Errorf("building[%d]: id '%s' is not a url-safe slug", i, b.ID)
		}
		if ids[b.ID] {
			return fmt.Errorf("building[%d]: duplicate id '%s'", i, b.ID)
		}
		ids[b.ID] = true

		if strings.TrimSpace(b.FullName) == "" {
			return fmt.Errorf("building[%d]: full_name is required", i)
		}
		names[b.FullName] = b.ID
		names[b.DisplayName] = b.ID

		for _, p := range append([]string{b.Path}, b.LegacyPaths...) {
			if p == "" {
				continue
			}
			if owner, ok := paths[p]; ok {
				return fmt.Errorf("building[%d]: path '%s' already used by '%s'", i, p, owner)
			}
			paths[p] = b.ID
		}
	}

	sources := make(map[string]string)
	for i, b := range c.Buildings {
		for _, s := range b.SourceNames {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("building[%d]: empty source name", i)
			}
			if owner, ok := sources[s]; ok {
				return fmt.Errorf("building[%d]: source name '%s' already used by '%s'", i, s, owner)
			}
			if owner, ok := names[s]; ok && owner != b.ID {
				return fmt.Errorf("building[%d]: source name '%s' is the name of '%s'", i, s, owner)
			}
			sources[s] = b.ID
		}
	}

	terms := make(map[string]bool)
	for i, a := range c.SearchAliases {
		term := strings.ToLower(strings.TrimSpace(a.Term))
		if term == "" {
			return fmt.Errorf("search_alias[%d]: term is required", i)
		}
		if terms[term] {
			return fmt.Errorf("search_alias[%d]: duplicate term '%s'", i, term)
		}
		terms[term] = true

		if !c.hasDisplayName(a.Building) {
			return fmt.Errorf("search_alias[%d]: unknown building '%s'", i, a.Building)
		}
	}

	return nil
}

func (c *Catalog) hasDisplayName(name string) bool {
	for _, b := range c.Buildings {
		if b.DisplayName == name {
			return true
		}
	}
	return false
}

func (c *Catalog) applyDefaults() {
	for i := range c.Buildings {
		b := &c.Buildings[i]
		b.ID = strings.TrimSpace(b.ID)
		b.FullName = strings.TrimSpace(b.FullName)
		b.DisplayName = strings.TrimSpace(b.DisplayName)
		if b.DisplayName == "" {
			b.DisplayName = b.FullName
		}
	}
}

// String returns a summary of the catalog.
func (c *Catalog) String() string {
	sources := 0
	for _, b := range c.Buildings {
		sources += len(b.SourceNames)
	}
	return fmt.Sprintf("Catalog: %d buildings, %d source names, %d search aliases",
		len(c.Buildings), sources, len(c.SearchAliases))
}
