package avr

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// catalogEntry is one well-known input in the embedded catalog.
type catalogEntry struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

var (
	catalogOnce sync.Once
	catalog     []catalogEntry
)

// loadCatalog parses the embedded catalog once. The file is compiled
// in, so a parse failure is a build defect and panics.
func loadCatalog() []catalogEntry {
	catalogOnce.Do(func() {
		var doc struct {
			Sources []catalogEntry `yaml:"sources"`
		}
		if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
			panic(fmt.Sprintf("avr: parsing embedded catalog: %v", err))
		}
		catalog = doc.Sources
	})
	return catalog
}

// DefaultSources returns the built-in name to code catalog of
// well-known inputs. Receivers differ in which of these they actually
// have; the catalog exists to resolve configured allowlists without a
// learning pass. The returned map is a copy.
func DefaultSources() map[string]string {
	entries := loadCatalog()
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Code
	}
	return out
}
