package simulator

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vsx-protocol/vsx-go/pkg/wire"
)

// Scenario seeds a Receiver from YAML: zone state, registry contents
// and noise broadcasts.
type Scenario struct {
	// Zones overlays the per-zone defaults. A zone may appear once.
	Zones []ZoneScenario `yaml:"zones"`

	// Registry replaces the default source registry wholesale when
	// non-empty. Slots not listed answer probes with a parameter error.
	Registry []RegistryEntry `yaml:"registry"`

	// Noise lines are broadcast before every reply.
	Noise []string `yaml:"noise"`
}

// ZoneScenario is the initial state of one zone.
type ZoneScenario struct {
	// Zone number (1 or 2).
	Zone int `yaml:"zone"`

	// Power is the initial power state.
	Power bool `yaml:"power"`

	// Volume in wire steps 0..185.
	Volume int `yaml:"volume"`

	// Muted is the initial mute state.
	Muted bool `yaml:"muted"`

	// Source is the active input code (2 digits). Empty keeps the
	// zone's default.
	Source string `yaml:"source,omitempty"`
}

// RegistryEntry names one source registry slot.
type RegistryEntry struct {
	// Slot index 0..59.
	Slot int `yaml:"slot"`

	// Name is the display name probes return for the slot.
	Name string `yaml:"name"`
}

// ParseScenario parses a scenario from YAML bytes and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	seen := make(map[int]bool)
	for _, zs := range sc.Zones {
		if zs.Zone < 1 || zs.Zone > 2 {
			return nil, fmt.Errorf("zone %d: only zones 1 and 2 are simulated", zs.Zone)
		}
		if seen[zs.Zone] {
			return nil, fmt.Errorf("zone %d listed twice", zs.Zone)
		}
		seen[zs.Zone] = true

		if zs.Volume < 0 || zs.Volume > wire.MaxVolume {
			return nil, fmt.Errorf("zone %d: volume %d out of range 0..%d", zs.Zone, zs.Volume, wire.MaxVolume)
		}
		if zs.Source != "" {
			if _, err := strconv.Atoi(zs.Source); err != nil || len(zs.Source) != 2 {
				return nil, fmt.Errorf("zone %d: source code %q is not 2 digits", zs.Zone, zs.Source)
			}
		}
	}

	for _, entry := range sc.Registry {
		if entry.Slot < 0 || entry.Slot >= wire.SourceRegistrySize {
			return nil, fmt.Errorf("registry slot %d out of range 0..%d", entry.Slot, wire.SourceRegistrySize-1)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("registry slot %d: name is required", entry.Slot)
		}
	}

	return &sc, nil
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// apply seeds a freshly constructed Receiver. Callers hold no lock yet;
// the receiver is not listening.
func (s *Scenario) apply(r *Receiver) {
	if len(s.Registry) > 0 {
		registry := make(map[int]string, len(s.Registry))
		for _, entry := range s.Registry {
			registry[entry.Slot] = entry.Name
		}
		r.registry = registry
	}

	for _, zs := range s.Zones {
		st := r.zones[wire.Zone(zs.Zone)]
		if st == nil {
			continue
		}
		st.power = zs.Power
		st.volume = zs.Volume
		st.muted = zs.Muted
		if zs.Source != "" {
			st.source = zs.Source
		}
	}

	r.opts.NoiseLines = append(r.opts.NoiseLines, s.Noise...)
}
