package simulator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsx-protocol/vsx-go/internal/simulator"
)

func TestParseScenario_Full(t *testing.T) {
	yaml := `
zones:
  - zone: 1
    power: true
    volume: 121
    muted: false
    source: "04"
  - zone: 2
    power: false
    volume: 80
registry:
  - slot: 4
    name: DVD
  - slot: 19
    name: HDMI 1
noise:
  - FL020202020
`
	sc, err := simulator.ParseScenario([]byte(yaml))
	require.NoError(t, err)

	require.Len(t, sc.Zones, 2)
	assert.Equal(t, 1, sc.Zones[0].Zone)
	assert.True(t, sc.Zones[0].Power)
	assert.Equal(t, 121, sc.Zones[0].Volume)
	assert.Equal(t, "04", sc.Zones[0].Source)
	assert.Equal(t, 2, sc.Zones[1].Zone)
	assert.Empty(t, sc.Zones[1].Source)

	require.Len(t, sc.Registry, 2)
	assert.Equal(t, 4, sc.Registry[0].Slot)
	assert.Equal(t, "DVD", sc.Registry[0].Name)
	assert.Equal(t, "HDMI 1", sc.Registry[1].Name)

	assert.Equal(t, []string{"FL020202020"}, sc.Noise)
}

func TestParseScenario_EmptyIsValid(t *testing.T) {
	sc, err := simulator.ParseScenario([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, sc.Zones)
	assert.Empty(t, sc.Registry)
}

func TestParseScenario_Rejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"zone out of range", "zones:\n  - zone: 3\n"},
		{"zone zero", "zones:\n  - zone: 0\n"},
		{"duplicate zone", "zones:\n  - zone: 1\n  - zone: 1\n"},
		{"volume out of range", "zones:\n  - zone: 1\n    volume: 186\n"},
		{"negative volume", "zones:\n  - zone: 1\n    volume: -1\n"},
		{"source not two digits", "zones:\n  - zone: 1\n    source: \"4\"\n"},
		{"source not numeric", "zones:\n  - zone: 1\n    source: \"XY\"\n"},
		{"slot out of range", "registry:\n  - slot: 60\n    name: DVD\n"},
		{"negative slot", "registry:\n  - slot: -1\n    name: DVD\n"},
		{"nameless slot", "registry:\n  - slot: 4\n"},
		{"bad yaml", "zones: [\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := simulator.ParseScenario([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "den.yaml")
	yaml := `
zones:
  - zone: 1
    power: true
    volume: 100
    source: "04"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	sc, err := simulator.LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, sc.Zones, 1)
	assert.True(t, sc.Zones[0].Power)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := simulator.LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadScenario_InvalidFileNamesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zones:\n  - zone: 9\n"), 0644))

	_, err := simulator.LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}
