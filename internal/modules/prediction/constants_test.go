package prediction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConstants_Validate(t *testing.T) {
	require.NoError(t, DefaultConstants().Validate())
}

func TestEmbeddedConstants_MatchCompiledDefaults(t *testing.T) {
	data, err := constantsFS.ReadFile("prediction.yaml")
	require.NoError(t, err)
	got, err := ParseConstants(data)
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConstants(), got); diff != "" {
		t.Fatalf("prediction.yaml drifted from DefaultConstants (-want +got):\n%s", diff)
	}
}

func TestParseConstants_OverlaysDefaults(t *testing.T) {
	got, err := ParseConstants([]byte("risk:\n  floor_risk: 20\n"))
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Risk.FloorRisk)
	assert.Equal(t, DefaultConstants().Risk.LogScale, got.Risk.LogScale)
	assert.Equal(t, 1.15, got.Risk.TimeModifiers[BucketEvening])
}

func TestParseConstants_Rejects(t *testing.T) {
	cases := map[string]string{
		"inverted range":      "curve:\n  peak_delta_range: {min: 5, max: 1}\n",
		"non-positive floor":  "curve:\n  peak_delta_range: {min: 0, max: 8}\n",
		"weight above one":    "curve:\n  personal_weights: {high: 1.4}\n",
		"tiers not monotonic": "profile:\n  high_tier: {min_days: 3, min_readings: 20}\n",
		"blend weights":       "blend:\n  min_weight: 0.5\n  max_weight: 0.2\n",
		"default quality":     "default_profile:\n  data_quality: high\n",
		"malformed":           "risk: [1, 2\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConstants([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadConstants_FallsBackToDefaults(t *testing.T) {
	t.Setenv(constantsPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	if diff := cmp.Diff(DefaultConstants(), LoadConstants(nil)); diff != "" {
		t.Fatalf("unexpected constants (-want +got):\n%s", diff)
	}
}

func TestLoadConstants_ReadsOverridePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prediction.yaml")
	require.NoError(t, os.WriteFile(path, []byte("similar:\n  max_matches: 3\n"), 0o600))
	t.Setenv(constantsPathEnv, path)
	assert.Equal(t, 3, LoadConstants(nil).Similar.MaxMatches)
}
