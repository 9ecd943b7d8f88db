package prediction

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
)

func TestBlender_DriftWeight(t *testing.T) {
	b := NewBlender(DefaultConstants())
	assert.InDelta(t, 0.15, b.DriftWeight(0), 1e-9)
	assert.InDelta(t, 0.075, b.DriftWeight(0.5), 1e-9)
	assert.InDelta(t, 0.05, b.DriftWeight(1), 1e-9)
	assert.InDelta(t, 0.05, b.DriftWeight(0.99), 1e-9)

	prev := math.Inf(1)
	for c := 0.0; c <= 1.0; c += 0.05 {
		w := b.DriftWeight(c)
		if w > prev+1e-12 {
			t.Fatalf("drift weight increased at confidence %.2f: %v > %v", c, w, prev)
		}
		if w < 0.05-1e-12 || w > 0.2+1e-12 {
			t.Fatalf("drift weight out of range at confidence %.2f: %v", c, w)
		}
		prev = w
	}
}

func TestBlender_ZeroConfidenceIsPassthrough(t *testing.T) {
	b := NewBlender(DefaultConstants())
	rolling := NewProfileBuilder(DefaultConstants()).Defaults()
	rolling.BaselineGlucose = 6.1
	rolling.CarbSensitivity = 0.8
	rolling.AvgPeakTimeMin = 70

	cal := b.Defaults()
	res := b.Blend(cal, rolling)

	assert.False(t, res.Applied)
	assert.Zero(t, res.DriftWeight)
	if diff := cmp.Diff(rolling, res.Profile); diff != "" {
		t.Fatalf("blended profile differs from rolling (-want +got):\n%s", diff)
	}
}

func TestBlender_MixesTowardCalibration(t *testing.T) {
	b := NewBlender(DefaultConstants())
	rolling := NewProfileBuilder(DefaultConstants()).Defaults()
	rolling.BaselineGlucose = 7.0
	rolling.CarbSensitivity = 1.0
	rolling.AvgPeakTimeMin = 100

	cal := Calibration{BaselineGlucose: 5.0, CarbSensitivity: 0.4, AvgPeakTimeMin: 40, Confidence: 1}
	res := b.Blend(cal, rolling)

	assert.True(t, res.Applied)
	assert.InDelta(t, 0.05, res.DriftWeight, 1e-9)
	assert.InDelta(t, 0.95*5.0+0.05*7.0, res.Profile.BaselineGlucose, 1e-9)
	assert.InDelta(t, 0.95*0.4+0.05*1.0, res.Profile.CarbSensitivity, 1e-9)
	assert.InDelta(t, 0.95*40+0.05*100, res.Profile.AvgPeakTimeMin, 1e-9)
	assert.Equal(t, rolling.AvgPeakDelta, res.Profile.AvgPeakDelta)
}

func TestBlender_FromRowClampsStoredValues(t *testing.T) {
	b := NewBlender(DefaultConstants())
	assert.Equal(t, b.Defaults(), b.FromRow(nil))

	got := b.FromRow(&types.UserCalibration{
		BaselineGlucose: 12,
		CarbSensitivity: math.NaN(),
		AvgPeakTimeMin:  5,
		ExerciseEffect:  0.9,
		SleepPenalty:    -1,
		NObservations:   -3,
		Confidence:      1.7,
	})
	want := Calibration{
		BaselineGlucose: 9,
		CarbSensitivity: 0.5,
		AvgPeakTimeMin:  25,
		ExerciseEffect:  0.35,
		SleepPenalty:    0,
		Confidence:      1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected calibration (-want +got):\n%s", diff)
	}
}
