package metabolic

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/pkg/pointers"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// sleepDays builds n consecutive days ending yesterday with sleep alternating 6h/8h and a
// score that moves four points per hour of sleep.
func sleepDays(n int) []*types.DailyHealthMetric {
	var out []*types.DailyHealthMetric
	for i := 1; i <= n; i++ {
		sleep := 6.0
		if i%2 == 0 {
			sleep = 8.0
		}
		out = append(out, &types.DailyHealthMetric{
			Date:           dayStart(now).AddDate(0, 0, -i),
			SleepHours:     pointers.Float64(sleep),
			MetabolicScore: pointers.Float64(70 + 4*(sleep-7)),
		})
	}
	return out
}

func TestBuilder_TenValidDaysIsUnknown(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	p := b.Build(uuid.New(), sleepDays(10), now)

	s := p.Sensitivities.Data()
	assert.Equal(t, types.SensitivityUnknown, s.Sleep)
	assert.Equal(t, types.SensitivityUnknown, s.Steps)
	assert.Equal(t, types.SensitivityUnknown, s.Recovery)
	assert.Equal(t, 10, p.ValidDaysForSensitivity)
	assert.Equal(t, 10, p.DataCoverageDays)
}

func TestBuilder_GradesSleepSensitivity(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	p := b.Build(uuid.New(), sleepDays(20), now)

	base := p.Baselines.Data()
	require.NotNil(t, base.SleepHours)
	assert.InDelta(t, 7.0, *base.SleepHours, 1e-9)
	require.NotNil(t, base.MetabolicScore)
	assert.InDelta(t, 70.0, *base.MetabolicScore, 1e-9)
	assert.Nil(t, base.Steps)
	assert.Nil(t, base.RestingHR)

	s := p.Sensitivities.Data()
	assert.Equal(t, types.SensitivityHigh, s.Sleep)
	assert.Equal(t, types.SensitivityUnknown, s.Steps)
	assert.Equal(t, 20, p.ValidDaysForSensitivity)
	assert.Equal(t, now, p.ComputedAt)
}

func TestBuilder_SensitivityLevels(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	cases := map[float64]types.SensitivityLevel{
		4.0: types.SensitivityHigh,
		2.5: types.SensitivityMedium,
		2.0: types.SensitivityMedium,
		1.0: types.SensitivityLow,
		-5:  types.SensitivityHigh,
	}
	for slope, want := range cases {
		rows := sleepDays(16)
		for _, r := range rows {
			*r.MetabolicScore = 70 + slope*(*r.SleepHours-7)
		}
		got := b.Build(uuid.New(), rows, now).Sensitivities.Data().Sleep
		assert.Equal(t, want, got, "slope %v", slope)
	}
}

func TestBuilder_StepsAndRecovery(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	var rows []*types.DailyHealthMetric
	for i := 1; i <= 20; i++ {
		st, h := 4000.0, 30.0
		if i%2 == 0 {
			st, h = 6000.0, 70.0
		}
		rows = append(rows, &types.DailyHealthMetric{
			Date:           dayStart(now).AddDate(0, 0, -i),
			Steps:          pointers.Float64(st),
			HRVMs:          pointers.Float64(h),
			MetabolicScore: pointers.Float64(70 + 0.003*(st-5000)),
		})
	}
	p := b.Build(uuid.New(), rows, now)
	s := p.Sensitivities.Data()
	assert.Equal(t, types.SensitivityMedium, s.Steps)
	assert.Equal(t, types.SensitivityLow, s.Recovery)
	assert.Equal(t, types.SensitivityUnknown, s.Sleep)
	assert.False(t, p.Patterns.Data().ActivitySensitive)
}

func TestBuilder_Patterns(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	var rows []*types.DailyHealthMetric
	for i := 1; i <= 14; i++ {
		d := dayStart(now).AddDate(0, 0, -i)
		sleep := 6.5
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			sleep = 9.0
		}
		rows = append(rows, &types.DailyHealthMetric{
			Date:       d,
			SleepHours: pointers.Float64(sleep),
			Steps:      pointers.Float64(3000),
		})
	}
	pt := b.Build(uuid.New(), rows, now).Patterns.Data()
	assert.True(t, pt.WeekendDisruption)
	assert.True(t, pt.SleepSensitive)
	assert.True(t, pt.ActivitySensitive)

	few := b.Build(uuid.New(), rows[:3], now).Patterns.Data()
	assert.False(t, few.WeekendDisruption)
}

func TestBuilder_WindowsAndEmptyInput(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	old := &types.DailyHealthMetric{Date: dayStart(now).AddDate(0, 0, -60), SleepHours: pointers.Float64(4)}
	ancient := &types.DailyHealthMetric{Date: dayStart(now).AddDate(0, 0, -120), SleepHours: pointers.Float64(4)}
	empty := &types.DailyHealthMetric{Date: dayStart(now).AddDate(0, 0, -2)}

	p := b.Build(uuid.New(), []*types.DailyHealthMetric{old, ancient, empty, nil}, now)
	assert.Equal(t, 1, p.DataCoverageDays)
	assert.Nil(t, p.Baselines.Data().SleepHours)
	assert.False(t, p.Patterns.Data().SleepSensitive)
	assert.Zero(t, p.ValidDaysForSensitivity)
}

func TestBuilder_Freshness(t *testing.T) {
	b := NewBuilder(DefaultConfig())

	d, hours := b.Freshness(nil, now, false)
	assert.Equal(t, DecisionCompute, d)
	assert.Nil(t, hours)

	row := &types.UserMetabolicProfile{ComputedAt: now.Add(-3 * time.Hour)}
	d, hours = b.Freshness(row, now, false)
	assert.Equal(t, DecisionServeCached, d)
	require.NotNil(t, hours)
	assert.Equal(t, 3.0, *hours)

	d, _ = b.Freshness(row, now, true)
	assert.Equal(t, DecisionCompute, d)

	row.ComputedAt = now.Add(-24 * time.Hour)
	d, hours = b.Freshness(row, now, false)
	assert.Equal(t, DecisionCompute, d)
	assert.Equal(t, 24.0, *hours)
}

func TestMedian(t *testing.T) {
	_, ok := median(nil)
	assert.False(t, ok)
	m, _ := median([]float64{3, 1, 2})
	assert.Equal(t, 2.0, m)
	m, _ = median([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, m)
}
