package prediction

import "time"

// BucketFor maps the clock hour of t (in t's own location) to its time-of-day bucket:
// 05–10 morning, 10–14 midday, 14–18 afternoon, 18–22 evening, otherwise night.
func BucketFor(t time.Time) TimeBucket {
	switch h := t.Hour(); {
	case h >= 5 && h < 10:
		return BucketMorning
	case h >= 10 && h < 14:
		return BucketMidday
	case h >= 14 && h < 18:
		return BucketAfternoon
	case h >= 18 && h < 22:
		return BucketEvening
	default:
		return BucketNight
	}
}
