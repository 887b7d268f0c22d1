package escalation

import "time"

// Parts of day as the risk model encodes them.
const (
	PartMorning   = "Morning"
	PartAfternoon = "Afternoon"
	PartEvening   = "Evening"
	PartNight     = "Night"
)

// PartOfDay buckets a clock time the same way the risk model's training
// data was bucketed.
func PartOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return PartMorning
	case h >= 12 && h < 17:
		return PartAfternoon
	case h >= 17 && h < 21:
		return PartEvening
	default:
		return PartNight
	}
}
