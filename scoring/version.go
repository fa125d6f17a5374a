package scoring

import "time"

// Version selects which generation of the arena scoring rules applies.
// It gates a single behavior: under V1, a full rebuild never suppresses
// the value of a repeated draw.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

var v2Cutover = time.Date(2020, time.April, 21, 0, 0, 0, 0, time.UTC)

// VersionOf returns the rule generation in force at the given instant.
// Tournaments started strictly before the cutover are scored under V1.
func VersionOf(at time.Time) Version {
	if at.Before(v2Cutover) {
		return V1
	}
	return V2
}
