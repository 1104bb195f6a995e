// Package schedule defines the Schedule value object: one recurring job with a
// name, a recurrence kind, a contextual day value and a local time of day.
//
// Day ranges are not checked here; backends validate them when translating a
// Schedule into their native representation.
package schedule
