// Package scenarios maps configuration sections to playlist recipes.
//
// A section is a scenario when its name starts with [Prefix]; this keeps [system] and [auth] out of every listing.
// Scenario sections are parsed into the closed [Scenario] variant set at the boundary, so numeric fields are checked
// once and the [Dispatcher] only ever switches over typed values:
//
//	[pl_morning]
//	title = "Morning mix"
//	type = "shuffled"
//	source = "Jazz, Chill, Coffee"
//	limit = 200
//
// Scenarios are addressed by name or by their zero-based position in the configuration file.
package scenarios
