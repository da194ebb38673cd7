// Package tasks rebuilds playlists in the user's library with real-time progress reporting.
//
// # Core Operation
//
// [Reconciler.MakeShuffledPlaylist] converges a target playlist onto the shuffled union of its sources:
//
//  1. Reset the target: create it when absent, clear it when unique, and when several playlists share the title
//     remove them all and create a single fresh one. The description records the reset time.
//  2. Validate sources: every source title must match at least one playlist, otherwise the run fails with
//     [shared.ErrPlaylistNotFound] naming the missing titles. No source tracks are fetched before this check.
//  3. Gather tracks from every playlist matching each source title, in source order.
//  4. Deduplicate by track id, first occurrence wins.
//  5. Shuffle and truncate to the limit, if any.
//  6. Add the result to the target in chunks.
//
// Running the same scenario twice leaves the target with the same set of tracks (order aside).
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, so a slow or absent reader only loses messages.
//
// # Implementation
//
// [PlaylistEngine] implements [Reconciler] with dependencies on:
//   - [services.Library] : the Deezer playlist operations
//   - [math/rand/v2] : shuffle source, replaceable with [PlaylistEngine.WithRand]
//   - a clock for the description, replaceable with [PlaylistEngine.WithClock]
package tasks
