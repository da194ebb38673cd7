// Package ui implements an interactive scenario picker using bubbletea's Elm architecture.
//
// The TUI walks through a single scenario run:
//  1. [ScenarioListView] : Browse the scenarios defined in the config file
//  2. [DetailView] : Inspect the target and check each source against the account
//  3. [RunView] : Follow progress updates while the scenario executes
//  4. [ResultView] : Review what was removed, gathered and added
//
// Progress updates flow through a channel from the scenario dispatcher, one message per read,
// so the engine never blocks on rendering.
package ui
