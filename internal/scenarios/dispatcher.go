package scenarios

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dzshuffled/internal/shared"
	"github.com/desertthunder/dzshuffled/internal/tasks"
)

// ConfigSource exposes configuration sections in file order. [shared.Store] implements it.
type ConfigSource interface {
	Sections() []string
	Section(name string) (map[string]string, bool)
}

// Dispatcher looks up scenarios in the configuration and hands them to the reconciliation engine.
type Dispatcher struct {
	config ConfigSource
	engine tasks.Reconciler
	logger *log.Logger
}

// NewDispatcher creates a dispatcher. The engine may be nil for read-only use such as listing.
func NewDispatcher(config ConfigSource, engine tasks.Reconciler, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{config: config, engine: engine, logger: logger}
}

// List returns scenario names in configuration order.
func (d *Dispatcher) List() []string {
	var names []string
	for _, name := range d.config.Sections() {
		if ValidName(name) {
			names = append(names, name)
		}
	}
	return names
}

// NameByIndex returns the scenario at zero-based position n of [Dispatcher.List].
func (d *Dispatcher) NameByIndex(n int) (string, error) {
	names := d.List()
	if n < 0 || n >= len(names) {
		if len(names) == 0 {
			return "", fmt.Errorf("%w: there is no scenario number %d, no scenarios are configured", shared.ErrUnknownScenario, n)
		}
		return "", fmt.Errorf("%w: there is no scenario number %d, valid numbers are 0 to %d", shared.ErrUnknownScenario, n, len(names)-1)
	}
	return names[n], nil
}

// IndexByName returns the position of name in [Dispatcher.List].
func (d *Dispatcher) IndexByName(name string) (int, error) {
	for i, candidate := range d.List() {
		if candidate == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: there is no scenario %q", shared.ErrUnknownScenario, name)
}

// Resolve accepts either a scenario number or a scenario name and returns the name.
func (d *Dispatcher) Resolve(input string) (string, error) {
	if n, err := strconv.Atoi(input); err == nil {
		return d.NameByIndex(n)
	}
	if _, err := d.IndexByName(input); err != nil {
		if cerr := CheckName(input); cerr != nil {
			return "", cerr
		}
		return "", err
	}
	return input, nil
}

// Config returns the raw section of a scenario.
func (d *Dispatcher) Config(name string) (map[string]string, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	section, ok := d.config.Section(name)
	if !ok {
		return nil, fmt.Errorf("%w: there is no scenario %q", shared.ErrUnknownScenario, name)
	}
	return section, nil
}

// Load reads and parses a scenario.
func (d *Dispatcher) Load(name string) (Scenario, error) {
	section, err := d.Config(name)
	if err != nil {
		return nil, err
	}
	return Parse(name, section)
}

// Exec loads the named scenario and runs it.
func (d *Dispatcher) Exec(ctx context.Context, name string, progress chan<- tasks.ProgressUpdate) (*tasks.ShuffleResult, error) {
	sc, err := d.Load(name)
	if err != nil {
		return nil, err
	}
	if d.engine == nil {
		return nil, fmt.Errorf("%w: reconciliation engine not initialized", shared.ErrServiceUnavailable)
	}

	switch sc := sc.(type) {
	case Shuffled:
		d.logger.Debug("running scenario", "name", sc.Name, "title", sc.Title, "sources", len(sc.Sources), "limit", sc.Limit)
		return d.engine.MakeShuffledPlaylist(ctx, progress, sc.Title, sc.Sources, sc.Limit)
	default:
		return nil, fmt.Errorf("%w: %s has no handler for %T", shared.ErrInvalidScenario, name, sc)
	}
}
