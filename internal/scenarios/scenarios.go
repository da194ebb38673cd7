// package scenarios turns named configuration sections into typed playlist recipes and runs them
package scenarios

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/dzshuffled/internal/shared"
)

const (
	// Prefix marks a configuration section as a scenario.
	Prefix = "pl_"

	TypeShuffled = "shuffled"

	sourceSeparator = ", "
)

// Scenario is a parsed scenario section. The set of variants is closed: [Shuffled] is the only one.
type Scenario interface {
	ScenarioName() string
	scenario()
}

// Shuffled rebuilds Title from the shuffled union of Sources, keeping at most Limit tracks (0 keeps all).
type Shuffled struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Sources []string `json:"sources"`
	Limit   int      `json:"limit,omitempty"`
}

func (s Shuffled) ScenarioName() string { return s.Name }

func (Shuffled) scenario() {}

// ValidName reports whether name follows the scenario naming convention.
func ValidName(name string) bool {
	return strings.HasPrefix(name, Prefix) && len(name) > len(Prefix)
}

// CheckName is [ValidName] reporting failures as errors.
func CheckName(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q is not a scenario name, scenario names start with %q", shared.ErrInvalidScenario, name, Prefix)
	}
	return nil
}

// Parse validates a scenario section and builds its variant.
func Parse(name string, section map[string]string) (Scenario, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}

	switch kind := section["type"]; kind {
	case TypeShuffled:
		return parseShuffled(name, section)
	case "":
		return nil, fmt.Errorf("%w: %s must contain a type option", shared.ErrInvalidScenario, name)
	default:
		return nil, fmt.Errorf("%w: %s has unsupported type %q", shared.ErrInvalidScenario, name, kind)
	}
}

func parseShuffled(name string, section map[string]string) (Shuffled, error) {
	s := Shuffled{Name: name, Title: section["title"]}
	if s.Title == "" {
		return s, fmt.Errorf("%w: %s must contain a title option", shared.ErrInvalidScenario, name)
	}

	s.Sources = SplitSources(section["source"])
	if len(s.Sources) == 0 {
		return s, fmt.Errorf("%w: %s must contain a source option", shared.ErrInvalidScenario, name)
	}

	if raw, ok := section["limit"]; ok {
		limit, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return s, fmt.Errorf("%w: %s limit %q is not a number: %v", shared.ErrInvalidScenario, name, raw, err)
		}
		if limit < 1 {
			return s, fmt.Errorf("%w: %s limit must be at least 1, got %d", shared.ErrInvalidScenario, name, limit)
		}
		s.Limit = limit
	}
	return s, nil
}

// SplitSources splits a stored source list on ", ". Empty entries are dropped.
func SplitSources(raw string) []string {
	var sources []string
	for part := range strings.SplitSeq(raw, sourceSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			sources = append(sources, part)
		}
	}
	return sources
}
