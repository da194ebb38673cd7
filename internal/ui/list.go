package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = scenarioItem{}
)

// scenarioItem wraps a scenario section to implement [list.Item].
type scenarioItem struct {
	index   int
	name    string
	section map[string]string
}

func (i scenarioItem) FilterValue() string { return i.name + " " + i.section["title"] }
func (i scenarioItem) Title() string       { return fmt.Sprintf("%d. %s", i.index, i.name) }
func (i scenarioItem) Description() string {
	title := i.section["title"]
	if title == "" {
		title = "(no title)"
	}
	desc := fmt.Sprintf("%s ← %s", title, strings.TrimSpace(i.section["source"]))
	if limit := i.section["limit"]; limit != "" {
		desc = fmt.Sprintf("%s • limit %s", desc, limit)
	}
	return desc
}
