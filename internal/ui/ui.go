package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/dzshuffled/internal/models"
	"github.com/desertthunder/dzshuffled/internal/scenarios"
	"github.com/desertthunder/dzshuffled/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ScenarioListView ViewState = iota
	DetailView
	RunView
	ResultView
)

// number of progress lines kept on screen while a scenario runs
const progressLines = 8

// ScenarioRunner is the subset of [scenarios.Dispatcher] the TUI drives.
type ScenarioRunner interface {
	List() []string
	Config(name string) (map[string]string, error)
	Load(name string) (scenarios.Scenario, error)
	Exec(ctx context.Context, name string, progress chan<- tasks.ProgressUpdate) (*tasks.ShuffleResult, error)
}

// PlaylistLister fetches the user's playlists to check scenario sources.
type PlaylistLister interface {
	MyPlaylists(ctx context.Context, forced bool) ([]models.Playlist, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	runner       ScenarioRunner
	library      PlaylistLister
	width        int
	height       int
	scenarioList list.Model
	playlists    []models.Playlist
	playlistsErr error
	selected     string
	scenario     scenarios.Scenario
	parseErr     error
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     []tasks.ProgressUpdate
	spinner      spinner.Model
	result       *tasks.ShuffleResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model listing every scenario known to runner.
//
// library may be nil, in which case sources are not checked against the account.
func NewModel(ctx context.Context, runner ScenarioRunner, library PlaylistLister) *Model {
	m := &Model{
		ctx:     ctx,
		view:    ScenarioListView,
		runner:  runner,
		library: library,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.scenarioList = list.New(m.scenarioItems(), list.NewDefaultDelegate(), 0, 0)
	m.scenarioList.Title = "Scenarios"
	return m
}

// Run starts the TUI program and blocks until the user quits.
func Run(ctx context.Context, runner ScenarioRunner, library PlaylistLister) error {
	p := tea.NewProgram(NewModel(ctx, runner, library), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init fetches the account's playlists so sources can be checked.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists(false)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scenarioList.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ScenarioListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case RunView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != RunView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	if m.view == ScenarioListView {
		m.scenarioList, cmd = m.scenarioList.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsFetched)
		m.playlists = data.playlists
		m.playlistsErr = data.err
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = append(m.progress, update)
		if len(m.progress) > progressLines {
			m.progress = m.progress[len(m.progress)-progressLines:]
		}
		return m, m.waitForProgress()

	case MsgRunComplete:
		data := msg.data.(runComplete)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.done = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ScenarioListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.scenarioList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.scenarioList, cmd = m.scenarioList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.scenarioList.SelectedItem().(scenarioItem); ok {
			m.selectScenario(item.name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.scenarioList, cmd = m.scenarioList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ScenarioListView
		return m, nil
	case key.Matches(msg, m.keys.run), key.Matches(msg, m.keys.enter):
		if m.parseErr != nil {
			return m, nil
		}
		m.view = RunView
		return m, tea.Batch(m.startRun(), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.again), key.Matches(msg, m.keys.back):
		m.view = ScenarioListView
		m.result = nil
		m.err = nil
		m.progress = nil
		return m, m.fetchPlaylists(true)
	}
	return m, nil
}

func (m *Model) selectScenario(name string) {
	m.selected = name
	m.scenario, m.parseErr = m.runner.Load(name)
	m.view = DetailView
}

func (m *Model) scenarioItems() []list.Item {
	names := m.runner.List()
	items := make([]list.Item, 0, len(names))
	for i, name := range names {
		section, err := m.runner.Config(name)
		if err != nil {
			continue
		}
		items = append(items, scenarioItem{index: i, name: name, section: section})
	}
	return items
}

func (m *Model) fetchPlaylists(forced bool) tea.Cmd {
	if m.library == nil {
		return nil
	}
	return func() tea.Msg {
		playlists, err := m.library.MyPlaylists(m.ctx, forced)
		return playlistsFetchedMsg(playlists, err)
	}
}

// startRun executes the selected scenario in the background.
//
// The completion message is queued before the progress channel closes, so waitForProgress always finds it.
func (m *Model) startRun() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.done = done
	m.progress = nil

	name := m.selected
	go func() {
		result, err := m.runner.Exec(m.ctx, name, progress)
		done <- runCompleteMsg(result, err)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	return func() tea.Msg {
		if progress == nil {
			return runCompleteMsg(m.result, m.err)
		}

		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderList() string {
	var warning string
	if m.playlistsErr != nil {
		warning = "\n" + styles.warn.Render(fmt.Sprintf("Could not fetch playlists: %v", m.playlistsErr))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s%s\n\n%s", m.scenarioList.View(), warning, helpView)
}

func (m *Model) renderDetail() string {
	title := styles.title.Render(m.selected)

	if m.parseErr != nil {
		body := styles.err.Render(fmt.Sprintf("Invalid scenario: %v", m.parseErr))
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n%s\n\n%s", title, body, helpView)
	}

	var b strings.Builder
	switch s := m.scenario.(type) {
	case scenarios.Shuffled:
		fmt.Fprintf(&b, "Type: %s\n", scenarios.TypeShuffled)
		fmt.Fprintf(&b, "Target: %s\n", s.Title)
		if s.Limit > 0 {
			fmt.Fprintf(&b, "Limit: %d tracks\n", s.Limit)
		}
		b.WriteString("Sources:\n")
		for _, source := range s.Sources {
			b.WriteString("  " + m.sourceStatus(source) + "\n")
		}
	}

	runKey := key.NewBinding(key.WithKeys("y"), key.WithHelp("y/enter", "run"))
	helpView := m.help.ShortHelpView([]key.Binding{runKey, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, styles.box.Render(strings.TrimRight(b.String(), "\n")), helpView)
}

// sourceStatus reports whether a source title exists in the fetched playlists.
func (m *Model) sourceStatus(source string) string {
	if m.playlists == nil {
		return "• " + source
	}
	matches := models.FilterByTitle(m.playlists, source)
	if len(matches) == 0 {
		return styles.err.Render("✗ " + source + " (missing)")
	}
	tracks := 0
	for _, p := range matches {
		tracks += p.TrackCount
	}
	return styles.ok.Render(fmt.Sprintf("✓ %s (%d playlists, %d tracks)", source, len(matches), tracks))
}

func (m *Model) renderRun() string {
	title := styles.title.Render(fmt.Sprintf("Running %s", m.selected))

	var b strings.Builder
	for i, update := range m.progress {
		line := update.Message
		if i == len(m.progress)-1 {
			b.WriteString(m.spinner.View() + " " + line + "\n")
		} else {
			b.WriteString(styles.help.Render("  "+line) + "\n")
		}
	}
	if len(m.progress) == 0 {
		b.WriteString(m.spinner.View() + " Starting...\n")
	}
	return fmt.Sprintf("%s\n%s", title, b.String())
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.again, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("✗ %s failed: %v", m.selected, m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render(fmt.Sprintf("✓ %s complete", m.selected))
	action := "cleared"
	if m.result.Created {
		action = "created"
	}
	info := fmt.Sprintf(
		"Playlist: %s (%d, %s)\nSources: %s\nTracks found: %d\nDuplicates: %d\nTracks added: %d",
		m.result.Title,
		m.result.PlaylistID,
		action,
		strings.Join(m.result.Sources, ", "),
		m.result.Found,
		m.result.Duplicates,
		m.result.Added,
	)
	if m.result.Removed > 0 {
		info += "\n" + styles.warn.Render(fmt.Sprintf("Removed %d duplicate target playlists", m.result.Removed))
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, info, helpView)
}
