// Package monitor renders the read-only "autodj watch" progress view: a
// bubbletea program that reloads and redisplays a Mix Plan's playlist
// manifest whenever fsnotify reports a write to it.
//
// Grounded on the teacher's view.go (RunViewMode's watcher lifecycle,
// waitForFileChange's debounced write-event loop, the bubbles/viewport
// scrolling setup) with the editing machinery (undo/redo, cursor-driven
// reordering) dropped: spec.md's Selector output is immutable once the
// Planner has written it, so this monitor never feeds a change back into
// the artifacts it watches.
package monitor

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

const (
	headerHeight = 2
	footerHeight = 2
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// entry is one parsed line pair out of the .m3u manifest.
type entry struct {
	durationSeconds int
	label           string
	path            string
}

type fileChangedMsg struct{}

type reloadedMsg struct {
	entries []entry
	err     error
}

type model struct {
	path       string
	entries    []entry
	watcher    *fsnotify.Watcher
	lastReload time.Time
	errMsg     string
	viewport   viewport.Model
	ready      bool
}

// Watch runs the bubbletea program that live-displays playlistPath
// (a .m3u manifest the Planner wrote) until the user quits.
func Watch(playlistPath string) error {
	entries, err := parseM3U(playlistPath)
	if err != nil {
		return fmt.Errorf("loading playlist manifest: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(playlistPath); err != nil {
		return fmt.Errorf("watching %s: %w", playlistPath, err)
	}

	m := model{path: playlistPath, entries: entries, watcher: watcher, lastReload: time.Now()}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return waitForChange(m.watcher)
}

func waitForChange(watcher *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					time.Sleep(100 * time.Millisecond) // let the Planner's atomic rename settle
					return fileChangedMsg{}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func reload(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := parseM3U(path)
		return reloadedMsg{entries: entries, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.SetContent(m.renderEntries())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case fileChangedMsg:
		return m, reload(m.path)
	case reloadedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.entries = msg.entries
			m.errMsg = ""
			m.lastReload = time.Now()
		}
		if m.ready {
			m.viewport.SetContent(m.renderEntries())
		}
		return m, waitForChange(m.watcher)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading...\n"
	}
	header := headerStyle.Render(fmt.Sprintf("watching %s", m.path))
	footer := fmt.Sprintf("last reload: %s   (q to quit, arrows/pgup/pgdn to scroll)", m.lastReload.Format(time.Kitchen))
	if m.errMsg != "" {
		footer = errorStyle.Render("reload error: "+m.errMsg) + "\n" + footer
	}
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func (m model) renderEntries() string {
	var b strings.Builder
	for i, e := range m.entries {
		fmt.Fprintf(&b, "%3d. %-40s %s\n", i+1, e.label, pathStyle.Render(fmt.Sprintf("%ds", e.durationSeconds)))
		b.WriteString(pathStyle.Render("     " + e.path + "\n"))
	}
	return b.String()
}

// parseM3U reads the extended M3U format Planner.Write emits: a header
// line, then one #EXT-INF duration/label line followed by the absolute
// path, repeated per track.
func parseM3U(path string) ([]entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	var out []entry
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, "#EXT-INF:") {
			continue
		}
		rest := strings.TrimPrefix(line, "#EXT-INF:")
		parts := strings.SplitN(rest, ",", 2)
		if len(parts) != 2 {
			continue
		}
		var dur int
		fmt.Sscanf(parts[0], "%d", &dur)
		if i+1 >= len(lines) {
			break
		}
		out = append(out, entry{durationSeconds: dur, label: parts[1], path: lines[i+1]})
		i++
	}
	return out, nil
}
