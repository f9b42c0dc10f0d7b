package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkersting/slidegrid/pkg/pipeline"
)

// List styles for the progress display.
var (
	tuiDoneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	tuiFailedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	tuiPendingStyle = lipgloss.NewStyle().Foreground(colorDim)
	tuiActiveStyle  = lipgloss.NewStyle().Foreground(colorCyan)
)

// docDoneMsg reports that one input finished converting.
type docDoneMsg struct {
	index int
	path  string
	err   error
}

// batchDoneMsg reports that the whole batch finished.
type batchDoneMsg struct{ err error }

// tickMsg drives the spinner animation.
type tickMsg time.Time

// convertModel is the bubbletea model for live batch conversion progress.
type convertModel struct {
	inputs  []string
	status  []string // "pending", "active", "done", "failed"
	outputs []string
	frame   int
	err     error
	done    bool
}

func newConvertModel(inputs []string) convertModel {
	status := make([]string, len(inputs))
	for i := range status {
		status[i] = "pending"
	}
	if len(status) > 0 {
		status[0] = "active"
	}
	return convertModel{
		inputs:  inputs,
		status:  status,
		outputs: make([]string, len(inputs)),
	}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m convertModel) Init() tea.Cmd {
	return tick()
}

func (m convertModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case tickMsg:
		m.frame++
		return m, tick()
	case docDoneMsg:
		if msg.err != nil {
			m.status[msg.index] = "failed"
		} else {
			m.status[msg.index] = "done"
			m.outputs[msg.index] = msg.path
		}
		if next := msg.index + 1; next < len(m.status) && m.status[next] == "pending" {
			m.status[next] = "active"
		}
		return m, nil
	case batchDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

var tuiFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m convertModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Converting"))
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		switch m.status[i] {
		case "done":
			b.WriteString(tuiDoneStyle.Render(iconSuccess) + " " + input)
			if m.outputs[i] != "" {
				b.WriteString(StyleDim.Render(" " + iconArrow + " " + m.outputs[i]))
			}
		case "failed":
			b.WriteString(tuiFailedStyle.Render(iconError) + " " + input)
		case "active":
			frame := tuiFrames[m.frame%len(tuiFrames)]
			b.WriteString(tuiActiveStyle.Render(frame) + " " + input)
		default:
			b.WriteString(tuiPendingStyle.Render("· " + input))
		}
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
	}
	return b.String()
}

// runConvertInteractive converts inputs one at a time while a bubbletea
// program displays per-document progress. Only used in per-document mode,
// where inputs are independent.
func (c *CLI) runConvertInteractive(ctx context.Context, runner *pipeline.Runner, inputs []string, opts pipeline.Options, o *convertOpts) error {
	p := tea.NewProgram(newConvertModel(inputs), tea.WithContext(ctx))

	go func() {
		var firstErr error
		for i, input := range inputs {
			single := opts
			single.Inputs = []string{input}

			result, err := runner.Execute(ctx, single)
			if err != nil {
				firstErr = fmt.Errorf("%s: %w", input, err)
				p.Send(docDoneMsg{index: i, err: err})
				break
			}
			written, err := writeOutputs(result, single, o.output)
			if err != nil {
				firstErr = err
				p.Send(docDoneMsg{index: i, err: err})
				break
			}
			path := ""
			if len(written) > 0 {
				path = written[0]
			}
			p.Send(docDoneMsg{index: i, path: path})
		}
		p.Send(batchDoneMsg{err: firstErr})
	}()

	model, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := model.(convertModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
