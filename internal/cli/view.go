package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/villas/pkg/blueprint"
	"github.com/matzehuels/villas/pkg/errors"
	"github.com/matzehuels/villas/pkg/plan"
	"github.com/matzehuels/villas/pkg/villa"
)

// Plan view styles
var (
	cellCursorStyle = lipgloss.NewStyle().Reverse(true)
	cellRouteStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	cellRegionStyle = lipgloss.NewStyle().Foreground(colorGreen)
	cellWallStyle   = lipgloss.NewStyle().Foreground(colorDim)
	cellFloorStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	cellDoorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	cellStairStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	viewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	viewHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// viewModel is the bubbletea model for exploring and editing a plan.
// Edits carve tiles with the grid's replacement rules; ctrl+s writes the
// plan back to its blueprint file.
type viewModel struct {
	name     string
	path     string // blueprint file; empty disables saving
	plan     *plan.Plan
	analysis *plan.Analysis

	cursor      villa.Pos
	mark        *villa.Pos // route start while choosing a destination
	route       map[villa.Pos]bool
	showRegions bool
	dirty       bool

	status    string
	statusErr bool
}

func newViewModel(name, path string, p *plan.Plan) viewModel {
	return viewModel{
		name:     name,
		path:     path,
		plan:     p,
		analysis: p.Analyze(),
		status:   "ready",
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	b := m.plan.Bounds()

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor.I > 0 {
			m.cursor.I--
		}
	case "down", "j":
		if m.cursor.I < b.Rows()-1 {
			m.cursor.I++
		}
	case "left", "h":
		if m.cursor.J > 0 {
			m.cursor.J--
		}
	case "right", "l":
		if m.cursor.J < b.Columns()-1 {
			m.cursor.J++
		}
	case "f":
		m = m.place(villa.Floor)
	case "d":
		m = m.place(villa.Door)
	case "s":
		m = m.place(villa.Stair)
	case "r":
		m.showRegions = !m.showRegions
	case "p":
		m = m.routeStep()
	case "c":
		m.mark, m.route = nil, nil
		m.setStatus("route cleared")
	case "ctrl+s":
		m = m.save()
	}
	return m, nil
}

func (m viewModel) place(t villa.Tile) viewModel {
	if err := m.plan.Place(t, m.cursor.I, m.cursor.J); err != nil {
		m.fail(err)
		return m
	}
	m.analysis = m.plan.Analyze()
	m.route = nil
	m.dirty = true
	m.setStatus(fmt.Sprintf("placed %s at %s", t.Name(), m.cursor))
	return m
}

func (m viewModel) routeStep() viewModel {
	if m.mark == nil {
		start := m.cursor
		m.mark = &start
		m.route = nil
		m.setStatus(fmt.Sprintf("route from %s: move to the destination and press p", start))
		return m
	}
	from := *m.mark
	m.mark = nil
	cells, err := m.plan.Path(from, m.cursor)
	if err != nil {
		m.fail(err)
		return m
	}
	m.route = make(map[villa.Pos]bool, len(cells))
	for _, p := range cells {
		m.route[p] = true
	}
	m.setStatus(fmt.Sprintf("%s from %s to %s", plural(len(cells)-1, "step"), from, m.cursor))
	return m
}

func (m viewModel) save() viewModel {
	if m.path == "" {
		m.fail(errors.New(errors.ErrCodeUnsupported, "plan was read from stdin; nothing to save to"))
		return m
	}
	if err := blueprint.Save(m.path, blueprint.FromPlan(m.name, m.plan)); err != nil {
		m.fail(err)
		return m
	}
	m.dirty = false
	m.setStatus("saved " + m.path)
	return m
}

func (m *viewModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *viewModel) fail(err error) {
	m.status, m.statusErr = errors.UserMessage(err), true
}

func (m viewModel) View() string {
	var b strings.Builder

	title := m.name
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(viewHelpStyle.Render("←↑↓→ move  f/d/s floor/door/stair  p route  c clear  r regions  ctrl+s save  q quit"))
	b.WriteString("\n\n")

	current := m.analysis.RegionAt(m.cursor)
	for i, row := range m.plan.Grid().Rows() {
		for j, t := range row {
			b.WriteString(m.cell(villa.Pos{I: i, J: j}, t, current))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	tile := m.plan.Grid().At(m.cursor)
	info := fmt.Sprintf("%s  %s", StyleNumber.Render(m.cursor.String()), tile.Name())
	if current != "" {
		r, _ := m.analysis.Region(current)
		info += StyleDim.Render(fmt.Sprintf("  region %s (%s)", current, plural(r.Size(), "cell")))
	}
	b.WriteString(info)
	b.WriteString("\n")

	if m.statusErr {
		b.WriteString(markError.String() + " " + viewErrorStyle.Render(m.status))
	} else {
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n")

	if m.showRegions {
		b.WriteString("\n")
		t := newTable("Region", "Cells", "Stairs", "Rooms")
		for _, r := range m.analysis.Regions {
			t.Row(r.ID, fmt.Sprint(r.Size()), fmt.Sprint(r.Stairs), orDash(strings.Join(r.Rooms, ", ")))
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}
	return b.String()
}

func (m viewModel) cell(p villa.Pos, t villa.Tile, region string) string {
	glyph := string(t.Rune())
	style := cellFloorStyle
	switch t {
	case villa.Wall:
		glyph, style = "#", cellWallStyle
	case villa.Door:
		style = cellDoorStyle
	case villa.Stair:
		style = cellStairStyle
	}

	switch {
	case m.route[p]:
		glyph, style = "*", cellRouteStyle
	case m.showRegions && region != "" && m.analysis.RegionAt(p) == region:
		style = cellRegionStyle
	}
	if p == m.cursor {
		style = cellCursorStyle
	}
	return style.Render(glyph)
}

// viewCommand creates the view command that opens the interactive plan view.
func (c *CLI) viewCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Explore and edit a plan interactively",
		Long: `View opens a terminal view of the plan. Move the cursor to inspect tiles and
regions, carve floor, door and stair tiles, and trace routes between cells.
Edits follow the same replacement rules as blueprints; ctrl+s saves them back
to FILE.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			loaded, opts, err := c.loadPlan(ctx, cmd, runner, args[0], input)
			if err != nil {
				return err
			}
			m := newViewModel(opts.Name(loaded.Blueprint), opts.Source, loaded.Plan)

			final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout())).Run()
			if err != nil {
				return err
			}
			if vm, ok := final.(viewModel); ok && vm.dirty {
				printWarning("Unsaved changes to %s were discarded", vm.name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "blueprint format when reading stdin: toml, yaml, json")

	return cmd
}
