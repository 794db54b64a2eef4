package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/olivierh59500/specks/internal/config"
	"github.com/olivierh59500/specks/internal/sim"
	"github.com/olivierh59500/specks/internal/stats"
)

var (
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func swatch(m *sim.ColorMatrix, c int) string {
	rgba := m.Color(c)
	hex := fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

// report renders the final statistics and the kinetic energy trace
func report(s *sim.System, cfg config.Config, h *stats.History) string {
	last, _ := h.Last()
	p := s.Params()

	rows := []string{
		headerStyle.Render("specks run"),
		row("ticks", fmt.Sprintf("%d", last.Tick)),
		row("particles", fmt.Sprintf("%d", last.Particles)),
		row("box / radius", fmt.Sprintf("%.1f / %.1f", p.BoxSize, p.InteractionRadius)),
		row("beta / friction", fmt.Sprintf("%.2f / %.2f", p.RepulsionRatio, p.Friction)),
		row("boundary", p.Boundary.String()),
		row("timestep", fmt.Sprintf("1/%d s", cfg.TPS)),
		row("kinetic energy", fmt.Sprintf("%.3f", last.KineticEnergy)),
		row("speed mean ± sd", fmt.Sprintf("%.3f ± %.3f", last.MeanSpeed, last.SpeedStdDev)),
		row("speed max", fmt.Sprintf("%.3f", last.MaxSpeed)),
	}

	m := s.ColorMatrix()
	counts := make([]string, len(last.ColorCounts))
	for c, n := range last.ColorCounts {
		counts[c] = fmt.Sprintf("%s %d", swatch(m, c), n)
	}
	rows = append(rows, row("colors", strings.Join(counts, "  ")))

	out := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if energies := h.Energies(); len(energies) > 1 {
		graph := asciigraph.Plot(energies,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("Kinetic energy"))
		out = lipgloss.JoinVertical(lipgloss.Left, out, graphStyle.Render(graph))
	}
	return out
}
