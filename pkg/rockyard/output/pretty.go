package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with repository metadata.
func (f *PrettyFormatter) formatHeader(r *Report) string {
	var lines []string

	repoLabel := LabelStyle.Render("Repository:")
	repoValue := ValueStyle.Render(r.Location)
	lines = append(lines, fmt.Sprintf("%s %s", repoLabel, repoValue))

	var infoParts []string
	if r.Elapsed > 0 {
		loadedLabel := LabelStyle.Render("Loaded in:")
		loadedValue := ValueStyle.Render(formatElapsed(r.Elapsed))
		infoParts = append(infoParts, fmt.Sprintf("%s %s", loadedLabel, loadedValue))
	}
	if r.Cached {
		infoParts = append(infoParts, SuccessStyle.Render("cached"))
	} else {
		infoParts = append(infoParts, MutedStyle.Render("fresh"))
	}
	lines = append(lines, strings.Join(infoParts, "  "))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatTable builds the package table with NAME, VERSION and ARCH columns.
func (f *PrettyFormatter) formatTable(r *Report) string {
	if len(r.Packages) == 0 {
		return MutedStyle.Render("  No packages found\n")
	}

	var sb strings.Builder

	nameHeader := TableHeaderStyle.Render("NAME")
	verHeader := TableHeaderStyle.Render("VERSION")
	archHeader := TableHeaderStyle.Render("ARCH")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", nameHeader, verHeader, archHeader))

	nameWidth, verWidth := 4, 7
	for _, p := range r.Packages {
		if len(p.Name) > nameWidth {
			nameWidth = len(p.Name)
		}
		if len(p.Version) > verWidth {
			verWidth = len(p.Version)
		}
	}

	for _, p := range r.Packages {
		name := NameStyle.Render(padRight(p.Name, nameWidth))
		version := ValueStyle.Render(padRight(p.Version, verWidth))
		arch := MutedStyle.Render(p.Arch)
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", name, version, arch))
	}

	return sb.String()
}

// formatFooter builds the footer box with summary counts.
func (f *PrettyFormatter) formatFooter(r *Report) string {
	var parts []string

	packagesLabel := LabelStyle.Render("Packages:")
	packagesValue := ValueStyle.Render(humanize.Comma(int64(r.Stats.Packages)))
	parts = append(parts, fmt.Sprintf("%s %s", packagesLabel, packagesValue))

	versionsLabel := LabelStyle.Render("Versions:")
	versionsValue := ValueStyle.Render(humanize.Comma(int64(r.Stats.Versions)))
	parts = append(parts, fmt.Sprintf("%s %s", versionsLabel, versionsValue))

	modulesLabel := LabelStyle.Render("Modules:")
	modulesValue := ValueStyle.Render(humanize.Comma(int64(r.Stats.Modules)))
	parts = append(parts, fmt.Sprintf("%s %s", modulesLabel, modulesValue))

	commandsLabel := LabelStyle.Render("Commands:")
	commandsValue := ValueStyle.Render(humanize.Comma(int64(r.Stats.Commands)))
	parts = append(parts, fmt.Sprintf("%s %s", commandsLabel, commandsValue))

	return FooterBox.Render(strings.Join(parts, "  "))
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatElapsed formats a duration in a human-friendly way.
func formatElapsed(d interface{ Seconds() float64 }) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
