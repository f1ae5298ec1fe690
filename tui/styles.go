package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/linktitle/result"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	cellStyle        = lipgloss.NewStyle()
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// kindOrder defines the display order for failure kinds (most to least actionable).
var kindOrder = []result.ErrorKind{
	result.KindHTTP,
	result.KindUnsupportedContentType,
	result.KindTimeout,
	result.KindNetwork,
	result.KindRobotsDisallowed,
	result.KindRedirectDepth,
	result.KindInvalidLink,
	result.KindDOILookup,
	result.KindUnknown,
}

// RenderSummary produces a Lip Gloss styled summary of a resolution batch.
func RenderSummary(res *result.Result) string {
	if res == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder
	failures := res.Failures()

	if len(failures) == 0 {
		builder.WriteString(successStyle.Render("All links resolved!"))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"Resolved %d links in %s",
			res.Stats.Total,
			res.Stats.Duration.Round(time.Millisecond),
		)))
		builder.WriteString("\n")
		return builder.String()
	}

	grouped := make(map[result.ErrorKind][]result.Resolution)
	for _, failure := range failures {
		kind := failure.Kind
		if !knownKind(kind) {
			kind = result.KindUnknown
		}
		grouped[kind] = append(grouped[kind], failure)
	}

	for _, kind := range kindOrder {
		links := grouped[kind]
		if len(links) == 0 {
			continue
		}

		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatKind(kind), len(links))))
		builder.WriteString("\n")

		rows := make([][]string, 0, len(links))
		for _, link := range links {
			status := link.Error
			if link.StatusCode != 0 {
				status = fmt.Sprintf("%d", link.StatusCode)
			}
			rows = append(rows, []string{link.Link, status, link.Title})
		}

		kindTable := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("Link", "Status", "Fallback Title").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 1 {
					return statusErrorStyle
				}
				return cellStyle
			}).
			Rows(rows...)

		builder.WriteString(kindTable.Render())
		builder.WriteString("\n\n")
	}

	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Resolved %d of %d links, %d failed (%s)",
		res.Stats.Resolved,
		res.Stats.Total,
		res.Stats.Failed,
		res.Stats.Duration.Round(time.Millisecond),
	)))
	builder.WriteString("\n")

	return builder.String()
}

func knownKind(kind result.ErrorKind) bool {
	for _, k := range kindOrder {
		if k == kind {
			return true
		}
	}
	return false
}
