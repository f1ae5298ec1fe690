package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/linktitle/resolver"
	"github.com/lukemcguire/linktitle/result"
)

// ResolveProgressMsg reports progress for a single finished link.
type ResolveProgressMsg struct {
	Done   int
	Failed int
	Total  int
	Link   string
}

// BatchDoneMsg signals the batch has completed.
type BatchDoneMsg struct {
	Result *result.Result
	Err    error
}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. A closed channel yields no message; completion always arrives as
// BatchDoneMsg from startBatch.
func waitForProgress(ch <-chan resolver.ResolveEvent) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return ResolveProgressMsg{
			Done:   evt.Done,
			Failed: evt.Failed,
			Total:  evt.Total,
			Link:   evt.Link,
		}
	}
}
