package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/orchestrator"
)

// #region main

func main() {
	eventsPath := flag.String("events", "data/orchestration_events.jsonl", "path to the events JSONL file")
	conflicts := flag.Bool("conflicts", false, "show conflicts instead of events")
	last := flag.Int("last", 20, "show N most recent records")
	id := flag.String("id", "", "show a single record in detail")
	pending := flag.Bool("pending", false, "only unexecuted events or unresolved conflicts")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	var err error
	if *conflicts {
		err = runConflicts(orchestrator.ConflictsPath(*eventsPath), *id, *last, *pending, *jsonOut)
	} else {
		err = runEvents(*eventsPath, *id, *last, *pending, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region styles

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	openStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD43B"))
)

func stateLabel(open bool) string {
	if open {
		return openStyle.Render("open")
	}
	return doneStyle.Render("closed")
}

// #endregion styles

// #region events

func runEvents(path, id string, last int, pendingOnly, jsonOut bool) error {
	// duplicates collapse to the last write, the same way the orchestrator loads them
	events, err := latest(orchestrator.NewJSONLRepository[*orchestrator.Event](path),
		func(e *orchestrator.Event) string { return e.EventID })
	if err != nil {
		return err
	}

	if id != "" {
		for _, ev := range events {
			if ev.EventID == id {
				return printEventDetail(ev, jsonOut)
			}
		}
		return fmt.Errorf("event %s not found", id)
	}

	var rows []*orchestrator.Event
	for _, ev := range events {
		if pendingOnly && !ev.Pending() {
			continue
		}
		rows = append(rows, ev)
	}
	rows = tail(rows, last)
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no events found")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-44s  %-10s  %-24s  %-6s  %s",
		"Event", "Priority", "Type", "State", "Title")))
	for _, ev := range rows {
		fmt.Printf("%-44s  %-10s  %-24s  %-6s  %s\n",
			ev.EventID, ev.Priority, ev.EventType, stateLabel(ev.Pending()), shorten(ev.Title, 48))
	}
	fmt.Printf("\n%d shown of %d\n", len(rows), len(events))
	return nil
}

func printEventDetail(ev *orchestrator.Event, jsonOut bool) error {
	if jsonOut {
		return printJSON(ev)
	}
	fmt.Println(headerStyle.Render(ev.Title))
	fmt.Printf("ID:        %s\n", ev.EventID)
	fmt.Printf("Type:      %s\n", ev.EventType)
	fmt.Printf("Priority:  %s\n", ev.Priority)
	fmt.Printf("Created:   %s\n", ev.CreatedAt.Format("2006-01-02T15:04:05Z"))
	if ev.ExecutedAt != nil {
		fmt.Printf("Executed:  %s\n", ev.ExecutedAt.Format("2006-01-02T15:04:05Z"))
	}
	fmt.Printf("Location:  %s\n", ev.LocationHint)
	fmt.Printf("Timing:    %s\n", ev.TimingHint)
	fmt.Printf("\n%s\n", ev.Description)
	printList("Suggested actions", ev.SuggestedActions)
	printList("Consequences", ev.Consequences)
	printList("Related arcs", ev.RelatedArcs)
	printList("Related threads", ev.RelatedThreads)
	return nil
}

// #endregion events

// #region conflicts

func runConflicts(path, id string, last int, activeOnly, jsonOut bool) error {
	conflicts, err := latest(orchestrator.NewJSONLRepository[*orchestrator.Conflict](path),
		func(c *orchestrator.Conflict) string { return c.ConflictID })
	if err != nil {
		return err
	}

	if id != "" {
		for _, c := range conflicts {
			if c.ConflictID == id {
				return printConflictDetail(c, jsonOut)
			}
		}
		return fmt.Errorf("conflict %s not found", id)
	}

	var rows []*orchestrator.Conflict
	for _, c := range conflicts {
		if activeOnly && !c.Active() {
			continue
		}
		rows = append(rows, c)
	}
	rows = tail(rows, last)
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no conflicts found")
		return nil
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-44s  %-16s  %-8s  %-6s  %s",
		"Conflict", "Type", "Urgency", "State", "Title")))
	for _, c := range rows {
		fmt.Printf("%-44s  %-16s  %-8s  %-6s  %s\n",
			shorten(c.ConflictID, 44), c.ConflictType, c.Urgency, stateLabel(c.Active()), shorten(c.Title, 48))
	}
	fmt.Printf("\n%d shown of %d\n", len(rows), len(conflicts))
	return nil
}

func printConflictDetail(c *orchestrator.Conflict, jsonOut bool) error {
	if jsonOut {
		return printJSON(c)
	}
	fmt.Println(headerStyle.Render(c.Title))
	fmt.Printf("ID:        %s\n", c.ConflictID)
	fmt.Printf("Type:      %s\n", c.ConflictType)
	fmt.Printf("Urgency:   %s\n", c.Urgency)
	fmt.Printf("Created:   %s\n", c.CreatedAt.Format("2006-01-02T15:04:05Z"))
	if c.ResolvedAt != nil {
		fmt.Printf("Resolved:  %s (%s)\n", c.ResolvedAt.Format("2006-01-02T15:04:05Z"), c.ChosenResolution)
	}
	fmt.Printf("\n%s\n", c.Description)
	printList("Involved", c.InvolvedCharacters)
	printList("Value contradictions", c.ValueContradictions)
	fmt.Printf("\nResolutions:\n")
	for _, r := range c.SuggestedResolutions {
		fmt.Printf("  %-18s %s\n", r.ID, r.Text)
	}
	return nil
}

// #endregion conflicts

// #region output

func latest[T any](repo *orchestrator.JSONLRepository[T], key func(T) string) ([]T, error) {
	recs, err := repo.Load()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	var out []T
	for _, r := range recs {
		k := key(r)
		if i, ok := index[k]; ok {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out, nil
}

func tail[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[len(rows)-n:]
	}
	return rows
}

func printList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", label)
	for _, it := range items {
		fmt.Printf("  - %s\n", it)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

// #endregion output
