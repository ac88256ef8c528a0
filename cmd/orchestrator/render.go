package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/orchestrator"
)

// #region styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

var priorityColors = map[orchestrator.Priority]lipgloss.Color{
	orchestrator.PriorityCritical:   "#FF6B6B",
	orchestrator.PriorityHigh:       "#FFA94D",
	orchestrator.PriorityMedium:     "#FFD43B",
	orchestrator.PriorityLow:        "#AAAAAA",
	orchestrator.PriorityBackground: "#666666",
}

func priorityTag(p orchestrator.Priority) string {
	return lipgloss.NewStyle().Bold(true).Foreground(priorityColors[p]).Render(strings.ToUpper(string(p)))
}

// #endregion styles

// #region events
func printEvent(ev *orchestrator.Event) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", ev.Icon, headStyle.Render(ev.Title), priorityTag(ev.Priority))
	fmt.Fprintf(&b, "%s\n", ev.Description)
	fmt.Fprintf(&b, "%s", dimStyle.Render(fmt.Sprintf("id %s | %s | %s", ev.EventID, ev.LocationHint, ev.TimingHint)))
	for _, t := range ev.MemoryTieIns {
		fmt.Fprintf(&b, "\n%s", dimStyle.Render(t))
	}
	for _, r := range ev.SuggestedResponses {
		fmt.Fprintf(&b, "\n  [%s] %s", r.ID, r.Text)
	}
	fmt.Println(boxStyle.Render(b.String()))
}

func printEventLine(ev *orchestrator.Event) {
	fmt.Printf("  %-10s %-26s %s  %s\n", priorityTag(ev.Priority), ev.EventType, ev.Title, dimStyle.Render(ev.EventID))
}

// #endregion events

// #region conflicts
func printConflict(c *orchestrator.Conflict) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", c.Icon, headStyle.Render(c.Title), strings.ToUpper(string(c.Urgency)))
	fmt.Fprintf(&b, "%s\n", c.Description)
	fmt.Fprintf(&b, "%s", dimStyle.Render(fmt.Sprintf("id %s | involves %s", c.ConflictID, strings.Join(c.InvolvedCharacters, ", "))))
	if len(c.ValueContradictions) > 0 {
		fmt.Fprintf(&b, "\n%s", dimStyle.Render("values: "+strings.Join(c.ValueContradictions, "; ")))
	}
	for _, r := range c.SuggestedResolutions {
		fmt.Fprintf(&b, "\n  [%s] %s", r.ID, r.Text)
	}
	fmt.Println(boxStyle.Render(b.String()))
}

// #endregion conflicts

// #region state
func printState(st campaign.State) {
	fmt.Println(headStyle.Render(fmt.Sprintf("Campaign %s, session %d", st.CampaignID, st.SessionCount)))
	fmt.Printf("  Arcs (%d):\n", len(st.ActiveArcs))
	for _, a := range st.ActiveArcs {
		fmt.Printf("    %-24s %-12s %3.0f%%\n", a.Title, a.CharacterID, a.Completion*100)
	}
	fmt.Printf("  Threads (%d):\n", len(st.OpenThreads))
	for _, th := range st.OpenThreads {
		fmt.Printf("    %-24s p%d\n", th.Title, th.Priority)
	}
	if len(st.EmotionalContext) > 0 {
		names := make([]string, 0, len(st.EmotionalContext))
		for k := range st.EmotionalContext {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Println("  Emotions:")
		for _, n := range names {
			fmt.Printf("    %-16s %.2f\n", n, st.EmotionalContext[n])
		}
	}
	for _, w := range st.WorldEvents {
		fmt.Printf("  World: %s (%s)\n", w.Title, w.Urgency)
	}
}

func printInsights(in orchestrator.Insights) {
	fmt.Println(headStyle.Render("Insights"))
	if len(in.DominantEmotions) > 0 {
		fmt.Printf("  Dominant emotions: %s\n", strings.Join(in.DominantEmotions, ", "))
	}
	if len(in.StalledArcs) > 0 {
		fmt.Printf("  Stalled arcs:      %s\n", strings.Join(in.StalledArcs, ", "))
	}
	if len(in.NearlyDoneArcs) > 0 {
		fmt.Printf("  Nearly done:       %s\n", strings.Join(in.NearlyDoneArcs, ", "))
	}
	if len(in.UrgentThreads) > 0 {
		fmt.Printf("  Urgent threads:    %s\n", strings.Join(in.UrgentThreads, ", "))
	}
	fmt.Printf("  Pending events: %d | Active conflicts: %d\n", in.PendingEvents, in.ActiveConflicts)
	for _, r := range in.Recommendations {
		fmt.Println(okStyle.Render("  → " + r))
	}
}

func printSummaries(es orchestrator.EventSummary, cs orchestrator.ConflictSummary) {
	fmt.Println(headStyle.Render("Events"))
	fmt.Printf("  total %d | pending %d | executed %d\n", es.Total, es.Pending, es.Executed)
	for _, p := range []orchestrator.Priority{
		orchestrator.PriorityCritical, orchestrator.PriorityHigh, orchestrator.PriorityMedium,
		orchestrator.PriorityLow, orchestrator.PriorityBackground,
	} {
		if n := es.ByPriority[p]; n > 0 {
			fmt.Printf("  %-10s %d\n", priorityTag(p), n)
		}
	}
	fmt.Println(headStyle.Render("Conflicts"))
	fmt.Printf("  total %d | active %d | resolved %d\n", cs.Total, cs.Active, cs.Resolved)
	for t, n := range cs.ByType {
		fmt.Printf("  %-16s %d\n", t, n)
	}
}

// #endregion state
