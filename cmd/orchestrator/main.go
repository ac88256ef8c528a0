package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/campaign"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/config"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/logging"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/narrative"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/orchestrator"
	"github.com/danielpatrickdp/adaptive-state/campaign-orchestrator/internal/random"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if dir := filepath.Dir(cfg.NarrativeDB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("create data dir: %v", err)
		}
	}
	db, err := narrative.Open(cfg.NarrativeDB)
	if err != nil {
		log.Fatalf("failed to open narrative db: %v", err)
	}
	defer db.Close()

	s, err := openStores(db, cfg.CampaignID)
	if err != nil {
		log.Fatalf("failed to init stores: %v", err)
	}

	rng, seed, err := random.NewSeededRNG(cfg.Seed)
	if err != nil {
		log.Fatalf("seed rng: %v", err)
	}

	opts := []orchestrator.Option{
		orchestrator.WithRand(rng),
		orchestrator.WithWeights(cfg.OrchestratorWeights()),
		orchestrator.WithEnabled(cfg.Enabled),
		orchestrator.WithMemoryStore(s.memories),
		orchestrator.WithArcStore(s.arcs),
		orchestrator.WithThreadStore(s.threads),
		orchestrator.WithRelationshipStore(s.relationships),
		orchestrator.WithDecisionLog(s.decisions),
	}
	if cfg.TemplatesPath != "" {
		lib, err := orchestrator.LoadLibrary(cfg.TemplatesPath)
		if err != nil {
			log.Fatalf("templates: %v", err)
		}
		opts = append(opts, orchestrator.WithLibrary(lib))
	}
	orch := orchestrator.New(cfg.CampaignID, cfg.EventsPath, opts...)

	fmt.Println(titleStyle.Render("Campaign Orchestrator ready."))
	fmt.Println(dimStyle.Render(fmt.Sprintf("  Campaign: %s | Events: %s | DB: %s | Seed: %d",
		cfg.CampaignID, cfg.EventsPath, cfg.NarrativeDB, seed)))
	fmt.Println("Type 'help' for commands (or 'quit' to exit):")

	sh := &shell{orch: orch, stores: s, maxEvents: cfg.MaxEvents, session: cfg.SessionID}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		sh.dispatch(line)
	}
}

// #endregion main

// #region stores
type stores struct {
	memories      *narrative.MemoryStore
	arcs          *narrative.ArcStore
	threads       *narrative.ThreadStore
	relationships *narrative.RelationshipStore
	decisions     *logging.DecisionLog
}

func openStores(db *sql.DB, campaignID string) (*stores, error) {
	var s stores
	var err error
	if s.memories, err = narrative.NewMemoryStore(db, campaignID); err != nil {
		return nil, err
	}
	if s.arcs, err = narrative.NewArcStore(db, campaignID); err != nil {
		return nil, err
	}
	if s.threads, err = narrative.NewThreadStore(db, campaignID); err != nil {
		return nil, err
	}
	if s.relationships, err = narrative.NewRelationshipStore(db, campaignID); err != nil {
		return nil, err
	}
	if s.decisions, err = logging.NewDecisionLog(db, campaignID); err != nil {
		return nil, err
	}
	return &s, nil
}

// #endregion stores

// #region commands
type shell struct {
	orch      *orchestrator.Orchestrator
	stores    *stores
	maxEvents int
	session   string
}

const helpText = `Commands:
  analyze                      show the current campaign state
  generate [n]                 generate up to n events
  conflicts                    detect conflicts and list the active ones
  pending                      list pending events
  execute <event-id> [notes]   execute an event
  resolve <conflict-id> <res>  resolve a conflict with a suggested resolution
  act <text>                   describe a player action and show triggered events
  session [id|-]               show, set or clear the session tagged on new memories
  remember <type> <text>       store a memory
  arc <character> <title> [| <description>]
                               start a character arc
  thread <priority> <title> [| <description>]
                               open a plot thread
  history                      show executed decisions
  insights                     show campaign insights
  summary                      show event and conflict counts
  quit                         exit`

func (sh *shell) dispatch(line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Println(helpText)
	case "analyze":
		printState(sh.orch.AnalyzeCampaignState())
	case "generate":
		n := sh.maxEvents
		if rest != "" {
			v, err := strconv.Atoi(rest)
			if err != nil {
				fmt.Println(errStyle.Render("generate: n must be a number"))
				return
			}
			n = v
		}
		st := sh.orch.AnalyzeCampaignState()
		events, err := sh.orch.GenerateEvents(st, n)
		if err != nil {
			log.Printf("generate error: %v", err)
		}
		for _, ev := range events {
			printEvent(orchestrator.EnhanceEvent(ev, st))
		}
		if len(events) == 0 {
			fmt.Println(dimStyle.Render("nothing to suggest right now"))
		}
	case "conflicts":
		if _, err := sh.orch.DetectConflicts(sh.orch.AnalyzeCampaignState()); err != nil {
			log.Printf("detect error: %v", err)
		}
		for _, c := range sh.orch.ActiveConflicts(orchestrator.ConflictFilter{}) {
			printConflict(c)
		}
	case "pending":
		for _, ev := range sh.orch.PendingEvents(orchestrator.EventFilter{}) {
			printEventLine(ev)
		}
	case "execute":
		id, notes, _ := strings.Cut(rest, " ")
		if id == "" {
			fmt.Println(errStyle.Render("usage: execute <event-id> [notes]"))
			return
		}
		ok, err := sh.orch.ExecuteEvent(id, strings.TrimSpace(notes))
		report("execute", id, ok, err)
	case "resolve":
		id, res, _ := strings.Cut(rest, " ")
		res = strings.TrimSpace(res)
		if id == "" || res == "" {
			fmt.Println(errStyle.Render("usage: resolve <conflict-id> <resolution-id>"))
			return
		}
		ok, err := sh.orch.ResolveConflict(id, res)
		report("resolve", id, ok, err)
	case "act":
		triggers := sh.orch.TriggeredEvents(orchestrator.ActionContext{Action: rest})
		if len(triggers) == 0 {
			fmt.Println(dimStyle.Render("no pending events respond to that"))
		}
		for _, t := range triggers {
			printEventLine(t.Event)
			fmt.Println(dimStyle.Render("    matched on " + strings.Join(t.Reasons, ", ")))
		}
	case "session":
		switch rest {
		case "":
		case "-":
			sh.session = ""
		default:
			sh.session = rest
		}
		fmt.Println(dimStyle.Render("session: " + orDash(sh.session)))
	case "remember":
		memType, text, _ := strings.Cut(rest, " ")
		if text == "" {
			fmt.Println(errStyle.Render("usage: remember <type> <text>"))
			return
		}
		id, err := sh.stores.memories.StoreMemory(text, memType, memoryMetadata(sh.session), nil, "", 0.5)
		report("remember", id, err == nil, err)
	case "arc":
		arc, ok := parseArc(rest)
		if !ok {
			fmt.Println(errStyle.Render("usage: arc <character> <title> [| <description>]"))
			return
		}
		arc, err := sh.stores.arcs.CreateArc(arc)
		report("arc", arc.ArcID, err == nil, err)
	case "thread":
		th, ok := parseThread(rest)
		if !ok {
			fmt.Println(errStyle.Render("usage: thread <priority> <title> [| <description>]"))
			return
		}
		th, err := sh.stores.threads.CreateThread(th)
		report("thread", th.ThreadID, err == nil, err)
	case "history":
		for _, d := range sh.orch.EventHistory(10) {
			fmt.Printf("  %s  %-26s %s\n", d.ExecutedAt.Format("2006-01-02 15:04"), d.EventType, d.Title)
		}
		recent, err := sh.stores.decisions.Recent(10)
		if err != nil {
			log.Printf("decision log error: %v", err)
			return
		}
		if len(recent) > 0 {
			fmt.Println(headStyle.Render("Decision log"))
		}
		for _, e := range recent {
			fmt.Printf("  %s  %-8s %s -> %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Kind, e.SubjectID, e.Choice)
		}
	case "insights":
		printInsights(sh.orch.Insights(sh.orch.AnalyzeCampaignState()))
	case "summary":
		printSummaries(sh.orch.EventSummary(), sh.orch.ConflictSummary())
	default:
		fmt.Println(errStyle.Render(fmt.Sprintf("unknown command %q (try 'help')", cmd)))
	}
}

func report(action, id string, ok bool, err error) {
	switch {
	case err != nil:
		fmt.Println(errStyle.Render(fmt.Sprintf("%s %s: %v", action, id, err)))
	case !ok:
		fmt.Println(errStyle.Render(fmt.Sprintf("%s: %s not found", action, id)))
	default:
		fmt.Println(okStyle.Render(fmt.Sprintf("%s: %s ok", action, id)))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// memoryMetadata tags a memory with the current session. Memories stored
// outside a session carry no session_id.
func memoryMetadata(session string) map[string]any {
	if session == "" {
		return nil
	}
	return map[string]any{"session_id": session}
}

// splitDescription separates "<head> | <description>".
func splitDescription(rest string) (head, description string) {
	head, description, _ = strings.Cut(rest, "|")
	return strings.TrimSpace(head), strings.TrimSpace(description)
}

func parseArc(rest string) (campaign.Arc, bool) {
	head, desc := splitDescription(rest)
	character, title, _ := strings.Cut(head, " ")
	title = strings.TrimSpace(title)
	if character == "" || title == "" {
		return campaign.Arc{}, false
	}
	return campaign.Arc{CharacterID: character, Title: title, Description: desc}, true
}

func parseThread(rest string) (campaign.Thread, bool) {
	head, desc := splitDescription(rest)
	prio, title, _ := strings.Cut(head, " ")
	title = strings.TrimSpace(title)
	p, err := strconv.Atoi(prio)
	if err != nil || title == "" {
		return campaign.Thread{}, false
	}
	return campaign.Thread{Title: title, Description: desc, Priority: p}, true
}

// #endregion commands
