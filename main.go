package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"conformly/internal/citations"
	"conformly/internal/config"
	"conformly/internal/events"
	"conformly/internal/logger"
	"conformly/internal/models"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	app := NewApp(cfg, log)
	ctx := context.Background()

	if err := app.startup(ctx); err != nil {
		log.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}
	defer app.shutdown(ctx)

	events.SetEmitter(func(ctx context.Context, topic string, evt events.GenerationEvent) {
		prefix := "·"
		switch evt.Type {
		case events.EventError:
			prefix = "✗"
		case events.EventWarn:
			prefix = "!"
		case events.EventSuccess:
			prefix = "✓"
		}
		if evt.SystemName != "" {
			fmt.Printf("  %s [%s] %s\n", prefix, evt.SystemName, evt.Message)
			return
		}
		fmt.Printf("  %s %s\n", prefix, evt.Message)
	})

	fmt.Println("conformly — AI governance onboarding console. Type 'help' for commands.")
	runShell(ctx, app)
}

func runShell(ctx context.Context, app *App) {
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("step %d> ", app.Wizard.CurrentStep())
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		var err error
		switch cmd {
		case "help":
			printHelp()
		case "quit", "exit":
			return
		case "login":
			if len(args) != 1 {
				err = fmt.Errorf("usage: login <api-key>")
			} else {
				err = app.Login(args[0])
			}
		case "demo-login":
			err = app.DemoLogin(ctx)
		case "logout":
			err = app.Logout()
		case "status":
			printStatus(app)
		case "company":
			err = promptCompany(ctx, in, app)
		case "add-system":
			err = promptSystem(ctx, in, app)
		case "remove-system":
			if len(args) != 1 {
				err = fmt.Errorf("usage: remove-system <localId>")
			} else {
				err = app.Wizard.RemoveSystem(ctx, args[0])
			}
		case "risks":
			err = app.Wizard.SetRisks(ctx, parsePayload(args))
		case "oversight":
			err = app.Wizard.SetOversight(ctx, parsePayload(args))
		case "monitoring":
			err = app.Wizard.SetMonitoring(ctx, parsePayload(args))
		case "next":
			err = app.Wizard.Next(ctx)
		case "back":
			err = app.Wizard.Back(ctx)
		case "goto":
			var step int
			if len(args) != 1 {
				err = fmt.Errorf("usage: goto <step>")
			} else if step, err = strconv.Atoi(args[0]); err == nil {
				err = app.Wizard.GoTo(ctx, step)
			}
		case "restart":
			err = app.Wizard.Restart(ctx)
		case "generate":
			err = runGenerate(ctx, app)
		case "drafts":
			printDrafts(app)
		case "draft":
			if len(args) != 1 {
				err = fmt.Errorf("usage: draft <docType>")
			} else {
				err = printDraft(app, models.DocType(args[0]))
			}
		case "refresh":
			err = runRefresh(ctx, app, args)
		case "export":
			if len(args) != 2 {
				err = fmt.Errorf("usage: export <docType> <md|docx|pdf>")
			} else {
				var path string
				path, err = app.Documents.Export(ctx, models.DocType(args[0]), args[1], ".")
				if err == nil {
					fmt.Println("wrote", path)
				}
			}
		default:
			err = fmt.Errorf("unknown command %q, try 'help'", cmd)
		}
		if err != nil {
			fmt.Println("error:", err)
		}
	}
}

func printHelp() {
	fmt.Print(`auth:       login <key> | demo-login | logout
wizard:     status | company | add-system | remove-system <id>
            risks k=v ... | oversight k=v ... | monitoring k=v ...
            next | back | goto <step> | restart
generation: generate
reports:    drafts | draft <docType> | refresh <docType> ... | export <docType> <format>
`)
}

func printStatus(app *App) {
	s := app.Wizard.Session()
	fmt.Printf("step %d of %d", s.CurrentStep, models.StepLast)
	if app.Wizard.Completed() {
		fmt.Print(" (completed)")
	}
	fmt.Println()
	if s.Company != nil {
		fmt.Printf("company: %s <%s>\n", s.Company.Name, s.Company.ContactEmail)
	}
	for _, d := range s.Systems {
		state := "pending"
		if d.ServerID != nil {
			state = fmt.Sprintf("registered #%d", *d.ServerID)
		}
		fmt.Printf("system %s: %s (%s)\n", d.LocalID, d.Name, state)
	}
}

func promptCompany(ctx context.Context, in *bufio.Scanner, app *App) error {
	company := models.CompanyProfile{
		Name:         prompt(in, "name"),
		Industry:     prompt(in, "industry"),
		Size:         prompt(in, "size"),
		Country:      prompt(in, "country"),
		ContactEmail: prompt(in, "contact email"),
	}
	return app.Wizard.SetCompany(ctx, company)
}

func promptSystem(ctx context.Context, in *bufio.Scanner, app *App) error {
	draft := models.SystemDraft{
		Name:         prompt(in, "name"),
		Purpose:      prompt(in, "purpose"),
		Domain:       prompt(in, "domain"),
		RiskCategory: prompt(in, "risk category"),
		OwnerEmail:   prompt(in, "owner email"),
	}
	added, err := app.Wizard.AddSystem(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Println("added", added.LocalID)
	return nil
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Printf("  %s: ", label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// parsePayload turns "key=value" arguments into a step payload.
func parsePayload(args []string) models.StepPayload {
	payload := models.StepPayload{}
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			continue
		}
		payload[key] = value
	}
	return payload
}

func runGenerate(ctx context.Context, app *App) error {
	report, err := app.Generate(ctx)
	if err != nil {
		return err
	}
	for _, out := range report.Outcomes {
		fmt.Printf("%-20s %-22s %s\n", out.SystemName, out.Status, out.Detail)
	}
	if report.Success {
		fmt.Println("onboarding complete: documents were generated")
	} else {
		fmt.Println("generation failed: no system produced documents")
	}
	return nil
}

func runRefresh(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: refresh <docType> ...")
	}
	docs := make([]models.DocType, 0, len(args))
	for _, arg := range args {
		docs = append(docs, models.DocType(arg))
	}
	drafts, err := app.Documents.Refresh(ctx, nil, docs)
	if err != nil {
		return err
	}
	fmt.Printf("refreshed %d draft(s)\n", len(drafts))
	return nil
}

func printDrafts(app *App) {
	for _, draft := range app.Documents.List() {
		fmt.Printf("%-14s coverage %.0f%%  %d section(s)  %d gap(s)\n",
			draft.DocType, draft.Coverage*100, len(draft.Sections), len(draft.Missing))
	}
}

func printDraft(app *App, docType models.DocType) error {
	draft := app.Documents.Get(docType)
	if draft == nil {
		return fmt.Errorf("no draft for %s", docType)
	}
	fmt.Printf("%s — coverage %.0f%%\n", draft.DocType, draft.Coverage*100)
	for _, section := range draft.Sections {
		fmt.Printf("\n## %s (%.0f%%)\n", section.Key, section.Coverage*100)
		for _, paragraph := range section.Paragraphs {
			fmt.Println(citations.Linkify(paragraph))
		}
	}
	for _, gap := range draft.Missing {
		fmt.Println("missing:", gap)
	}
	return nil
}
