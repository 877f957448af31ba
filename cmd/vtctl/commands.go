package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"visitortracker/internal"
	"visitortracker/internal/config"
	"visitortracker/internal/seeder"
	"visitortracker/internal/stats"
	"visitortracker/internal/visits"
)

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Creates the visit tables and indexes if missing" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	log.Println("Running database migrations...")
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println("Migrations completed successfully")
	return nil
}

// SeedCommand populates the database with backdated sample visits
type SeedCommand struct{}

func (c *SeedCommand) Name() string { return "seed" }
func (c *SeedCommand) Description() string {
	return "Adds sample visits spread over the last 30 days (-events N)"
}

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	events := fs.Int("events", config.GetConfig().SeedEventCount, "number of visits to generate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	se := seeder.NewSeeder(app.DBManager, app.Logger, *events)
	created, err := se.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d sample visits added\n", created)
	return printSummary(ctx, app)
}

// StatsCommand prints the current snapshot and aggregate tables
type StatsCommand struct{}

func (c *StatsCommand) Name() string        { return "stats" }
func (c *StatsCommand) Description() string { return "Prints visit totals, top pages and daily aggregates" }

func (c *StatsCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	return printSummary(ctx, app)
}

func printSummary(ctx context.Context, app *internal.Application) error {
	db := app.DBManager.GetConnection()

	snapshot, err := stats.BuildSnapshot(ctx, db, app.Logger, time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Println("Visit statistics:")
	fmt.Printf("  Total visits:     %d\n", snapshot.TotalVisits)
	fmt.Printf("  Unique IPs:       %d\n", snapshot.UniqueIPs)
	fmt.Printf("  Today:            %d\n", snapshot.TodayVisits)
	fmt.Printf("  This week:        %d\n", snapshot.ThisWeekVisits)
	if len(snapshot.TopPages) > 0 {
		top := snapshot.TopPages[0]
		fmt.Printf("  Most visited:     %s (%d visits)\n", top.PagePath, top.Visits)
	}

	pages, err := stats.PageStatistics(db, stats.TopPagesLimit)
	if err != nil {
		return fmt.Errorf("failed to read page statistics: %w", err)
	}
	days, err := stats.DailyStatistics(db, 7)
	if err != nil {
		return fmt.Errorf("failed to read daily statistics: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nPAGE\tVISITS\tUNIQUE\tLAST VISIT")
	for _, p := range pages {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", p.PagePath, p.TotalVisits, p.UniqueVisitors, p.LastVisit.UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(w, "\nDATE\tVISITS\tVISITORS\tIPS")
	for _, d := range days {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", d.StatDate, d.TotalVisits, d.UniqueVisitors, d.UniqueIPs)
	}
	return w.Flush()
}

// RebuildAggregatesCommand recomputes the aggregate tables from the visit log
type RebuildAggregatesCommand struct{}

func (c *RebuildAggregatesCommand) Name() string { return "rebuild-aggregates" }
func (c *RebuildAggregatesCommand) Description() string {
	return "Recomputes page and daily statistics from the visit log (-yes skips the prompt)"
}

func (c *RebuildAggregatesCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("rebuild-aggregates", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to rebuild without confirmation; pass -yes")
		}
		fmt.Print("This replaces page_statistics and daily_statistics. Continue? [y/N]: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := visits.RebuildAggregates(app.DBManager, app.Logger); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	fmt.Println("Aggregates rebuilt")
	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage()
	return nil
}
