package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"lunch-menu-planner/internal/app"
	"lunch-menu-planner/internal/config"
	"lunch-menu-planner/internal/logging"
	"lunch-menu-planner/internal/menu"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	rt, err := app.NewRuntime(ctx, cfg, prometheus.NewRegistry(), logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer rt.Close()

	if err := run(ctx, rt, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		rt.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, rt *app.Runtime, command string, args []string) error {
	application := rt.App

	switch command {
	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		calcPath := fs.String("calc", "", "POS calculation export (HTML)")
		salesPath := fs.String("sales", "", "Optional POS sales export (HTML)")
		fs.Parse(args)
		if *calcPath == "" {
			return fmt.Errorf("-calc is required")
		}

		calc, err := os.Open(*calcPath)
		if err != nil {
			return fmt.Errorf("failed to open calculation export: %w", err)
		}
		defer calc.Close()

		var sales io.Reader
		if *salesPath != "" {
			f, err := os.Open(*salesPath)
			if err != nil {
				return fmt.Errorf("failed to open sales export: %w", err)
			}
			defer f.Close()
			sales = f
		}

		c, err := application.ImportCatalog(ctx, calc, sales)
		if err != nil {
			return err
		}
		recipes, soups := c.Len()
		fmt.Printf("Imported %d recipes and %d soups.\n", recipes, soups)

	case "generate":
		fs := flag.NewFlagSet("generate", flag.ExitOnError)
		week := fs.String("week", "", "Monday of the week to plan (YYYY-MM-DD), default next week")
		dryRun := fs.Bool("dry-run", false, "Print the menu without saving it")
		fs.Parse(args)

		monday := menu.NextWeekMonday(time.Now())
		if *week != "" {
			d, err := menu.ParseDate(*week)
			if err != nil {
				return err
			}
			monday = d
		}

		res, err := application.GenerateMenu(ctx, monday)
		if err != nil {
			return err
		}
		m := res.Menu
		if !*dryRun {
			if err := application.SaveMenu(ctx, &m); err != nil {
				return err
			}
		}
		fmt.Print(menu.RenderMarkdown(m))
		fmt.Printf("\nScore: %.2f, attempts: %d", res.Score, res.Attempts)
		if m.ID != "" {
			fmt.Printf(", id: %s", m.ID)
		}
		fmt.Println()

	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		limit := fs.Int("limit", 6, "Number of menus to list")
		fs.Parse(args)

		menus, err := application.History(ctx, *limit)
		if err != nil {
			return err
		}
		if len(menus) == 0 {
			fmt.Println("No menus saved yet.")
		}
		for _, m := range menus {
			fmt.Printf("%s  %s - %s  %s\n", m.ID, m.WeekStart, m.WeekEnd, m.Specialty.Name)
		}

	case "swap":
		fs := flag.NewFlagSet("swap", flag.ExitOnError)
		menuID := fs.String("menu", "", "Menu id")
		day := fs.Int("day", 1, "Day of the week, 1 = Monday")
		slot := fs.Int("slot", 1, "Dish position within the day, 1-5")
		dishID := fs.String("dish", "", "Catalog id of the new main dish")
		soupID := fs.String("soup", "", "Catalog id of the new soup")
		fs.Parse(args)

		var (
			m   *menu.WeeklyMenu
			err error
		)
		switch {
		case *menuID == "":
			return fmt.Errorf("-menu is required")
		case *soupID != "":
			m, err = application.SwapSoup(ctx, *menuID, *day-1, *soupID)
		case *dishID != "":
			m, err = application.SwapDish(ctx, *menuID, *day-1, *slot-1, *dishID)
		default:
			return fmt.Errorf("one of -dish or -soup is required")
		}
		if err != nil {
			return err
		}
		fmt.Print(menu.RenderMarkdown(*m))

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		menuID := fs.String("menu", "", "Menu id")
		fs.Parse(args)

		if err := application.DeleteMenu(ctx, *menuID); err != nil {
			return err
		}
		fmt.Printf("Deleted menu %s.\n", *menuID)

	case "publish":
		fs := flag.NewFlagSet("publish", flag.ExitOnError)
		menuID := fs.String("menu", "", "Menu id")
		live := fs.Bool("publish", false, "Publish immediately instead of creating a draft")
		fs.Parse(args)

		post, err := application.PublishMenu(ctx, *menuID, *live)
		if err != nil {
			return err
		}
		fmt.Printf("Created post %s (%s) %s\n", post.ID, post.Status, post.URL)

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)

		affected, err := rt.Metrics.Cleanup(ctx, *days)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: menu-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import            Import the POS calculation (and sales) export")
	fmt.Println("  generate          Plan next week's lunch menu")
	fmt.Println("  history           List saved menus, newest first")
	fmt.Println("  swap              Replace a dish or soup of a saved menu")
	fmt.Println("  delete            Delete a saved menu")
	fmt.Println("  publish           Post a saved menu to Ghost")
	fmt.Println("  metrics-cleanup   Remove old metric records")
}
