package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"weft/internal/anonymize"
	"weft/internal/archive"
	"weft/internal/cmdlog"
	"weft/internal/config"
	"weft/internal/logging"
	"weft/internal/metrics"
	"weft/internal/model"
	"weft/internal/relationship"
	"weft/internal/report"
	"weft/internal/store/archivedb"
	"weft/internal/theme"
	"weft/internal/thread"
	"weft/internal/timeline"
)

func main() {
	_ = godotenv.Load()
	metrics.StartServer("")
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "threads":
		cmdThreads()
	case "timeline":
		cmdTimeline()
	case "profiles":
		cmdProfiles()
	case "report":
		cmdReport()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: weft <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./weft.yaml")
	fmt.Println("  threads     Reconstruct reply threads and write threads.csv")
	fmt.Println("  timeline    Analyze interaction timeline and write timeline.txt")
	fmt.Println("  profiles    Build relationship profiles and write profiles.csv")
	fmt.Println("  report      Full pipeline: threads + timeline + profiles + SQLite artifact")
}

func fatal(err error) {
	fmt.Println("error:", err)
	os.Exit(1)
}

func mustLoadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}
	return cfg
}

func outPath(cfg config.Config, name string) string {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		fatal(err)
	}
	return filepath.Join(cfg.Output.Dir, name)
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./weft.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		fatal(err)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdThreads() {
	fs := flag.NewFlagSet("threads", flag.ExitOnError)
	cfgPath := fs.String("config", "./weft.yaml", "config path")
	mode := fs.String("mode", "", "threading mode override (strict|permissive)")
	top := fs.Int("top", 10, "threads to print")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	if *mode != "" {
		cfg.Threading.Mode = *mode
	}

	err := cmdlog.Run("threads", func(runID string) error {
		posts, err := archive.LoadPosts(filepath.Join(cfg.Archive.Dir, cfg.Archive.PostsFile))
		if err != nil {
			return err
		}
		policy := thread.ForMode(cfg.Threading.Mode)
		res := <-thread.BuildAsync(context.Background(), posts, cfg.Account.ScreenName, policy)
		if res.Err != nil {
			return res.Err
		}
		logging.Info("threads_built", map[string]any{"run_id": runID, "mode": policy.Name, "threads": len(res.Threads)})

		for i := 0; i < len(res.Threads) && i < *top; i++ {
			t := res.Threads[i]
			fmt.Printf("%s  posts=%d favs=%d rts=%d\n", t.ID, t.PostCount, t.TotalFavorites, t.TotalRetweets)
		}
		return report.WriteThreadsCSV(outPath(cfg, "threads.csv"), res.Threads)
	})
	if err != nil {
		fatal(err)
	}
}

func cmdTimeline() {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	cfgPath := fs.String("config", "./weft.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	if err := cfg.RequireAccountID(); err != nil {
		fatal(err)
	}

	err := cmdlog.Run("timeline", func(runID string) error {
		posts, convs, err := loadArchive(cfg)
		if err != nil {
			return err
		}
		anon := anonymize.New(cfg.Anonymize.Salt)
		events := timeline.BuildTimeline(posts, convs, cfg.Account.AccountID, anon)
		analysis := timeline.Analyze(events)
		logging.Info("timeline_analyzed", map[string]any{"run_id": runID, "events": len(events)})

		if err := report.WriteTimelineSummary(os.Stdout, analysis); err != nil {
			return err
		}
		return report.WriteTimelineSummaryFile(outPath(cfg, "timeline.txt"), analysis)
	})
	if err != nil {
		fatal(err)
	}
}

func cmdProfiles() {
	fs := flag.NewFlagSet("profiles", flag.ExitOnError)
	cfgPath := fs.String("config", "./weft.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	if err := cfg.RequireAccountID(); err != nil {
		fatal(err)
	}

	err := cmdlog.Run("profiles", func(runID string) error {
		posts, convs, err := loadArchive(cfg)
		if err != nil {
			return err
		}
		anon := anonymize.New(cfg.Anonymize.Salt)
		events := timeline.BuildTimeline(posts, convs, cfg.Account.AccountID, anon)
		analysis := timeline.Analyze(events)
		profiles := relationship.Aggregate(posts, convs, analysis, anon)
		logging.Info("profiles_built", map[string]any{"run_id": runID, "profiles": len(profiles)})
		return report.WriteProfilesCSV(outPath(cfg, "profiles.csv"), profiles)
	})
	if err != nil {
		fatal(err)
	}
}

func cmdReport() {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cfgPath := fs.String("config", "./weft.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	if err := cfg.RequireAccountID(); err != nil {
		fatal(err)
	}

	err := cmdlog.Run("report", func(runID string) error {
		start := time.Now()
		defer metrics.ObserveAnalysisDuration(start)
		ctx := context.Background()

		posts, convs, err := loadArchive(cfg)
		if err != nil {
			return err
		}

		// Thread construction runs on a worker while the timeline and
		// profiles are computed on the main path.
		policy := thread.ForMode(cfg.Threading.Mode)
		threadsC := thread.BuildAsync(ctx, posts, cfg.Account.ScreenName, policy)

		anon := anonymize.New(cfg.Anonymize.Salt)
		events := timeline.BuildTimeline(posts, convs, cfg.Account.AccountID, anon)
		analysis := timeline.Analyze(events)
		profiles := relationship.Aggregate(posts, convs, analysis, anon)

		res := <-threadsC
		if res.Err != nil {
			return res.Err
		}
		logging.Info("report_computed", map[string]any{
			"run_id": runID, "threads": len(res.Threads), "events": len(events), "profiles": len(profiles),
		})

		if err := report.WriteThreadsCSV(outPath(cfg, "threads.csv"), res.Threads); err != nil {
			return err
		}
		if err := report.WriteProfilesCSV(outPath(cfg, "profiles.csv"), profiles); err != nil {
			return err
		}
		if err := report.WriteTimelineSummaryFile(outPath(cfg, "timeline.txt"), analysis); err != nil {
			return err
		}

		db, err := archivedb.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PutEvents(ctx, events); err != nil {
			return err
		}
		if err := db.PutThreads(ctx, res.Threads); err != nil {
			return err
		}
		return db.PutProfiles(ctx, profiles)
	})
	if err != nil {
		fatal(err)
	}
}

func loadArchive(cfg config.Config) ([]model.Post, []model.Conversation, error) {
	posts, err := archive.LoadPosts(filepath.Join(cfg.Archive.Dir, cfg.Archive.PostsFile))
	if err != nil {
		return nil, nil, err
	}
	convs, err := archive.LoadConversations(filepath.Join(cfg.Archive.Dir, cfg.Archive.MessagesFile))
	if err != nil {
		return nil, nil, err
	}
	return posts, convs, nil
}
