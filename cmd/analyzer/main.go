package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/address"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/config"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/correction"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/db"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/extract"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/grade"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/match"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/pipeline"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/ui"
	"github.com/kwilinsi/ClassicalSchoolAnalyzer-sub000/internal/web"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "analyzer",
		Short: "Classical school directory reconciliation",
		Long:  `Reconciles school listings from accrediting organizations into a deduplicated directory of schools and districts`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to configuration file")

	rootCmd.AddCommand(createMatchCmd(&configPath))
	rootCmd.AddCommand(createServeCmd(&configPath))
	rootCmd.AddCommand(createPingCmd(&configPath))
	rootCmd.AddCommand(createNormalizeCmd(&configPath))
	rootCmd.AddCommand(createGradesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// runtime bundles the collaborators most subcommands need.
type runtime struct {
	cfg   *config.Config
	log   *zap.Logger
	conn  *db.Connection
	store *db.Store
}

func setup(configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	conn, err := db.NewConnection(db.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, err
	}
	return &runtime{
		cfg:   cfg,
		log:   log,
		conn:  conn,
		store: db.NewStore(conn, log),
	}, nil
}

func (rt *runtime) close() {
	rt.conn.Close()
	_ = rt.log.Sync()
}

func (rt *runtime) normalizer() address.Normalizer {
	if rt.cfg.Parser.Executable != "" {
		return address.NewClient(rt.cfg.Parser.Executable, rt.cfg.Parser.DataDir, rt.log)
	}
	return address.NewPostal(rt.log)
}

func (rt *runtime) loadCache() (*pipeline.Cache, error) {
	schools, err := rt.store.LoadSchools()
	if err != nil {
		return nil, err
	}
	districts, err := rt.store.LoadDistricts()
	if err != nil {
		return nil, err
	}
	rt.log.Info("directory cache loaded",
		zap.Int("schools", len(schools)),
		zap.Int("districts", len(districts)))
	return pipeline.NewCache(schools, districts), nil
}

func createMatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "match [extraction-file]",
		Short: "Reconcile an extraction file against the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			corrections, err := rt.store.LoadDistrictMatchCorrections()
			if err != nil {
				return err
			}
			cache, err := rt.loadCache()
			if err != nil {
				return err
			}

			cmp := match.NewComparator(rt.normalizer(), rt.log)
			identifier := match.NewIdentifier(
				cmp,
				correction.NewManager(corrections, rt.log),
				nil,
				ui.NewTerminal(),
				rt.log,
			)
			pipe := pipeline.New(rt.store, cmp, identifier, cache, rt.log)

			tally, err := pipe.Run(&extract.JSONFile{Path: args[0], Log: rt.log})
			if err != nil {
				return err
			}

			fmt.Printf("\n=== Reconciliation Results ===\n")
			fmt.Printf("Processed:       %d\n", tally.Processed)
			fmt.Printf("New districts:   %d\n", tally.NewDistricts)
			fmt.Printf("School matches:  %d\n", tally.SchoolMatches)
			fmt.Printf("District joins:  %d\n", tally.DistrictJoins)
			fmt.Printf("Omitted:         %d\n", tally.Omitted)
			return nil
		},
	}
}

func createServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only inspection API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			cache, err := rt.loadCache()
			if err != nil {
				return err
			}
			return web.NewServer(rt.cfg.Web.Addr, rt.store, cache, rt.log).Run()
		},
	}
}

func createPingCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			fmt.Println("Database connection successful!")
			stats, err := rt.store.LoadStats()
			if err != nil {
				return err
			}
			fmt.Printf("Schools:   %d\n", stats.Schools)
			fmt.Printf("Districts: %d\n", stats.Districts)
			fmt.Printf("Excluded:  %d\n", stats.Excluded)
			return nil
		},
	}
}

func createNormalizeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [address]",
		Short: "Normalize one address through the configured normalizer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			rt := &runtime{cfg: cfg, log: log}

			addr := strings.Join(args, " ")
			norm, err := rt.normalizer().Normalize(&addr)
			if err != nil {
				return err
			}
			if norm == nil {
				fmt.Println("(normalizes to nothing)")
			} else {
				fmt.Println(*norm)
			}
			return nil
		},
	}
}

func createGradesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grades [text]",
		Short: "Parse grade-range text to its canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger("warn")
			if err != nil {
				return err
			}
			levels := grade.Identify(strings.Join(args, " "), log)
			if len(levels) == 0 {
				fmt.Println("(no grades recognized)")
				return nil
			}
			fmt.Println(grade.Normalize(levels))
			return nil
		},
	}
}
