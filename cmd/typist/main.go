// Package main provides the CLI entrypoint for typist.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typist/internal/config"
	"github.com/verte-zerg/typist/internal/generator"
	"github.com/verte-zerg/typist/internal/logs"
	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/session"
	"github.com/verte-zerg/typist/internal/stats"
	"github.com/verte-zerg/typist/internal/statsui"
	"github.com/verte-zerg/typist/internal/store"
	"github.com/verte-zerg/typist/internal/story"
	"github.com/verte-zerg/typist/internal/tui"
	"github.com/verte-zerg/typist/internal/wordlist"
)

const (
	defaultDrillRounds  = 10
	defaultDrillWords   = 4
	defaultSprintRounds = 6
	defaultStoryRounds  = 5
	defaultBossSeconds  = 60
	defaultScoresLast   = 10
	defaultTrendWindow  = 5
	defaultLogLevel     = "warn"
)

const defaultPunctSet = ".,;:!?"

var (
	dbPath   string
	logLevel string

	practicePotty        bool
	practiceDrillRounds  int
	practiceDrillWords   int
	practiceSprintRounds int
	practiceStoryRounds  int
	practiceBossSeconds  int
	practiceCaps         float64
	practicePunct        float64
	practicePunctSet     string
	practiceWordsFile    string
	practiceStoryFile    string

	scoresLast   int
	scoresMode   string
	scoresWindow int
	scoresUI     bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typist",
		Short:         "Potty-humored typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          tuiRunner(tui.StartMenu),
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "SQLite database path")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&practicePotty, "potty", true, "use potty humor word and sentence pools")
	flags.IntVar(&practiceDrillRounds, "drill-rounds", defaultDrillRounds, "rounds per word drill")
	flags.IntVar(&practiceDrillWords, "drill-words", defaultDrillWords, "words per drill prompt")
	flags.IntVar(&practiceSprintRounds, "sprint-rounds", defaultSprintRounds, "sentences per sprint")
	flags.IntVar(&practiceStoryRounds, "story-rounds", defaultStoryRounds, "prompts per story chapter")
	flags.IntVar(&practiceBossSeconds, "boss-seconds", defaultBossSeconds, "boss battle length in seconds")
	flags.Float64Var(&practiceCaps, "caps", 0, "probability of capitalized drill words (0-1)")
	flags.Float64Var(&practicePunct, "punct", 0, "punctuation probability per drill word (0-1)")
	flags.StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set for drills")
	flags.StringVar(&practiceWordsFile, "words-file", "", "custom drill word list, one word per line")
	flags.StringVar(&practiceStoryFile, "story-file", "", "custom CUE story graph")

	rootCmd.AddCommand(newActivityCmd("drills", "Practice word drills", tui.StartDrills))
	rootCmd.AddCommand(newActivityCmd("sprints", "Practice sentence sprints", tui.StartSprints))
	rootCmd.AddCommand(newActivityCmd("boss", "Fight a timed boss battle", tui.StartBoss))
	rootCmd.AddCommand(newStoryCmd())
	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newActivityCmd(use, short string, start tui.Start) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE:  tuiRunner(start),
	}
}

// app holds what every trainer command needs.
type app struct {
	cfg     model.Config
	fileCfg config.FileConfig
	logger  *slog.Logger
	store   *store.Store
	scores  *store.BestEffort
	engine  *story.Engine
}

func (a *app) Close() {
	if cerr := a.store.Close(); cerr != nil {
		a.logger.Warn("failed to close db", "err", cerr)
	}
}

func (a *app) trainer() *session.Trainer {
	return session.NewTrainer(a.cfg, generator.New(), a.scores, a.engine)
}

// loadFileConfig reads the config file and applies it to practice flags
// the user did not set.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyPracticeConfig(cmd, fileCfg)
	return fileCfg, nil
}

func applyPracticeConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	p := fileCfg.Practice
	applyBoolConfig(cmd, "potty", &practicePotty, p.Potty)
	applyIntConfig(cmd, "drill-rounds", &practiceDrillRounds, p.DrillRounds)
	applyIntConfig(cmd, "drill-words", &practiceDrillWords, p.DrillWords)
	applyIntConfig(cmd, "sprint-rounds", &practiceSprintRounds, p.SprintRounds)
	applyIntConfig(cmd, "story-rounds", &practiceStoryRounds, p.StoryRounds)
	applyIntConfig(cmd, "boss-seconds", &practiceBossSeconds, p.BossSeconds)
	applyFloatConfig(cmd, "caps", &practiceCaps, p.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, p.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, p.PunctSet)
	applyStringConfig(cmd, "words-file", &practiceWordsFile, p.WordsFile)
	applyStringConfig(cmd, "story-file", &practiceStoryFile, fileCfg.Story.File)
}

func practiceConfig() model.Config {
	return model.Config{
		Potty:        practicePotty,
		DrillRounds:  practiceDrillRounds,
		DrillWords:   practiceDrillWords,
		SprintRounds: practiceSprintRounds,
		StoryRounds:  practiceStoryRounds,
		BossDuration: time.Duration(practiceBossSeconds) * time.Second,
		CapsPct:      practiceCaps,
		PunctPct:     practicePunct,
		PunctSet:     practicePunctSet,
	}
}

// openApp builds the shared dependencies with the database at path.
func openApp(fileCfg config.FileConfig, path string, logger *slog.Logger) (*app, error) {
	cfg := practiceConfig()
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if practiceWordsFile != "" {
		words, err := wordlist.LoadDrillWords(practiceWordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load words file %s: %w", practiceWordsFile, err)
		}
		cfg.Words = words
	}

	graph := story.Default()
	if practiceStoryFile != "" {
		g, err := story.LoadFile(practiceStoryFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load story %s: %w", practiceStoryFile, err)
		}
		graph = g
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	scores := store.NewBestEffort(st, logger)
	return &app{
		cfg:     cfg,
		fileCfg: fileCfg,
		logger:  logger,
		store:   st,
		scores:  scores,
		engine:  story.NewEngine(graph, scores, generator.New(), cfg.StoryRounds),
	}, nil
}

func newLogger(level string) (*slog.Logger, error) {
	lvl, err := logs.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	return logs.New(os.Stderr, lvl), nil
}

func setup(cmd *cobra.Command) (*app, error) {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(logLevel)
	if err != nil {
		return nil, err
	}
	return openApp(fileCfg, dbPath, logger)
}

func tuiRunner(start tui.Start) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		m := tui.NewModel(cmd.Context(), a.trainer(), start, a.logger)
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run TUI: %w", err)
		}
		return nil
	}
}

func newStoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Play story mode",
		Args:  cobra.NoArgs,
		RunE:  tuiRunner(tui.StartStory),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show story progress",
		Args:  cobra.NoArgs,
		RunE:  runStoryStatusCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restart the story from the beginning",
		Args:  cobra.NoArgs,
		RunE:  runStoryResetCmd,
	})
	return cmd
}

func runStoryStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	progress, node, err := a.engine.Progress(cmd.Context())
	var missing *story.MissingNodeError
	if errors.As(err, &missing) {
		return fmt.Errorf("saved chapter %q no longer exists; run: typist story reset", missing.ID)
	}
	if err != nil {
		return err
	}
	return writeStoryStatus(cmd, progress, node)
}

func writeStoryStatus(cmd *cobra.Command, progress model.StoryProgress, node model.StoryNode) error {
	lines := []string{
		fmt.Sprintf("Chapter: %s (%s)", node.Title, node.ID),
		fmt.Sprintf("Lesson keys: %s", node.LessonKeys),
	}
	if node.Terminal() {
		lines = append(lines, "This is the final chapter.")
	}
	if len(progress.PendingChoices) > 0 {
		lines = append(lines, "Pending choice:")
		for i, c := range progress.PendingChoices {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, c.Label))
		}
	}
	if len(progress.History) > 0 {
		lines = append(lines, "History:")
		for _, h := range progress.History {
			if h.Result == model.ResultChoice {
				lines = append(lines, fmt.Sprintf("  %-10s chose %q", h.Node, h.Choice))
				continue
			}
			lines = append(lines, fmt.Sprintf("  %-10s %-7s %6.1f WPM %6.1f%%", h.Node, h.Result, h.AvgNet, h.AvgAcc))
		}
	}
	out := cmd.OutOrStdout()
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runStoryResetCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.ResetProgress(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset story: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Story progress reset. Back to the start.")
	return err
}

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show recent scores",
		Args:  cobra.NoArgs,
		RunE:  runScoresCmd,
	}
	cmd.Flags().IntVar(&scoresLast, "last", defaultScoresLast, "limit to last N scores (0 for all)")
	cmd.Flags().StringVar(&scoresMode, "mode", "", "only show one mode, e.g. \"Word Drills\"")
	cmd.Flags().IntVar(&scoresWindow, "window", defaultTrendWindow, "moving average window for the trend")
	cmd.Flags().BoolVar(&scoresUI, "ui", false, "browse scores interactively")
	return cmd
}

func runScoresCmd(cmd *cobra.Command, _ []string) error {
	if scoresLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if scoresWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	cfg := stats.ReportConfig{Last: scoresLast, Mode: scoresMode, Window: scoresWindow}
	if scoresUI {
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run scores TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load scores: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), stats.TerminalWidth())
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typist configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# potty = true            # Potty humor word and sentence pools
# drill-rounds = %d       # Rounds per word drill
# drill-words = %d         # Words per drill prompt
# sprint-rounds = %d       # Sentences per sprint
# story-rounds = %d        # Prompts per story chapter
# boss-seconds = %d       # Boss battle length
# caps = 0.0              # Probability of capitalized drill words (0-1)
# punct = 0.0             # Punctuation probability per drill word (0-1)
# punct-set = %q
# words-file = "/path/to/words.txt"

[story]
# file = "/path/to/story.cue"   # Custom story graph

[web]
# addr = ":8080"
# session-ttl = "72h"
`,
		defaultDrillRounds,
		defaultDrillWords,
		defaultSprintRounds,
		defaultStoryRounds,
		defaultBossSeconds,
		defaultPunctSet,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.DrillRounds <= 0 {
		return fmt.Errorf("--drill-rounds must be > 0")
	}
	if cfg.DrillWords <= 0 {
		return fmt.Errorf("--drill-words must be > 0")
	}
	if cfg.SprintRounds <= 0 {
		return fmt.Errorf("--sprint-rounds must be > 0")
	}
	if cfg.StoryRounds <= 0 {
		return fmt.Errorf("--story-rounds must be > 0")
	}
	if cfg.BossDuration <= 0 {
		return fmt.Errorf("--boss-seconds must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
