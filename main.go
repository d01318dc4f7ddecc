// Package main provides the entry point for the recite CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"golang.org/x/text/language"

	"github.com/recite-cli/recite/internal/cache"
	"github.com/recite-cli/recite/reading"
	"github.com/recite-cli/recite/reading/audio"
	"github.com/recite-cli/recite/reading/engines/espeak"
	"github.com/recite-cli/recite/reading/engines/mock"
	"github.com/recite-cli/recite/ui"
	"github.com/recite-cli/recite/utils"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	printOut   bool
	style      string
	width      uint
	mouse      bool
	engineName string
	voiceID    string
	rateFlag   float64
	pitchFlag  float64

	rootCmd = &cobra.Command{
		Use:   "recite [SOURCE]",
		Short: "Read articles aloud in your terminal",
		Long: paragraph(
			fmt.Sprintf("\nExtract the readable sentences from an article and %s, with transport controls.", keyword("read them aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// source provides a readable article source.
type source struct {
	reader io.ReadCloser
	URL    string
}

// sourceFromArg parses an argument and creates a readable source for it.
func sourceFromArg(arg string) (*source, error) {
	// from stdin
	if arg == "-" {
		return &source{reader: os.Stdin}, nil
	}

	// HTTP(S) URLs:
	if u, err := url.ParseRequestURI(arg); err == nil && strings.Contains(arg, "://") {
		if u.Scheme != "" {
			if u.Scheme != "http" && u.Scheme != "https" {
				return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
			}
			// consumer of the source is responsible for closing the ReadCloser.
			resp, err := http.Get(u.String()) //nolint: noctx,bodyclose
			if err != nil {
				return nil, fmt.Errorf("unable to get url: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
			}
			return &source{resp.Body, u.String()}, nil
		}
	}

	r, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	u, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return &source{r, u}, nil
}

func isURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != ""
}

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != "auto" && styles.DefaultStyles[style] == nil {
		style = utils.ExpandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	engineName = viper.GetString("engine")
	voiceID = viper.GetString("voice")
	rateFlag = viper.GetFloat64("rate")
	pitchFlag = viper.GetFloat64("pitch")

	if engineName != "mock" && engineName != "espeak" {
		return fmt.Errorf("unknown engine %q (use espeak or mock)", engineName)
	}
	if maxMB := viper.GetInt("cache.max_size"); maxMB < 1 || maxMB > 10000 {
		return fmt.Errorf("cache max_size must be between 1 and 10000 MB, got %d", maxMB)
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = "notty"
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") {
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}
			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if yes {
		src := &source{reader: os.Stdin}
		defer src.reader.Close() //nolint:errcheck
		return executeSource(cmd, src, os.Stdout)
	}

	if len(args) == 0 {
		return errors.New("missing article source (file, URL, or - for stdin)")
	}

	src, err := sourceFromArg(args[0])
	if err != nil {
		return err
	}
	defer src.reader.Close() //nolint:errcheck
	return executeSource(cmd, src, os.Stdout)
}

func executeSource(cmd *cobra.Command, src *source, w io.Writer) error {
	b, err := io.ReadAll(src.reader)
	if err != nil {
		return fmt.Errorf("unable to read from reader: %w", err)
	}

	b = utils.RemoveFrontmatter(b)
	raw := string(b)

	// Everything is normalized to HTML before sentence extraction. Remote
	// sources and .html files are assumed to be HTML already; markdown and
	// plain text go through goldmark.
	html := raw
	if !utils.IsHTMLFile(src.URL) && !isURL(src.URL) {
		html, err = utils.MarkdownToHTML(raw)
		if err != nil {
			return err
		}
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	if printOut || cmd.Flags().Changed("print") || !isTerminal {
		return renderCLI(raw, w)
	}

	path := ""
	if !isURL(src.URL) {
		path = src.URL
	}
	return runTUI(path, html)
}

// renderCLI renders the source with glamour and writes it out, no TTS.
func renderCLI(content string, w io.Writer) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
	)
	if err != nil {
		return fmt.Errorf("unable to create renderer: %w", err)
	}

	out, err := r.Render(content)
	if err != nil {
		return fmt.Errorf("unable to render markdown: %w", err)
	}
	if _, err = fmt.Fprint(w, out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

func filtersFromConfig() reading.FilterConfig {
	return reading.FilterConfig{
		SkipCode:          viper.GetBool("filters.skip_code"),
		SkipScripts:       viper.GetBool("filters.skip_scripts"),
		StripTagResidue:   viper.GetBool("filters.strip_tag_residue"),
		StripSpecialChars: viper.GetBool("filters.strip_special_chars"),
	}
}

func buildEngine() (reading.Engine, error) {
	if engineName == "mock" {
		return mock.NewAuto(viper.GetInt("mock.words_per_minute")), nil
	}

	sink, err := audio.NewPlayer(audio.Config{
		SampleRate: viper.GetInt("audio.sample_rate"),
		Channels:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open audio device: %w", err)
	}

	cacheDir := viper.GetString("cache.dir")
	if cacheDir == "" {
		scope := gap.NewScope(gap.User, "recite")
		cacheDir, err = scope.CacheDir()
		if err != nil {
			return nil, fmt.Errorf("unable to resolve cache directory: %w", err)
		}
		cacheDir = filepath.Join(cacheDir, "audio")
	} else {
		cacheDir = utils.ExpandPath(cacheDir)
	}

	disk, err := cache.NewDisk(cacheDir, viper.GetInt("cache.max_size"), log.Default())
	if err != nil {
		return nil, fmt.Errorf("unable to open audio cache: %w", err)
	}

	eng, err := espeak.New(espeak.Config{
		Binary:       viper.GetString("espeak.binary"),
		DefaultVoice: viper.GetString("espeak.default_voice"),
		BaseWPM:      viper.GetInt("espeak.base_wpm"),
	}, sink, disk, log.Default())
	if err != nil {
		return nil, err
	}
	return eng, nil
}

// defaultVoiceFromLocale matches the engine's voices against the user's
// locale when no voice was configured.
func defaultVoiceFromLocale(engine reading.Engine) string {
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	if i := strings.IndexByte(locale, '.'); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	return reading.ChooseVoice(engine.Voices(), tag).ID
}

func runTUI(path string, content string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	cfg.Path = path
	cfg.MaxWidth = width
	cfg.EnableMouse = mouse
	cfg.AutoScroll = viper.GetBool("auto_scroll")
	cfg.Filters = filtersFromConfig()

	engine, err := buildEngine()
	if err != nil {
		return err
	}

	settings := reading.VoiceSettings{
		VoiceID: voiceID,
		Rate:    rateFlag,
		Pitch:   pitchFlag,
	}.Clamped()
	if settings.VoiceID == "" {
		settings.VoiceID = defaultVoiceFromLocale(engine)
	}

	ctrl := reading.NewController(engine, reading.Options{
		Voice:   settings,
		Filters: cfg.Filters,
		Logger:  log.Default(),
	})
	defer ctrl.Close() //nolint:errcheck

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, ctrl, content).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().BoolVarP(&printOut, "print", "P", false, "render to stdout instead of reading aloud")
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "espeak", "speech engine (espeak or mock)")
	rootCmd.Flags().StringVar(&voiceID, "voice", "", "voice identifier, engine-specific")
	rootCmd.Flags().Float64Var(&rateFlag, "rate", 1.0, "speech rate (0.5 to 2.0)")
	rootCmd.Flags().Float64Var(&pitchFlag, "pitch", 1.0, "speech pitch (0.5 to 2.0)")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("pitch", rootCmd.Flags().Lookup("pitch"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("auto_scroll", true)

	viper.SetDefault("engine", "espeak")
	viper.SetDefault("voice", "")
	viper.SetDefault("rate", 1.0)
	viper.SetDefault("pitch", 1.0)

	viper.SetDefault("filters.skip_code", true)
	viper.SetDefault("filters.skip_scripts", true)
	viper.SetDefault("filters.strip_tag_residue", true)
	viper.SetDefault("filters.strip_special_chars", true)

	viper.SetDefault("audio.sample_rate", 22050)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.max_size", 100)

	viper.SetDefault("espeak.binary", "espeak-ng")
	viper.SetDefault("espeak.default_voice", "en-us")
	viper.SetDefault("espeak.base_wpm", 175)

	viper.SetDefault("mock.words_per_minute", 150)

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "recite")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "recite")}, dirs...)
	}

	if c := os.Getenv("RECITE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("recite")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("recite")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "recite.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
