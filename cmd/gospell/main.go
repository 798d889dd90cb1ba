/*
Package main implements the gospell server and commandline interface.

gospell checks and suggests corrections for natural-language words
against a compressed trie loaded from a .spl (optionally .sug) file, in
the style of vim/neovim's internal spell-checking subsystem. It can
operate as a msgpack IPC server for editor/generic client integrations
or as a standalone CLI for interactive testing.

# Server Mode

The server loads one or more languages named by -data/spelllang and
answers check/suggest/soundfold/dump/load requests over msgpack on
stdin/stdout.

# CLI Mode

The CLI provides an interactive shell for checking words and listing
suggestions, for debugging and testing the engine's behavior directly.

# Config

Runtime configuration is managed via a config.toml file covering
spelllang/spellsuggest/mkspellmem. A default configuration is created
automatically if one does not exist.
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/gospell/pkg/config"
	"github.com/bastiangx/gospell/pkg/engine"
	"github.com/bastiangx/gospell/pkg/ipc"
)

const (
	version = "0.1.0-beta"
	appName = "gospell"
	gh      = "https://github.com/bastiangx/gospell"
)

func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to custom config.toml file")
	dataDir := flag.String("data", "spell/", "Directory containing .spl/.sug files")
	debugMode := flag.Bool("v", false, "Toggle verbose mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")

	flag.Parse()

	if *showVersion {
		printVersionBanner()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = "config.toml"
	}
	cfg, err := config.InitConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	eng := engine.New()
	loadLanguages(eng, cfg, *dataDir)

	if *cliMode {
		log.SetReportTimestamp(false)
		if err := runCLI(eng); err != nil {
			log.Fatalf("cli error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	showStartupInfo(*dataDir, len(cfg.ParseSpellLang()))

	srv := ipc.NewServer(eng, cfg, configPath)
	if err := srv.Start(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// loadLanguages resolves every spelllang entry against dataDir and
// loads it into eng, skipping cjk (disabled by definition) and
// logging (not aborting on) a load failure, matching spec.md §7's
// "the engine remains operational with previously loaded languages."
func loadLanguages(eng *engine.Engine, cfg *config.Config, dataDir string) {
	for _, spec := range cfg.ParseSpellLang() {
		if spec.CJK {
			log.Debug("cjk entry: checking disabled for East-Asian scripts")
			continue
		}
		path := spec.Path
		name := spec.Name
		if path == "" {
			path = resolveLanguagePath(dataDir, spec.Name, spec.Region)
			name = spec.Name
			if spec.Region != "" {
				name = spec.Name + "_" + spec.Region
			}
		} else {
			name = strings.TrimSuffix(filepath.Base(path), ".spl")
		}
		if path == "" {
			log.Warnf("no .spl file found for language %q under %s", name, dataDir)
			continue
		}
		var regions []string
		if spec.Region != "" {
			regions = append(regions, spec.Region)
		}
		if err := eng.LoadLanguage(name, path, regions...); err != nil {
			log.Warnf("failed to load language %q: %v", name, err)
		}
	}
}

// resolveLanguagePath searches dataDir for spell/<name>.<encoding>.spl,
// falling back to spell/<name>.ascii.spl, per spec.md §6.4.
func resolveLanguagePath(dataDir, name, region string) string {
	base := name
	if region != "" {
		base = name + "_" + region
	}
	candidates := []string{
		filepath.Join(dataDir, base+".utf-8.spl"),
		filepath.Join(dataDir, base+".latin1.spl"),
		filepath.Join(dataDir, base+".ascii.spl"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func printVersionBanner() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"}).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[gospell] A trie-backed spell checker core with a vim-spell-style file layout")
	l.Print("", "version", version)
	l.Print("")
	l.Print("use --help to see available options")
	l.Print("")
	l.Print("Find out more at", "gh", gh)
}

func showStartupInfo(dataDir string, langCount int) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("==========")
	println(" gospell  ")
	println("==========")
	log.Infof("version: %s", version)
	log.Infof("process id: [ %d ]", pid)
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("languages configured: %d", langCount)
	log.Info("status: ready")
	println("==========")
	println("press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}

// runCLI is a minimal interactive shell: a bare word checks it, a
// leading '?' requests suggestions for the rest of the line.
func runCLI(eng *engine.Engine) error {
	log.Print(appName + " CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a word to check it, or '?word' for suggestions (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "?") {
			handleSuggest(eng, strings.TrimPrefix(line, "?"))
			continue
		}
		handleCheck(eng, line)
	}
}

func handleCheck(eng *engine.Engine, word string) {
	class, n := eng.CheckWord([]byte(word), 0)
	log.Printf("%-20s -> %-8s (%d bytes consumed)", word, class, n)
}

func handleSuggest(eng *engine.Engine, word string) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	sugs := eng.Suggestions([]byte(word), 10)
	if len(sugs) == 0 {
		log.Warnf("no suggestions for %q", word)
		return
	}
	log.Printf("suggestions for %q:", word)
	for i, s := range sugs {
		log.Printf("%2d. %-20s (score: %d)", i+1, s.Word, s.Score)
	}
}
