// Command filepool-demo drives the file processing worker pool against a
// directory of files and a plugin module, mirroring a typical build pipeline's
// own single-binary CLI style (stdlib flag, no subcommand framework).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entropic-build/filepool/pkg/boundarylog"
	"github.com/entropic-build/filepool/pkg/common/config"
	"github.com/entropic-build/filepool/pkg/common/logging"
	"github.com/entropic-build/filepool/pkg/fsmodel"
	"github.com/entropic-build/filepool/pkg/pool"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Configuration file path")
		cwd         = flag.String("cwd", "", "Working directory module ids resolve against (overrides config)")
		module      = flag.String("module", "", "Plugin module id or path to import (required)")
		concurrency = flag.Int("concurrency", 0, "Number of workers in the pool (overrides config)")
		dev         = flag.Bool("dev", false, "Set the run's dev flag seen by plugins (plugins are not reloaded)")
		debugFlag   = flag.Bool("debug", false, "Enable debug-level plugin log replies")
		files       = flag.String("files", "", "Comma-separated list of file paths to process")
		jsonOutput  = flag.Bool("json", false, "Output results as JSON lines")
	)
	flag.Parse()

	if *module == "" {
		fmt.Fprintln(os.Stderr, "filepool-demo: -module is required")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configFile, *cwd, *concurrency, *dev, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "filepool-demo: %s\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if err := run(cfg, logger, *module, splitFiles(*files), *jsonOutput); err != nil {
		logger.Error("run failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func loadConfig(configFile, cwd string, concurrency int, dev, debug bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if cwd != "" {
		cfg.Cwd = cwd
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if dev {
		cfg.Dev = true
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	level, _ := logging.ParseLogLevel(cfg.Logging.Level)
	format := logging.TextFormat
	if strings.EqualFold(cfg.Logging.Format, "json") {
		format = logging.JSONFormat
	}
	return logging.NewLogger(&logging.Config{
		Level:            level,
		Format:           format,
		Output:           os.Stdout,
		Component:        "filepool-demo",
		EnableSanitizing: cfg.Logging.EnableSanitizing,
	})
}

func splitFiles(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run(cfg *config.Config, logger *logging.Logger, module string, paths []string, jsonOutput bool) error {
	if len(cfg.PluginSearchPaths) > 0 {
		os.Setenv("FILEPOOL_PLUGIN_PATH", strings.Join(cfg.PluginSearchPaths, string(os.PathListSeparator)))
	}

	buildRun := &fsmodel.Run{
		Cwd:         cfg.Cwd,
		Concurrency: cfg.Concurrency,
		Dev:         cfg.Dev,
		Debug:       cfg.Debug,
		Full:        true,
		Log:         boundarylog.NewSink(logger),
	}

	p, err := pool.New(pool.Config{Concurrency: cfg.Concurrency, Run: buildRun})
	if err != nil {
		return fmt.Errorf("constructing pool: %w", err)
	}
	defer p.Dispose()

	uid, err := p.ImportFileProcessor(module)
	if err != nil {
		return fmt.Errorf("importing %s: %w", module, err)
	}

	for _, path := range paths {
		if err := processOne(p, uid, path, buildRun.Log, jsonOutput); err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}
	}
	return nil
}

func processOne(p *pool.Pool, uid int, path string, log fsmodel.Logger, jsonOutput bool) error {
	file := &fsmodel.File{Path: filepath.Clean(path)}

	stream, err := p.ProcessFile(uid, file)
	if err != nil {
		return err
	}

	for item := range boundarylog.Forward(stream, log) {
		if item.Err != nil {
			return item.Err
		}
		printFile(item.File, jsonOutput)
	}
	return nil
}

func printFile(f *fsmodel.File, jsonOutput bool) {
	if jsonOutput {
		fmt.Printf("{\"path\":%q}\n", f.Path)
		return
	}
	fmt.Println(f.Path)
}
