// Command lci-core is the sole build entrypoint §6 describes:
// index_repository(repo_path, repo_id, snapshot_id, incremental) exposed as
// a single "index" CLI command rather than the teacher's daemon/search/MCP
// surface, all of which spec.md's Non-goals place out of scope.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/debug"
	"github.com/standardbeagle/lci/internal/indexing"
	"github.com/standardbeagle/lci/internal/orchestrator"
	"github.com/standardbeagle/lci/internal/typeanalyzer"
	"github.com/standardbeagle/lci/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "lci-core",
		Usage:   "code-analysis pipeline core: parse, resolve, graph and chunk a repository",
		Version: version.Version,
		Commands: []*cli.Command{
			indexCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		debug.FatalAndExit("%v", err)
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "run the full C1-C8 pipeline over a repository and print a build summary",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: ".lci.kdl", Usage: "config file path"},
			&cli.StringFlag{Name: "repo-id", Usage: "stable identifier for this repository", Required: true},
			&cli.StringFlag{Name: "snapshot-id", Usage: "identifier for this build's snapshot", Required: true},
			&cli.StringSliceFlag{Name: "changed", Usage: "incremental mode: only reprocess these file paths"},
			&cli.StringSliceFlag{Name: "deleted", Usage: "incremental mode: these file paths were removed"},
			&cli.BoolFlag{Name: "json", Usage: "print the build summary as JSON"},
			&cli.BoolFlag{Name: "watch", Usage: "after the initial build, watch repo-path and rerun index_repository incrementally on change"},
		},
		Action: runIndex,
	}
}

func runIndex(c *cli.Context) error {
	repoPath := c.Args().First()
	if repoPath == "" {
		return cli.Exit("usage: lci-core index [flags] <repo-path>", 1)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Project.Root = repoPath

	pipelineCfg := cfg.Pipeline
	if pipelineCfg.Parallelism == 0 && pipelineCfg.ParallelismFraction == 0 {
		pipelineCfg = config.DefaultPipeline()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var analyzer *typeanalyzer.Adapter
	if pipelineCfg.EnableExternalTypeAnalyzer && len(pipelineCfg.TypeAnalyzerCommand) > 0 {
		analyzer, err = typeanalyzer.Start(ctx, pipelineCfg.TypeAnalyzerCommand[0], pipelineCfg.TypeAnalyzerCommand[1:], pipelineCfg.TypeAnalyzerProjectRoot)
		if err != nil {
			return fmt.Errorf("starting external type analyzer: %w", err)
		}
	}

	o := orchestrator.New(&pipelineCfg, c.String("repo-id"), c.String("snapshot-id"), analyzer)
	defer o.Close()

	var incremental *orchestrator.IncrementalInput
	if changed, deleted := c.StringSlice("changed"), c.StringSlice("deleted"); len(changed) > 0 || len(deleted) > 0 {
		incremental = &orchestrator.IncrementalInput{ChangedFiles: changed, DeletedFiles: deleted}
	}

	debug.LogIndexing("indexing %s (repo=%s snapshot=%s)", repoPath, c.String("repo-id"), c.String("snapshot-id"))
	result, err := o.IndexRepository(ctx, cfg, repoPath, c.String("repo-id"), c.String("snapshot-id"), incremental)
	if err != nil {
		return fmt.Errorf("index_repository: %w", err)
	}
	if err := printSummary(c, result); err != nil {
		return err
	}

	if !c.Bool("watch") {
		return nil
	}
	return watchAndReindex(ctx, c, cfg, o, repoPath)
}

// watchAndReindex runs the initial build's orchestrator under a file watcher,
// rerunning index_repository with an IncrementalInput built from each
// debounced batch of changed/deleted paths, until ctx is cancelled (Ctrl+C
// or SIGTERM). Rebuilds are serialized: a batch that lands mid-rebuild waits
// for the in-flight one to finish rather than racing the resolver's
// long-lived symbol table (§4.5 incremental update owns that state).
func watchAndReindex(ctx context.Context, c *cli.Context, cfg *config.Config, o *orchestrator.Orchestrator, repoPath string) error {
	cfg.Index.WatchMode = true
	scanner := indexing.NewFileScanner(cfg, 0)

	var rebuildMu sync.Mutex
	bw, err := indexing.NewBatchWatcher(cfg, scanner, func(changed, deleted []string) {
		rebuildMu.Lock()
		defer rebuildMu.Unlock()

		debug.LogIndexing("watch: rebuilding (%d changed, %d deleted)", len(changed), len(deleted))
		incremental := &orchestrator.IncrementalInput{ChangedFiles: changed, DeletedFiles: deleted}
		result, err := o.IndexRepository(ctx, cfg, repoPath, c.String("repo-id"), c.String("snapshot-id"), incremental)
		if err != nil {
			debug.LogIndexing("watch: rebuild failed: %v", err)
			return
		}
		_ = printSummary(c, result)
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}

	if err := bw.Start(repoPath); err != nil {
		return fmt.Errorf("watch %s: %w", repoPath, err)
	}
	defer bw.Stop()

	debug.LogIndexing("watching %s for changes (ctrl-c to stop)", repoPath)
	<-ctx.Done()
	return nil
}

func printSummary(c *cli.Context, result *orchestrator.Result) error {
	summary := struct {
		FilesProcessed int      `json:"files_processed"`
		FailedFiles    []string `json:"failed_files,omitempty"`
		Chunks         int      `json:"chunks"`
		Symbols        int      `json:"symbols"`
		Relations      int      `json:"relations"`
		Ambiguities    int      `json:"ambiguities"`
		Cancelled      bool     `json:"cancelled"`
	}{
		FilesProcessed: len(result.Documents),
		FailedFiles:    result.Summary.FailedFiles,
		Chunks:         len(result.Chunks),
		Cancelled:      result.Summary.Cancelled,
	}
	if result.SymbolGraph != nil {
		summary.Symbols = len(result.SymbolGraph.Symbols)
		summary.Relations = len(result.SymbolGraph.Relations)
	}
	if result.GlobalContext != nil {
		summary.Ambiguities = len(result.GlobalContext.Ambiguities)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(c.App.Writer, "files: %d  chunks: %d  symbols: %d  relations: %d  ambiguities: %d\n",
		summary.FilesProcessed, summary.Chunks, summary.Symbols, summary.Relations, summary.Ambiguities)
	if len(summary.FailedFiles) > 0 {
		fmt.Fprintf(c.App.Writer, "failed: %s\n", strings.Join(summary.FailedFiles, ", "))
	}
	return nil
}
