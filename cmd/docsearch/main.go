package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"docsearch/internal/chunker"
	"docsearch/internal/config"
	"docsearch/internal/embedding"
	"docsearch/internal/embedding/hashing"
	"docsearch/internal/embedding/openai"
	"docsearch/internal/extract"
	"docsearch/internal/render"
	"docsearch/internal/service"
	"docsearch/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath  = flag.String("config", "", "path to YAML config (default: ./config.yaml, then ~/.config/docsearch/config.yaml)")
		build    = flag.Bool("build", false, "build the index from documents in the data directory")
		query    = flag.String("query", "", "query string to search for")
		topK     = flag.Int("top-k", 0, "number of results to return")
		jsonOut  = flag.Bool("json", false, "save query results to results.json")
		runTUI   = flag.Bool("tui", false, "open the interactive search UI")
		dataDir  = flag.String("data-dir", "", "directory containing documents (overrides config)")
		indexDir = flag.String("index-dir", "", "directory for index persistence (overrides config)")
	)
	flag.Parse()

	logger := log.New(os.Stderr)

	if !*build && *query == "" && !*runTUI {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if *indexDir != "" {
		cfg.Storage.IndexDir = *indexDir
	}
	if *topK <= 0 {
		*topK = cfg.Search.TopK
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		logger.Fatal("initializing embedder", "err", err)
	}
	splitter, err := chunker.New(cfg.Chunking.Size, *cfg.Chunking.Overlap)
	if err != nil {
		logger.Fatal("invalid chunking config", "err", err)
	}
	pipeline := service.New(extract.NewAuto(), embedder, splitter, service.Options{
		MaxTopK:          cfg.Search.MaxTopK,
		SummarySentences: cfg.Summary.MaxSentences,
		Logger:           logger,
	})

	ctx := context.Background()

	if *build {
		runBuild(ctx, logger, pipeline, cfg)
		if *query == "" && !*runTUI {
			return
		}
	}

	if err := pipeline.Load(cfg.Storage.IndexDir); err != nil {
		logger.Fatal("loading index (run with -build first?)", "dir", cfg.Storage.IndexDir, "err", err)
	}

	if *query != "" {
		results, err := pipeline.Query(ctx, *query, *topK)
		if err != nil {
			logger.Fatal("query failed", "err", err)
		}
		external := render.FromSearch(results)
		render.Print(os.Stdout, external, cfg.Search.ExcerptLength)
		if *jsonOut {
			if err := render.WriteJSON("results.json", external); err != nil {
				logger.Fatal("writing results.json", "err", err)
			}
			logger.Info("results saved", "path", "results.json")
		}
	}

	if *runTUI {
		summary := pipeline.Summary()
		if summary == "" {
			summary = fmt.Sprintf("%d chunks indexed", pipeline.Size())
		}
		m := tui.New(pipeline, summary, cfg.Search.MaxTopK)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			logger.Fatal("tui", "err", err)
		}
	}
}

func runBuild(ctx context.Context, logger *log.Logger, pipeline *service.Pipeline, cfg *config.AppConfig) {
	docs, err := extract.Discover(cfg.Storage.DataDir)
	if err != nil {
		logger.Fatal("discovering documents", "err", err)
	}
	logger.Info("building index", "documents", len(docs), "data_dir", cfg.Storage.DataDir)

	report, err := pipeline.Build(ctx, docs)
	if err != nil {
		logger.Fatal("build failed", "err", err)
	}
	for _, f := range report.Failures {
		logger.Warn("document skipped", "document", f.DocumentID, "err", f.Err)
	}
	if err := pipeline.Save(cfg.Storage.IndexDir); err != nil {
		logger.Fatal("saving index", "err", err)
	}
	logger.Info("index built",
		"documents", report.Documents,
		"chunks", report.Chunks,
		"skipped", len(report.Failures),
		"index_dir", cfg.Storage.IndexDir)
	if report.Summary != "" {
		fmt.Println(report.Summary)
	}
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func newEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "hashing", "":
		return hashing.New(cfg.Embedder.Dimension), nil
	case "openai":
		oc := openai.Config{Dimension: cfg.Embedder.Dimension}
		if cfg.Embedder.OpenAI != nil {
			oc.APIKeyEnv = cfg.Embedder.OpenAI.APIKeyEnv
			oc.Model = cfg.Embedder.OpenAI.Model
			oc.BaseURL = cfg.Embedder.OpenAI.BaseURL
		}
		return openai.New(oc)
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
}
