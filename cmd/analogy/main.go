package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"analogy/internal/analogy"
	"analogy/internal/config"
	"analogy/internal/dataset"
	"analogy/internal/domain"
	"analogy/internal/models"
	"analogy/internal/service"
	"analogy/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath     string
		modelName   string
		dimension   int
		modelFile   string
		binary      bool
		cacheDir    string
		mirror      string
		noCache     bool
		topK        int
		searchSpace int
		suitePath   string
		outPath     string
		testMode    bool
		neighborsOf string
		arithmetic  bool
		positive    string
		negative    string
		interactive bool
		listModels  bool
		verbose     bool
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/analogy/config.yaml if not provided)")
	flag.StringVar(&modelName, "model", "", "Model family: word2vec, glove, glove-twitter, fasttext")
	flag.IntVar(&dimension, "dim", 0, "Vector dimension for families published in several sizes")
	flag.StringVar(&modelFile, "model-file", "", "Load vectors from a local file instead of a published model")
	flag.BoolVar(&binary, "binary", false, "Treat -model-file as word2vec binary format")
	flag.StringVar(&cacheDir, "cache-dir", "", "Directory for downloaded and cached models")
	flag.StringVar(&mirror, "mirror", "", "Base URL to fetch model archives from instead of the catalog hosts")
	flag.BoolVar(&noCache, "no-cache", false, "Skip the parsed-vector cache")
	flag.IntVar(&topK, "top", 0, "How many neighbors to return per query")
	flag.IntVar(&searchSpace, "search-space", 0, "Restrict search to the N most frequent tokens (0 = all)")
	flag.StringVar(&suitePath, "suite", "", "Analogy suite CSV to evaluate")
	flag.StringVar(&outPath, "out", "", "Write per-record suite results to this CSV file")
	flag.BoolVar(&testMode, "test", false, "Answer one analogy; expects 3 or 4 words after the flags: A B C [D]")
	flag.StringVar(&neighborsOf, "neighbors", "", "List the tokens most similar to this word")
	flag.BoolVar(&arithmetic, "arithmetic", false, "Word arithmetic over the -positive/-negative term lists")
	flag.StringVar(&positive, "positive", "", "Comma-separated tokens to add (word arithmetic)")
	flag.StringVar(&negative, "negative", "", "Comma-separated tokens to subtract (word arithmetic)")
	flag.BoolVar(&interactive, "interactive", false, "Start the interactive explorer")
	flag.BoolVar(&listModels, "list-models", false, "List downloadable models and exit")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if listModels {
		fmt.Println("Downloadable models:")
		for _, l := range models.Catalog() {
			fmt.Printf("  %-34s %4dd  %s\n", l.Name, l.Dimension, l.Size)
		}
		return
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Flags override the config file.
	if modelName != "" {
		cfg.Model.Type = modelName
	}
	if dimension != 0 {
		cfg.Model.Dimension = dimension
	}
	if modelFile != "" {
		cfg.Model.Path = modelFile
		cfg.Model.Binary = binary
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if mirror != "" {
		cfg.Cache.Mirror = mirror
	}
	if noCache {
		cfg.Cache.Disabled = true
	}
	if topK != 0 {
		cfg.Search.TopK = topK
	}
	if searchSpace != 0 {
		cfg.Search.SearchSpace = searchSpace
	}
	if suitePath != "" {
		cfg.Dataset.Path = suitePath
	}
	if outPath != "" {
		cfg.Dataset.Results = outPath
	}
	if cfg.Cache.Mirror == "" {
		cfg.Cache.Mirror = os.Getenv("ANALOGY_MIRROR")
	}

	model, err := modelFromConfig(cfg.Model)
	if err != nil {
		log.Fatalf("invalid model selection: %v", err)
	}

	provider, err := models.NewProvider(models.Options{
		CacheDir:     cfg.Cache.Dir,
		Mirror:       cfg.Cache.Mirror,
		DisableCache: cfg.Cache.Disabled,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to init model provider: %v", err)
	}
	defer provider.Close()

	store, err := provider.Load(context.Background(), model)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	svc := service.NewAnalogyService(analogy.New(store), cfg.Search.TopK, cfg.Search.SearchSpace)

	switch {
	case testMode:
		runTest(svc, flag.Args())
	case neighborsOf != "":
		runNeighbors(svc, neighborsOf)
	case arithmetic || positive != "" || negative != "":
		runArithmetic(svc, positive, negative)
	case interactive:
		info := fmt.Sprintf("%s: %d tokens, %d dimensions",
			model.WithDefaults().Name(), store.Len(), store.Dimension())
		m := tui.New(svc, info)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			log.Fatal(err)
		}
	default:
		runSuite(svc, cfg.Dataset.Path, cfg.Dataset.Results)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: analogy [flags] [words...]\n\n")
	fmt.Fprintf(out, "Explores word-embedding analogies. Without a mode flag it evaluates\n")
	fmt.Fprintf(out, "the configured analogy suite and prints a per-category summary.\n\n")
	fmt.Fprintf(out, "Modes:\n")
	fmt.Fprintf(out, "  -test A B C [D]        answer \"A is to B as C is to ?\" (D scores it, \"?\" skips scoring)\n")
	fmt.Fprintf(out, "  -neighbors WORD        list the most similar tokens\n")
	fmt.Fprintf(out, "  -arithmetic -positive a,b -negative c   word arithmetic\n")
	fmt.Fprintf(out, "  -suite PATH [-out PATH]   evaluate an analogy suite CSV\n")
	fmt.Fprintf(out, "  -interactive           start the explorer TUI\n")
	fmt.Fprintf(out, "  -list-models           show downloadable models\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

// modelFromConfig maps the config section to a model identifier. A file
// path always selects the custom variant.
func modelFromConfig(mc config.ModelConfig) (models.Model, error) {
	if mc.Path != "" {
		return models.Model{
			Variant:   models.Custom,
			Dimension: mc.Dimension,
			Path:      mc.Path,
			Binary:    mc.Binary,
		}, nil
	}
	variant, err := models.ParseVariant(mc.Type)
	if err != nil {
		return models.Model{}, err
	}
	return models.Model{Variant: variant, Dimension: mc.Dimension}, nil
}

func runTest(svc *service.AnalogyService, words []string) {
	if len(words) < 3 || len(words) > 4 {
		log.Fatalf("-test expects 3 or 4 words, got %d (usage: -test A B C [D])", len(words))
	}
	expected := ""
	if len(words) == 4 && words[3] != "?" {
		expected = words[3]
	}

	res, err := svc.Test(words[0], words[1], words[2], expected)
	if err != nil {
		log.Fatalf("analogy failed: %v", err)
	}

	fmt.Printf("%s : %s :: %s : ?\n", words[0], words[1], words[2])
	printNeighbors(res.Neighbors)
	if expected != "" {
		if res.Matched {
			fmt.Printf("expected %q ranked #%d\n", expected, res.Rank)
		} else {
			fmt.Printf("expected %q not in the top %d\n", expected, len(res.Neighbors))
		}
	}
}

func runNeighbors(svc *service.AnalogyService, token string) {
	neighbors, err := svc.Neighbors(token)
	if err != nil {
		log.Fatalf("neighbor search failed: %v", err)
	}
	fmt.Printf("nearest to %q\n", token)
	printNeighbors(neighbors)
}

func runArithmetic(svc *service.AnalogyService, positive, negative string) {
	expr := analogy.Expression{
		Positive: splitTokens(positive),
		Negative: splitTokens(negative),
	}
	neighbors, err := svc.Arithmetic(expr)
	if err != nil {
		log.Fatalf("word arithmetic failed: %v", err)
	}
	fmt.Printf("%s = ?\n", expr)
	printNeighbors(neighbors)
}

func runSuite(svc *service.AnalogyService, path, resultsPath string) {
	summary, rows, err := svc.RunSuite(path)
	if err != nil {
		log.Fatalf("suite failed: %v", err)
	}
	fmt.Print(summary)
	if resultsPath != "" {
		if err := dataset.WriteResults(resultsPath, rows); err != nil {
			log.Fatalf("failed to write results: %v", err)
		}
		fmt.Printf("per-record results written to %s\n", resultsPath)
	}
}

func printNeighbors(neighbors []domain.Neighbor) {
	for i, n := range neighbors {
		fmt.Printf("%2d. %-24s %.4f\n", i+1, n.Token, n.Score)
	}
}

func splitTokens(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
