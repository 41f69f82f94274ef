// Package main provides the entry point for diffmap, a command-line tool that
// embeds point sets with diffusion maps. Points come from a CSV or JSON file,
// a text corpus (local or a Hugging Face dataset) embedded through Ollama or
// the Hugging Face Inference API, a Qdrant collection, or a synthetic demo
// dataset. The resulting coordinates are written as CSV or JSON and can
// be written back onto the Qdrant points as payload.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/jrvmalik/manifold-learning/config"
	"github.com/jrvmalik/manifold-learning/dataimport"
	"github.com/jrvmalik/manifold-learning/diffusion"
	"github.com/jrvmalik/manifold-learning/embedding"
	"github.com/jrvmalik/manifold-learning/huggingface"
	"github.com/jrvmalik/manifold-learning/preload"
	"github.com/jrvmalik/manifold-learning/projection"
	"github.com/jrvmalik/manifold-learning/qdrant"
)

// version is set at build time via ldflags, defaults to "dev" for local builds
var version = "dev"

// options collects the command-line flags.
type options struct {
	configPath    string
	neighbors     int
	dimensions    int
	searcher      string
	pcaComponents int
	clusters      int
	textMode      bool
	fromQdrant    bool
	store         bool
	writeback     bool
	demoName      string
	hfDataset     string
	hfConfig      string
	hfSplit       string
	hfColumn      string
	provider      string
	maxPoints     int
	demoSize      int
	demoSeed      int64
	format        string
	outputPath    string
	datasetPath   string
}

// pointSet is the loaded input: row i of vectors is labeled labels[i] and,
// when the points live in Qdrant, stored under ids[i].
type pointSet struct {
	labels  []string
	vectors [][]float32
	points  *mat.Dense
	ids     []string
}

func main() {
	showVersionFlag := flag.Bool("version", false, "print version and exit")

	var opts options
	flag.StringVar(&opts.configPath, "config", "diffmap.yaml", "path to YAML config file (defaults are used if it does not exist)")
	flag.IntVar(&opts.neighbors, "k", 0, "nearest neighbors per point (overrides config)")
	flag.IntVar(&opts.dimensions, "d", 0, "embedding dimensions (overrides config)")
	flag.StringVar(&opts.searcher, "searcher", "", "neighbor search: brute or kdtree (overrides config)")
	flag.IntVar(&opts.pcaComponents, "pca", -1, "principal components kept before neighbor search, 0 disables (overrides config)")
	flag.IntVar(&opts.clusters, "clusters", -1, "k-means clusters on the embedding, 0 disables (overrides config)")
	flag.BoolVar(&opts.textMode, "text", false, "treat the dataset file as a text corpus and embed it with the configured provider")
	flag.BoolVar(&opts.fromQdrant, "qdrant", false, "read points from the configured Qdrant collection")
	flag.BoolVar(&opts.store, "store", false, "upsert the loaded points into Qdrant before embedding")
	flag.BoolVar(&opts.writeback, "writeback", false, "write coordinates and cluster back into Qdrant payloads")
	flag.StringVar(&opts.demoName, "demo", "", "synthetic dataset: "+strings.Join(preload.Names(), ", "))
	flag.StringVar(&opts.hfDataset, "hf", "", "Hugging Face dataset to read texts from (embedded with the configured provider)")
	flag.StringVar(&opts.hfConfig, "hf-config", "default", "Hugging Face dataset config")
	flag.StringVar(&opts.hfSplit, "hf-split", "train", "Hugging Face dataset split")
	flag.StringVar(&opts.hfColumn, "hf-column", "text", "Hugging Face dataset text column")
	flag.StringVar(&opts.provider, "provider", "", "text embedding provider: ollama or huggingface (overrides config)")
	flag.IntVar(&opts.maxPoints, "max-points", 0, "refuse inputs with more points (overrides config)")
	flag.IntVar(&opts.demoSize, "n", 200, "synthetic dataset size, or row limit for -hf")
	flag.Int64Var(&opts.demoSeed, "seed", 1, "synthetic dataset seed")
	flag.StringVar(&opts.format, "format", "csv", "output format: csv or json")
	flag.StringVar(&opts.outputPath, "out", "", "output file (default stdout)")
	flag.Parse()

	// Handle version flag: print version and exit early
	if *showVersionFlag {
		fmt.Println(version)
		return
	}

	if flag.NArg() > 0 {
		opts.datasetPath = flag.Arg(0)
	}

	appConfig, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	appConfig.ApplyEnv()
	applyFlagOverrides(appConfig, opts)
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if err := run(context.Background(), appConfig, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlagOverrides copies explicitly set flags over the file configuration.
func applyFlagOverrides(appConfig *config.AppConfig, opts options) {
	if opts.neighbors > 0 {
		appConfig.Embedding.Neighbors = opts.neighbors
	}
	if opts.dimensions > 0 {
		appConfig.Embedding.Dimensions = opts.dimensions
	}
	if opts.searcher != "" {
		appConfig.Embedding.Searcher = opts.searcher
	}
	if opts.pcaComponents >= 0 {
		appConfig.Embedding.PCAComponents = opts.pcaComponents
	}
	if opts.clusters >= 0 {
		appConfig.Embedding.Clusters = opts.clusters
	}
	if opts.provider != "" {
		appConfig.Embedding.Provider = opts.provider
	}
	if opts.maxPoints > 0 {
		appConfig.Embedding.MaxPoints = opts.maxPoints
	}
}

func run(ctx context.Context, appConfig *config.AppConfig, opts options) error {
	if opts.format != "csv" && opts.format != "json" {
		return fmt.Errorf("unknown output format %q (want csv or json)", opts.format)
	}
	if opts.writeback && !opts.fromQdrant && !opts.store {
		return errors.New("-writeback needs points with qdrant IDs; use -qdrant or -store")
	}

	var qdrantVectorClient *qdrant.Client
	if opts.fromQdrant {
		var err error
		if qdrantVectorClient, err = connectQdrant(appConfig, appConfig.Qdrant.VectorSize); err != nil {
			return err
		}
		defer qdrantVectorClient.Close()
	}

	input, err := loadPointSet(ctx, appConfig, opts, qdrantVectorClient)
	if err != nil {
		return err
	}
	if err := checkPointCount(len(input.labels), appConfig.Embedding.MaxPoints); err != nil {
		return err
	}

	// Points from other sources go to a collection sized for them.
	if qdrantVectorClient == nil && (opts.store || opts.writeback) {
		if qdrantVectorClient, err = connectQdrant(appConfig, input.dimension()); err != nil {
			return err
		}
		defer qdrantVectorClient.Close()
	}

	if opts.store {
		if err := storePoints(ctx, qdrantVectorClient, &input); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Embedding %d points (k=%d, d=%d)...\n",
		len(input.labels), appConfig.Embedding.Neighbors, appConfig.Embedding.Dimensions)
	result, err := projection.Project(input.points, input.labels, appConfig.Projection())
	if err != nil {
		return err
	}

	if opts.writeback {
		if err := writeBack(ctx, qdrantVectorClient, input.ids, result.Points); err != nil {
			return fmt.Errorf("writeback: %w", err)
		}
	}

	return writeResult(opts, result.Points)
}

func connectQdrant(appConfig *config.AppConfig, vectorSize uint64) (*qdrant.Client, error) {
	qdrantVectorClient, connectionError := qdrant.NewClient(
		appConfig.Qdrant.Address,
		appConfig.Qdrant.Collection,
		vectorSize,
	)
	if connectionError != nil {
		fmt.Fprintln(os.Stderr, "Make sure Qdrant is running: docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant")
		return nil, fmt.Errorf("connect to qdrant: %w", connectionError)
	}
	return qdrantVectorClient, nil
}

// checkPointCount rejects inputs whose dense operator would not fit the
// configured budget.
func checkPointCount(n, maxPoints int) error {
	if maxPoints > 0 && n > maxPoints {
		return fmt.Errorf("%d points exceed the limit of %d (the eigensolver needs about %d MB); raise -max-points or embedding.max_points",
			n, maxPoints, 8*n*n>>20)
	}
	return nil
}

// loadPointSet picks the input source from the flags. Exactly one of a
// dataset file, -qdrant, -hf and -demo must be given.
func loadPointSet(ctx context.Context, appConfig *config.AppConfig, opts options, qdrantVectorClient *qdrant.Client) (pointSet, error) {
	sources := 0
	for _, given := range []bool{opts.datasetPath != "", opts.fromQdrant, opts.hfDataset != "", opts.demoName != ""} {
		if given {
			sources++
		}
	}
	if sources != 1 {
		return pointSet{}, errors.New("give exactly one input: a dataset file, -qdrant, -hf, or -demo")
	}

	switch {
	case opts.fromQdrant:
		return loadFromQdrant(ctx, qdrantVectorClient)
	case opts.demoName != "":
		dataset, err := preload.ByName(opts.demoName, opts.demoSize, opts.demoSeed)
		if err != nil {
			return pointSet{}, err
		}
		return fromDataset(dataset), nil
	case opts.hfDataset != "":
		return loadHuggingFaceDataset(ctx, appConfig, opts)
	case opts.textMode:
		return loadTextCorpus(ctx, appConfig, opts.datasetPath)
	default:
		dataset, err := dataimport.LoadPoints(opts.datasetPath)
		if err != nil {
			return pointSet{}, fmt.Errorf("loading dataset: %w", err)
		}
		return fromDataset(dataset), nil
	}
}

// dimension is the length of every vector in the set.
func (p pointSet) dimension() uint64 {
	if len(p.vectors) == 0 {
		return 0
	}
	return uint64(len(p.vectors[0]))
}

func fromDataset(dataset dataimport.Dataset) pointSet {
	rows, _ := dataset.Points.Dims()
	vectors := make([][]float32, rows)
	for i := range vectors {
		row := mat.Row(nil, i, dataset.Points)
		vectors[i] = make([]float32, len(row))
		for j, v := range row {
			vectors[i][j] = float32(v)
		}
	}
	return pointSet{labels: dataset.Labels, vectors: vectors, points: dataset.Points}
}

func fromVectors(labels []string, vectors [][]float32, ids []string) (pointSet, error) {
	points, err := diffusion.FromVectors(vectors)
	if err != nil {
		return pointSet{}, err
	}
	return pointSet{labels: labels, vectors: vectors, points: points, ids: ids}, nil
}

// loadTextCorpus embeds a text corpus with the configured provider. JSON corpora whose entries
// already carry vectors are used as they are.
func loadTextCorpus(ctx context.Context, appConfig *config.AppConfig, datasetPath string) (pointSet, error) {
	if strings.ToLower(filepath.Ext(datasetPath)) == ".json" {
		if entries, err := dataimport.LoadWithVectors(datasetPath); err == nil {
			labels := make([]string, len(entries))
			vectors := make([][]float32, len(entries))
			for i, entry := range entries {
				labels[i], vectors[i] = entry.Text, entry.Vector
			}
			fmt.Fprintf(os.Stderr, "Loaded %d precomputed vectors from %s\n", len(entries), datasetPath)
			return fromVectors(labels, vectors, nil)
		}
	}

	texts, loadError := dataimport.LoadTexts(datasetPath)
	if loadError != nil {
		return pointSet{}, fmt.Errorf("loading dataset: %w", loadError)
	}

	fmt.Fprintf(os.Stderr, "Embedding %d texts from %s...\n", len(texts), datasetPath)
	return embedTexts(ctx, appConfig, texts)
}

// loadHuggingFaceDataset reads a text column from the Dataset Viewer API,
// capped at -n rows.
func loadHuggingFaceDataset(ctx context.Context, appConfig *config.AppConfig, opts options) (pointSet, error) {
	datasetClient := huggingface.NewClient(appConfig.HuggingFace.DatasetsURL)
	texts, err := datasetClient.FetchTexts(ctx, opts.hfDataset, opts.hfConfig, opts.hfSplit, opts.hfColumn, opts.demoSize)
	if err != nil {
		return pointSet{}, fmt.Errorf("fetch %s: %w", opts.hfDataset, err)
	}
	if len(texts) == 0 {
		return pointSet{}, fmt.Errorf("no texts in column %q of %s", opts.hfColumn, opts.hfDataset)
	}

	fmt.Fprintf(os.Stderr, "Embedding %d texts from %s...\n", len(texts), opts.hfDataset)
	return embedTexts(ctx, appConfig, texts)
}

// embedTexts embeds texts with the configured provider, showing progress.
func embedTexts(ctx context.Context, appConfig *config.AppConfig, texts []string) (pointSet, error) {
	textEmbedder, err := appConfig.TextEmbedder()
	if err != nil {
		return pointSet{}, err
	}

	vectors, err := embedding.EmbedAll(ctx, textEmbedder, texts, func(done, total int, text string) {
		fmt.Fprintf(os.Stderr, "\r[%d/%d] %s", done, total, truncateForProgress(text, 40))
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return pointSet{}, err
	}
	return fromVectors(texts, vectors, nil)
}

func loadFromQdrant(ctx context.Context, qdrantVectorClient *qdrant.Client) (pointSet, error) {
	storedPoints, err := qdrantVectorClient.GetAll(ctx)
	if err != nil {
		return pointSet{}, fmt.Errorf("read collection: %w", err)
	}
	if len(storedPoints) == 0 {
		return pointSet{}, errors.New("collection is empty")
	}

	labels := make([]string, len(storedPoints))
	vectors := make([][]float32, len(storedPoints))
	ids := make([]string, len(storedPoints))
	for i, storedPoint := range storedPoints {
		labels[i], vectors[i], ids[i] = storedPoint.Text, storedPoint.Vector, storedPoint.ID
	}
	fmt.Fprintf(os.Stderr, "Read %d points from qdrant\n", len(storedPoints))
	return fromVectors(labels, vectors, ids)
}

// storePoints upserts every point under a fresh UUID and records the IDs so a
// later writeback can find them.
func storePoints(ctx context.Context, qdrantVectorClient *qdrant.Client, input *pointSet) error {
	if input.ids != nil {
		return nil
	}

	input.ids = make([]string, len(input.vectors))
	for i, vector := range input.vectors {
		uniquePointIdentifier := uuid.New().String()
		if err := qdrantVectorClient.Upsert(ctx, uniquePointIdentifier, input.labels[i], vector); err != nil {
			return fmt.Errorf("upsert %q: %w", input.labels[i], err)
		}
		input.ids[i] = uniquePointIdentifier

		fmt.Fprintf(os.Stderr, "\r[%d/%d] %s", i+1, len(input.vectors), truncateForProgress(input.labels[i], 40))
	}
	fmt.Fprintln(os.Stderr, "\nStored.")
	return nil
}

func writeBack(ctx context.Context, qdrantVectorClient *qdrant.Client, ids []string, points []projection.Point) error {
	if len(ids) != len(points) {
		return errors.New("points have no qdrant IDs; use -qdrant or -store")
	}
	for i, point := range points {
		if err := qdrantVectorClient.SetCoordinates(ctx, ids[i], point.Coordinates, point.Cluster); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "Wrote coordinates to %d points\n", len(points))
	return nil
}

func writeResult(opts options, points []projection.Point) (err error) {
	var output io.Writer = os.Stdout
	if opts.outputPath != "" {
		file, createError := os.Create(opts.outputPath)
		if createError != nil {
			return createError
		}
		defer func() {
			if closeError := file.Close(); err == nil {
				err = closeError
			}
		}()
		output = file
	}

	if opts.format == "json" {
		return projection.WriteJSON(output, points)
	}
	return projection.WriteCSV(output, points)
}

// truncateForProgress shortens text to maxLen runes, ending in "...".
func truncateForProgress(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}
