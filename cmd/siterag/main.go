package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/chroma"
	"github.com/fwojciec/siterag/chunk"
	"github.com/fwojciec/siterag/crawl"
	"github.com/fwojciec/siterag/elasticsearch"
	"github.com/fwojciec/siterag/fs"
	"github.com/fwojciec/siterag/gemini"
	"github.com/fwojciec/siterag/goquery"
	sitehttp "github.com/fwojciec/siterag/http"
	"github.com/fwojciec/siterag/ingest"
	"github.com/fwojciec/siterag/minio"
	"github.com/fwojciec/siterag/ollama"
	"github.com/fwojciec/siterag/qdrant"
	"github.com/fwojciec/siterag/rag"
	"github.com/fwojciec/siterag/rod"
	siteslog "github.com/fwojciec/siterag/slog"
	"github.com/fwojciec/siterag/sqlite"
	"github.com/fwojciec/siterag/trafilatura"
	"google.golang.org/genai"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, when the sqlite store is selected.
	DB *sqlite.DB

	gemini  *genai.Client
	closers []func() error
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases everything opened by Run, most recent first.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// NewParser returns the kong parser for cli.
func NewParser(cli *CLI, stdout, stderr io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("siterag"),
		kong.Description("Crawl a website into a vector index and answer questions from it."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(yamlConfig, "~/.siterag/config.yaml"),
		kong.Vars{"db_path": defaultDBPath()},
	)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := NewParser(cli, stdout, stderr)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'siterag --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	logger := newLogger(stderr, cli.Verbose)
	deps := &Dependencies{
		Ctx:          ctx,
		Stdin:        stdin,
		Stdout:       stdout,
		Stderr:       stderr,
		Logger:       logger,
		Collection:   cli.Collection,
		Organization: cli.Organization,
	}
	defer m.Close()

	if cmd == "chat" {
		deps.Client = sitehttp.NewClient(cli.Chat.URL)
		return kongCtx.Run(deps)
	}

	store, err := m.openStore(cli)
	if err != nil {
		return err
	}
	deps.Store = siteslog.NewLoggingIndexStore(store, logger)

	if cmd == "reset" || cmd == "count" {
		return kongCtx.Run(deps)
	}

	embedder, err := m.newEmbedder(ctx, cli, stderr)
	if err != nil {
		return err
	}
	embedder = siteslog.NewLoggingEmbedder(embedder, logger)

	deps.Pipeline = &ingest.Pipeline{
		Chunker:    chunk.New(),
		Embedder:   embedder,
		Store:      deps.Store,
		Collection: cli.Collection,
		Logger:     logger,
	}
	retriever := &rag.Retriever{
		Embedder:   embedder,
		Store:      deps.Store,
		Collection: cli.Collection,
		Logger:     logger,
	}
	deps.Retriever = retriever

	switch cmd {
	case "ingest":
		if err := m.wireIngest(ctx, cli, deps, stderr); err != nil {
			return err
		}
	case "ask", "serve", "mcp":
		generator, err := m.newGenerator(ctx, cli)
		if err != nil {
			if cmd == "ask" {
				fmt.Fprintf(stderr, "Hint: %s\n", generatorHint(cli))
				return err
			}
			logger.Warn("generation unavailable", "err", err)
			break
		}
		deps.Asker = &rag.Asker{
			Retriever:    retriever,
			Generator:    siteslog.NewLoggingGenerator(generator, logger),
			Organization: cli.Organization,
			K:            cli.K,
		}
	}

	return kongCtx.Run(deps)
}

// newLogger returns a text logger on w at Warn, or Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (m *Main) openStore(cli *CLI) (siterag.IndexStore, error) {
	switch cli.Store {
	case "chroma":
		s, err := chroma.Open(cli.ChromaURL, nil)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, s.Close)
		return s, nil

	case "qdrant":
		s, err := qdrant.Open(cli.QdrantAddr)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, s.Close)
		return s, nil

	case "elasticsearch":
		return elasticsearch.New(elasticsearch.Config{
			Addresses: cli.ESAddress,
			Username:  cli.ESUsername,
			Password:  os.Getenv("ES_PASSWORD"),
		})

	default:
		if dir := filepath.Dir(cli.DB); dir != "" {
			_ = os.MkdirAll(dir, 0755)
		}
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			return nil, fmt.Errorf("failed to open index at %q (set SITERAG_DB to use a different path): %w", cli.DB, err)
		}
		m.closers = append(m.closers, m.DB.Close)
		return sqlite.NewIndexStore(m.DB), nil
	}
}

func (m *Main) geminiClient(ctx context.Context) (*genai.Client, error) {
	if m.gemini != nil {
		return m.gemini, nil
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	m.gemini = client
	return client, nil
}

func (m *Main) newEmbedder(ctx context.Context, cli *CLI, stderr io.Writer) (siterag.Embedder, error) {
	if cli.Embedder == "gemini" {
		client, err := m.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		return gemini.NewEmbedder(client, cli.GeminiEmbedModel)
	}

	client, err := ollama.NewClient(cli.OllamaHost, ollama.DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	e, err := ollama.NewEmbedder(ctx, client, cli.EmbedModel)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: is Ollama running at %s?\n", cli.OllamaHost)
		return nil, err
	}
	return e, nil
}

func (m *Main) newGenerator(ctx context.Context, cli *CLI) (siterag.Generator, error) {
	if cli.Generator == "gemini" {
		client, err := m.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		return gemini.NewGenerator(client, cli.GeminiModel), nil
	}

	client, err := ollama.NewClient(cli.OllamaHost, ollama.DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	return ollama.NewGenerator(ctx, client, append([]string{cli.Model}, cli.FallbackModel...)...)
}

func generatorHint(cli *CLI) string {
	if cli.Generator == "gemini" {
		return "check that GEMINI_API_KEY is valid"
	}
	return fmt.Sprintf("pull a model with 'ollama pull %s'", cli.Model)
}

// wireIngest builds the crawler, extractor and archive for the ingest command.
func (m *Main) wireIngest(ctx context.Context, cli *CLI, deps *Dependencies, stderr io.Writer) error {
	c := &cli.Ingest

	var fetcher siterag.Fetcher
	if c.Render {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed for --render")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = sitehttp.NewFetcher(sitehttp.WithTimeout(c.Timeout))
	}
	m.closers = append(m.closers, fetcher.Close)

	scope := siterag.NewScope(c.Domain...)
	crawler := &crawl.Crawler{
		Fetcher:  siteslog.NewLoggingFetcher(fetcher, deps.Logger),
		Links:    goquery.NewLinkExtractor(scope),
		Scope:    scope,
		Logger:   deps.Logger,
		MaxPages: c.MaxPages,
	}
	if c.Retries > 0 {
		crawler.RetryDelays = crawl.RetryDelays(c.Retries)
	}
	if c.Rate > 0 {
		crawler.Limiter = crawl.NewHostLimiter(c.Rate)
	}

	switch {
	case c.Archive != "":
		dir := filepath.Clean(c.Archive)
		crawler.Pages = fs.NewFileStore(filepath.Dir(dir), filepath.Base(dir))
	case c.ArchiveBucket != "":
		store, err := minio.New(minio.Config{
			Endpoint:        c.MinioEndpoint,
			Bucket:          c.ArchiveBucket,
			Prefix:          "html_files",
			AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:          c.MinioSSL,
		})
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		crawler.Pages = store
	}

	switch c.Extract {
	case "page":
		deps.Pipeline.Extractor = goquery.NewContentExtractor(goquery.WithWholePage(), goquery.WithExcludedToken(c.ExcludeToken))
	case "article":
		deps.Pipeline.Extractor = trafilatura.NewExtractor(trafilatura.WithExcludedToken(c.ExcludeToken))
	default:
		deps.Pipeline.Extractor = goquery.NewContentExtractor(goquery.WithContainer(c.Container), goquery.WithExcludedToken(c.ExcludeToken))
	}

	deps.Pipeline.Crawler = crawler
	deps.Pipeline.Chunker = chunk.New(
		chunk.WithSize(c.ChunkSize),
		chunk.WithOverlap(c.ChunkOverlap),
		chunk.WithMinWords(c.MinWords),
	)

	if c.CountTokens {
		counter, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		deps.Pipeline.TokenCounter = counter
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "siterag.db"
	}
	return filepath.Join(home, ".siterag", "index.db")
}
