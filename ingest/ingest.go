// Package ingest runs the crawl, extract, chunk, embed and upsert pipeline.
package ingest

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/chunk"
	"github.com/fwojciec/siterag/crawl"
)

// Pipeline steps, as reported in a Failure.
const (
	StepFetch   = "fetch"
	StepExtract = "extract"
	StepEmbed   = "embed"
	StepUpsert  = "upsert"
)

// Pipeline ingests a website into one collection of an IndexStore.
type Pipeline struct {
	Crawler      *crawl.Crawler
	Extractor    siterag.ContentExtractor
	Chunker      siterag.Chunker
	Embedder     siterag.Embedder
	Store        siterag.IndexStore
	Collection   string
	TokenCounter siterag.TokenCounter // optional
	Logger       *slog.Logger
}

// Failure records a page whose processing failed at one step.
type Failure struct {
	URL  string
	Step string
	Err  error
}

// Result holds the outcome of an ingestion run.
type Result struct {
	Pages     int // pages fetched
	Chunks    int // chunks produced
	Upserted  int // entries written to the index
	Tokens    int // tokens in upserted chunks, when a TokenCounter is set
	Truncated bool
	Failures  []Failure
}

// Partial reports whether any step failed.
func (r *Result) Partial() bool {
	return len(r.Failures) > 0
}

// Reset removes every entry of the collection.
func (p *Pipeline) Reset(ctx context.Context) error {
	return p.Store.Reset(ctx, p.Collection)
}

// Ingest crawls from seed and indexes every page in visit order. Per-page
// failures are recorded in the Result; entries already written stay in the
// index.
func (p *Pipeline) Ingest(ctx context.Context, seed string) (*Result, error) {
	var result Result

	crawled, err := p.Crawler.Crawl(ctx, seed, func(ctx context.Context, page *siterag.Page) error {
		result.Pages++
		p.processPage(ctx, page, &result)
		return nil
	})
	if crawled != nil {
		result.Truncated = crawled.Truncated
		for _, f := range crawled.Failures {
			result.Failures = append(result.Failures, Failure{URL: f.URL, Step: StepFetch, Err: f.Err})
		}
	}
	return &result, err
}

func (p *Pipeline) processPage(ctx context.Context, page *siterag.Page, result *Result) {
	logger := p.logger()

	segments, err := p.Extractor.Extract(page.Content)
	if err != nil {
		p.fail(result, page.URL, StepExtract, err)
		return
	}

	chunks := p.Chunker.Chunk(segments)
	if len(chunks) == 0 {
		logger.Debug("no content", "url", page.URL, "segments", len(segments))
		return
	}
	result.Chunks += len(chunks)

	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].SourceURL = page.URL
		texts[i] = chunks[i].Text
	}

	vectors, err := p.Embedder.Embed(ctx, texts)
	if err != nil {
		p.fail(result, page.URL, StepEmbed, err)
		return
	}
	if len(vectors) != len(chunks) {
		p.fail(result, page.URL, StepEmbed, siterag.Errorf(siterag.EEMBED, "got %d vectors for %d chunks", len(vectors), len(chunks)))
		return
	}

	entries := make([]siterag.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = siterag.IndexEntry{ID: c.ID, Vector: vectors[i], Document: c.Text}
	}
	if err := p.Store.Upsert(ctx, p.Collection, entries); err != nil {
		p.fail(result, page.URL, StepUpsert, err)
		return
	}
	result.Upserted += len(entries)
	result.Tokens += p.countTokens(ctx, texts)

	logger.Debug("indexed page", "url", page.URL, "chunks", len(chunks))
}

// AddDocument embeds a single text and upserts it. An empty id defaults to
// the content-derived chunk id. Returns the id used.
func (p *Pipeline) AddDocument(ctx context.Context, id, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", siterag.Errorf(siterag.EINVALID, "document text required")
	}
	if id == "" {
		id = chunk.ID(text)
	}

	vectors, err := p.Embedder.Embed(ctx, []string{text})
	if err != nil {
		return "", err
	}
	if len(vectors) != 1 {
		return "", siterag.Errorf(siterag.EEMBED, "got %d vectors for 1 text", len(vectors))
	}

	if err := p.Store.Upsert(ctx, p.Collection, []siterag.IndexEntry{
		{ID: id, Vector: vectors[0], Document: text},
	}); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Pipeline) countTokens(ctx context.Context, texts []string) int {
	if p.TokenCounter == nil {
		return 0
	}
	var total int
	for _, text := range texts {
		if n, err := p.TokenCounter.CountTokens(ctx, text); err == nil {
			total += n
		}
	}
	return total
}

func (p *Pipeline) fail(result *Result, url, step string, err error) {
	p.logger().Warn("ingest page", "url", url, "step", step, "err", err)
	result.Failures = append(result.Failures, Failure{URL: url, Step: step, Err: err})
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
