package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	Collection   string
	Organization string
	Store        siterag.IndexStore
	Pipeline     *ingest.Pipeline
	Retriever    siterag.Retriever
	Asker        siterag.Asker
	Client       APIClient
}

// APIClient talks to a running API server.
type APIClient interface {
	Health(ctx context.Context) error
	Ask(ctx context.Context, req *siterag.AskRequest) (*siterag.Answer, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  kong.ConfigFlag `help:"YAML configuration file" env:"SITERAG_CONFIG"`
	Verbose bool            `short:"v" help:"Enable debug logging"`

	DB         string   `help:"SQLite index path" env:"SITERAG_DB" default:"${db_path}"`
	Store      string   `help:"Index store backend" enum:"sqlite,chroma,qdrant,elasticsearch" default:"sqlite"`
	ChromaURL  string   `name:"chroma-url" help:"Chroma server URL" env:"CHROMA_URL" default:"http://localhost:8000"`
	QdrantAddr string   `help:"Qdrant gRPC address" env:"QDRANT_ADDR" default:"localhost:6334"`
	ESAddress  []string `name:"es-address" help:"Elasticsearch addresses" env:"ES_ADDRESSES" default:"http://localhost:9200"`
	ESUsername string   `name:"es-username" help:"Elasticsearch username (password from ES_PASSWORD)" env:"ES_USERNAME"`
	Collection string   `help:"Index collection name" default:"frisco_events"`

	Embedder         string   `help:"Embedding backend" enum:"ollama,gemini" default:"ollama"`
	EmbedModel       string   `help:"Ollama embedding model" default:"all-minilm"`
	Generator        string   `help:"Generation backend" enum:"ollama,gemini" default:"ollama"`
	Model            string   `help:"Ollama generation model" default:"gemma3"`
	FallbackModel    []string `help:"Ollama models tried when --model is unavailable" default:"llama2"`
	OllamaHost       string   `help:"Ollama server URL" env:"OLLAMA_HOST" default:"http://localhost:11434"`
	GeminiModel      string   `help:"Gemini generation model" default:"gemini-2.5-flash"`
	GeminiEmbedModel string   `help:"Gemini embedding model" default:"text-embedding-004"`

	Organization string `help:"Organization name used in prompts and the API greeting" default:"the Islamic Center of Frisco"`
	K            int    `short:"k" help:"Chunks retrieved per question" default:"10"`

	Ingest IngestCmd `cmd:"" help:"Crawl the site and index its content"`
	Add    AddCmd    `cmd:"" help:"Index a single text"`
	Search SearchCmd `cmd:"" help:"Show the chunks nearest to a query"`
	Ask    AskCmd    `cmd:"" help:"Answer a question from the indexed content"`
	Serve  ServeCmd  `cmd:"" help:"Serve the question answering API"`
	MCP    MCPCmd    `cmd:"" name:"mcp" help:"Serve search and ask tools over MCP stdio"`
	Chat   ChatCmd   `cmd:"" help:"Chat with a running API server"`
	Reset  ResetCmd  `cmd:"" help:"Remove every entry of the collection"`
	Count  CountCmd  `cmd:"" help:"Print the number of entries in the collection"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Seed     string        `help:"Seed URL" default:"https://friscomasjid.org/"`
	Domain   []string      `help:"In-scope domains; www. variants are implied" default:"friscomasjid.org"`
	Reset    bool          `help:"Clear the collection first"`
	MaxPages int           `help:"Stop after this many pages (0 = unlimited)" default:"0"`
	Rate     float64       `help:"Requests per second per host (0 = unlimited)" default:"0"`
	Timeout  time.Duration `help:"Per-fetch timeout" default:"10s"`
	Retries  int           `help:"Retry a failed fetch this many times with doubling backoff" default:"0"`
	Render   bool          `help:"Render pages with headless Chrome"`

	Extract      string `help:"Content extraction mode" enum:"container,page,article" default:"container"`
	Container    string `help:"CSS selector of the main content region" default:"div.article-content-main"`
	ExcludeToken string `help:"Drop segments containing this token (empty disables)" default:"frisco"`

	ChunkSize    int `help:"Words per chunk" default:"250"`
	ChunkOverlap int `help:"Words shared by consecutive chunks" default:"50"`
	MinWords     int `help:"Minimum words per chunk" default:"30"`

	Archive       string `help:"Directory to archive raw pages in"`
	ArchiveBucket string `help:"MinIO bucket to archive raw pages in"`
	MinioEndpoint string `help:"MinIO endpoint (keys from MINIO_ACCESS_KEY, MINIO_SECRET_KEY)" env:"MINIO_ENDPOINT" default:"localhost:9000"`
	MinioSSL      bool   `name:"minio-ssl" help:"Use TLS for MinIO"`

	CountTokens bool `help:"Count Gemini tokens of indexed chunks"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Text string `arg:"" help:"Text to index"`
	ID   string `help:"Entry id (defaults to a content hash)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Search query"`
	Limit int    `short:"n" help:"Number of chunks to show" default:"5"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address" default:"127.0.0.1:5000"`
}

// MCPCmd is the "mcp" subcommand.
type MCPCmd struct{}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	URL string `help:"API base URL" default:"http://127.0.0.1:5000"`
}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct {
	Force bool `help:"Confirm removal"`
}

// CountCmd is the "count" subcommand.
type CountCmd struct{}
