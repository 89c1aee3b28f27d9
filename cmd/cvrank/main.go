// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/poiesic/cvrank"
	"github.com/poiesic/cvrank/ai"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "cvrank",
		Usage:  "Ingest CVs and rank candidates against job offers",
		Flags:  globalFlags(),
		Before: setupLogger,
		Commands: []*cli.Command{
			ingestCmd(),
			batchStatusCmd(),
			searchCmd(),
			reembedCmd(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info",
			Usage: "Logging level: debug, info, warn or error"},
		&cli.StringFlag{Name: "db", Aliases: []string{"d"}, Value: "./cvrank_db", EnvVars: []string{"CVRANK_DB"},
			Usage: "BadgerDB directory used when no database URL is set"},
		&cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"},
			Usage: "PostgreSQL connection URL; takes precedence over --db"},
		&cli.StringFlag{Name: "provider", Value: string(ai.ProviderOpenAI), EnvVars: []string{"CVRANK_PROVIDER"},
			Usage: "AI provider: openai or gemini"},
		&cli.StringFlag{Name: "api-key", EnvVars: []string{"OPENAI_API_KEY", "GEMINI_API_KEY"},
			Usage: "API key for the AI provider"},
		&cli.StringFlag{Name: "embedding-host", Value: "https://api.openai.com/v1", EnvVars: []string{"EMBEDDING_HOST"},
			Usage: "Base URL of the embeddings API"},
		&cli.StringFlag{Name: "chat-host", EnvVars: []string{"CHAT_HOST"},
			Usage: "Base URL of the chat API; defaults to --embedding-host"},
		&cli.StringFlag{Name: "embedding-model", Value: "text-embedding-3-small", EnvVars: []string{"EMBEDDING_MODEL_NAME"},
			Usage: "Embedding model"},
		&cli.StringFlag{Name: "chat-model", Value: "gpt-4o-mini", EnvVars: []string{"CHAT_MODEL_NAME"},
			Usage: "Chat model for query splitting, rewriting and CV extraction"},
		&cli.IntFlag{Name: "embedding-dim", Value: 1536, EnvVars: []string{"EMBEDDING_DIM"},
			Usage: "Vector dimension enforced by the store"},
	}
}

// openDatabase is replaced in tests.
var openDatabase = func(c *cli.Context) (*cvrank.Database, error) {
	chatHost := c.String("chat-host")
	if chatHost == "" {
		chatHost = c.String("embedding-host")
	}
	cfg := ai.NewConfig(
		ai.WithProvider(ai.Provider(c.String("provider"))),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithChatHost(chatHost),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithEmbeddingDim(c.Int("embedding-dim")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []cvrank.DatabaseOption{cvrank.WithAIConfig(cfg)}
	if url := c.String("database-url"); url != "" {
		opts = append(opts, cvrank.WithDatabaseURL(url))
	}
	db, err := cvrank.NewDatabase(c.Context, c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// setupLogger installs a text handler on stderr at the requested level.
func setupLogger(c *cli.Context) error {
	var level slog.Level
	name := c.String("log-level")
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid log level %q: want debug, info, warn or error", name)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
