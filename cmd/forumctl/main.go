// Package main provides forumctl, an operator tool for the forum store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"forumcore/internal/config"
	"forumcore/internal/database"
	"forumcore/internal/observability"

	"github.com/google/uuid"
)

const usage = `Usage: forumctl <command> [args]

Schema and data:
  migrate                          Apply the schema for DB_SCHEMA_MODE
  migrate down <version>           Roll back one applied SQL migration
  seed [users]                     Generate a random forum
  load <fixture.yml>               Load a YAML fixture

Listings:
  sections                         Sections with topic and comment counts
  recent [limit]                   Most recent topics
  topics <sectionID>               Topics of a section
  user-topics <userID>             Topics started by a user
  comments <topicID> [viewerID|all] Comments visible to a viewer
  pending                          Moderation queue
  profile <userID> [own]           Public profile with rating; own creates privacy defaults
  privacy <userID>                 Privacy settings

Moderation and removal:
  admit <commentID>
  delete-topic <topicID>
  delete-comment <commentID>
  delete-section <sectionID>
  anonymize <userID>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	observability.InitLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "forumctl",
		ServiceVersion: "dev",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := observability.WithCorrelationID(context.Background(), uuid.New().String())
	a := newApp(db, cfg, os.Stdout)
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "forumctl %s: %v\n", os.Args[1], err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		_ = shutdown(context.Background())
		os.Exit(1)
	}
}
