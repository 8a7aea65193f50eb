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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/medgate"
	auditbadger "github.com/poiesic/medgate/audit/badger"
	"github.com/poiesic/medgate/config"
	"github.com/poiesic/medgate/index"
)

func main() {
	app := &cli.App{
		Name:  "medgate",
		Usage: "Safety-gated retrieval pipeline for medical questions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Run one question through the pipeline",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "User identifier recorded in the audit trail",
					},
					&cli.BoolFlag{
						Name:  "scores",
						Usage: "Print quality scores alongside the answer",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Embed passages from a JSONL file and add them to the index",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSONL file with one passage per line: {\"text\", \"source_id\", \"offset\"}",
						Required: true,
					},
				},
			},
			{
				Name:  "audit",
				Usage: "Inspect the audit trail",
				Subcommands: []*cli.Command{
					{
						Name:   "recent",
						Usage:  "Show the most recent pipeline runs",
						Action: auditRecentCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Number of runs to show",
								Value: 10,
							},
						},
					},
					{
						Name:   "stats",
						Usage:  "Show aggregate statistics for a time window",
						Action: auditStatsCommand,
						Flags: []cli.Flag{
							&cli.DurationFlag{
								Name:  "window",
								Usage: "How far back to aggregate",
								Value: 24 * time.Hour,
							},
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	service, err := medgate.NewService(cfg)
	if err != nil {
		return fmt.Errorf("building service: %w", err)
	}
	defer service.Close()

	result, err := service.Ask(context.Background(), question, c.String("user"))
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	fmt.Println(result.Answer)

	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, source := range result.Sources {
			fmt.Printf("  [%d] %s (offset %d)\n", i+1, source.SourceID, source.Offset)
		}
	}

	if c.Bool("scores") && result.Scores != nil {
		fmt.Printf("\nScores: faithfulness=%.3f context_precision=%.3f context_recall=%.3f answer_relevancy=%.3f gate=%v\n",
			result.Scores.Faithfulness,
			result.Scores.ContextPrecision,
			result.Scores.ContextRecall,
			result.Scores.AnswerRelevancy,
			result.Scores.GatePassed)
	}

	fmt.Fprintf(os.Stderr, "\nrun %s: %dms, %d tokens\n",
		result.RunID, result.ResponseTimeMs, result.TokensUsed)

	return nil
}

// seedPassage is one line of the seed JSONL file.
type seedPassage struct {
	Text     string `json:"text"`
	SourceID string `json:"source_id"`
	Offset   int    `json:"offset"`
}

func seedCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	passages, err := loadPassages(c.String("file"))
	if err != nil {
		return err
	}

	service, err := medgate.NewService(cfg)
	if err != nil {
		return fmt.Errorf("building service: %w", err)
	}
	defer service.Close()

	fmt.Fprintf(os.Stderr, "Seeding %d passages...\n", len(passages))
	if err := service.Seed(context.Background(), passages); err != nil {
		return fmt.Errorf("seeding index: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Index now holds %d passages\n", service.Index().Count())

	return nil
}

// loadPassages reads a JSONL passage file, one object per line. Blank lines
// are skipped; malformed or incomplete lines fail the whole load.
func loadPassages(path string) ([]index.Passage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening passage file: %w", err)
	}
	defer file.Close()

	var passages []index.Passage
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var passage seedPassage
		if err := json.Unmarshal([]byte(text), &passage); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}
		if passage.Text == "" || passage.SourceID == "" {
			return nil, fmt.Errorf("line %d: text and source_id are required", line)
		}
		passages = append(passages, index.Passage{
			Text:     passage.Text,
			SourceID: passage.SourceID,
			Offset:   passage.Offset,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading passage file: %w", err)
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("no passages found in %s", path)
	}
	return passages, nil
}

func auditRecentCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	sink, err := auditbadger.Open(cfg.Audit.Path, cfg.Audit.InMemory)
	if err != nil {
		return fmt.Errorf("opening audit store: %w", err)
	}
	defer sink.Close()

	records, err := sink.Recent(context.Background(), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("reading audit records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No audit records found.")
		return nil
	}

	for _, record := range records {
		status := "ok"
		if record.Blocked {
			status = "blocked (" + record.BlockStage + ")"
		}
		fmt.Printf("%s  %s  %s  %dms  %d tokens\n",
			record.Timestamp.Format(time.RFC3339),
			record.RunID,
			status,
			record.ResponseTimeMs,
			record.TokensUsed)
		fmt.Printf("    Q: %s\n", record.Question)
		if record.Blocked {
			fmt.Printf("    reason: %s\n", record.BlockReason)
		}
	}

	return nil
}

func auditStatsCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	sink, err := auditbadger.Open(cfg.Audit.Path, cfg.Audit.InMemory)
	if err != nil {
		return fmt.Errorf("opening audit store: %w", err)
	}
	defer sink.Close()

	now := time.Now().UTC()
	summary, err := sink.Summary(context.Background(), now.Add(-c.Duration("window")), now)
	if err != nil {
		return fmt.Errorf("summarizing audit records: %w", err)
	}

	fmt.Printf("Queries:          %d\n", summary.TotalQueries)
	fmt.Printf("Blocked:          %d (%.1f%%)\n", summary.Blocked, summary.BlockRate*100)
	fmt.Printf("Avg response:     %.0fms\n", summary.AvgResponseMs)
	fmt.Printf("Total tokens:     %d\n", summary.TotalTokens)
	fmt.Printf("Total cost:       %.4f\n", summary.TotalCost)
	fmt.Printf("Avg faithfulness: %.3f\n", summary.AvgFaithfulness)
	fmt.Printf("Avg precision:    %.3f\n", summary.AvgPrecision)
	fmt.Printf("Gate pass rate:   %.1f%%\n", summary.GatePassRate*100)

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
