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
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/dirtycat"
	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/embed"
	"github.com/poiesic/dirtycat/embed/openai"
	"github.com/poiesic/dirtycat/encoder"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	app := &cli.App{
		Name:  "dirtycat",
		Usage: "Encode dirty categorical string data",
		Flags: []cli.Flag{
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
				Name:   "fit",
				Usage:  "Fit an encoder on category values and store the model",
				Action: fitCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Name to store the fitted model under",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Input file with one category value per line (- for stdin)",
						Value:   "-",
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Encoder kind (agglomerative, distance)",
						Value: "agglomerative",
					},
					&cli.Float64Flag{
						Name:    "threshold",
						Aliases: []string{"t"},
						Usage:   "Cut threshold: cluster count for maxclust, distance for distance criterion",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "criterion",
						Usage: "Cut criterion (maxclust, distance)",
						Value: string(core.CriterionMaxClust),
					},
					&cli.StringFlag{
						Name:  "linkage",
						Usage: "Linkage method (average, complete, single)",
						Value: string(core.LinkageAverage),
					},
					&cli.StringFlag{
						Name:  "metric",
						Usage: "Distance metric (dice, jaccard, cosine)",
						Value: string(core.MetricDice),
					},
					&cli.StringFlag{
						Name:  "unknown-policy",
						Usage: "Handling of unseen categories (force-linkage, impute-missing)",
						Value: string(core.UnknownForceLinkage),
					},
					&cli.IntFlag{
						Name:  "ngram-min",
						Usage: "Minimum character n-gram length",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "ngram-max",
						Usage: "Maximum character n-gram length",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:  "keep-case",
						Usage: "Preserve letter case instead of lowercasing values",
					},
					&cli.IntFlag{
						Name:  "components",
						Usage: "Output dimensions for the distance encoder",
						Value: 2,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL; enables semantic vectors",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
				},
			},
			{
				Name:   "encode",
				Usage:  "Encode values with a stored model",
				Action: encodeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Name of the stored model",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Input file with one category value per line (- for stdin)",
						Value:   "-",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL for semantic models",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name for semantic models",
					},
				},
			},
			{
				Name:   "clusters",
				Usage:  "Show the clusters of a stored agglomerative model",
				Action: clustersCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Name of the stored model",
						Required: true,
					},
				},
			},
			{
				Name:  "models",
				Usage: "Manage stored models",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List stored models",
						Action: listModelsCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "db",
								Aliases:  []string{"d"},
								Usage:    "Path to BadgerDB database directory",
								Required: true,
							},
						},
					},
					{
						Name:   "delete",
						Usage:  "Delete a stored model",
						Action: deleteModelCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "db",
								Aliases:  []string{"d"},
								Usage:    "Path to BadgerDB database directory",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Usage:    "Name of the stored model",
								Required: true,
							},
						},
					},
				},
			},
		},
	}

	return app.Run(args)
}

func fitCommand(c *cli.Context) error {
	ctx := context.Background()

	values, err := readValues(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	opts, err := encoderOptions(c)
	if err != nil {
		return err
	}

	store, err := dirtycat.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	name := c.String("name")

	switch c.String("kind") {
	case string(core.KindAgglomerative):
		enc, err := encoder.NewAgglomerative(c.Float64("threshold"), opts...)
		if err != nil {
			return err
		}
		defer enc.Release()
		if err := enc.Fit(ctx, values); err != nil {
			return fmt.Errorf("fit failed: %w", err)
		}
		if err := store.SaveEncoder(ctx, name, enc); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Fitted %d categories into %d clusters, saved as %q\n",
			len(enc.Categories()), countClusters(enc.Clusters()), name)
	case string(core.KindDistance):
		enc, err := encoder.NewDistance(opts...)
		if err != nil {
			return err
		}
		defer enc.Release()
		if err := enc.Fit(ctx, values); err != nil {
			return fmt.Errorf("fit failed: %w", err)
		}
		if err := store.SaveEncoder(ctx, name, enc); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Fitted %d categories into %d components, saved as %q\n",
			len(enc.Categories()), enc.NComponents(), name)
	default:
		return fmt.Errorf("invalid kind %q: must be one of agglomerative, distance", c.String("kind"))
	}

	return nil
}

func encodeCommand(c *cli.Context) error {
	ctx := context.Background()

	values, err := readValues(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	store, err := dirtycat.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	opts, err := encoderOptions(c)
	if err != nil {
		return err
	}

	name := c.String("name")
	model, err := store.Models().GetModel(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load model %q: %w", name, err)
	}

	out := csv.NewWriter(os.Stdout)
	defer out.Flush()

	switch model.Kind {
	case core.KindAgglomerative:
		enc, err := encoder.RestoreAgglomerative(model, opts...)
		if err != nil {
			return err
		}
		defer enc.Release()
		assignments, err := enc.Transform(ctx, values)
		if err != nil {
			return fmt.Errorf("transform failed: %w", err)
		}
		for _, a := range assignments {
			cluster := strconv.Itoa(a.Cluster)
			if !a.Known {
				cluster = "NaN"
			}
			if err := out.Write([]string{a.Category, cluster}); err != nil {
				return err
			}
		}
	case core.KindDistance:
		enc, err := encoder.RestoreDistance(model, opts...)
		if err != nil {
			return err
		}
		defer enc.Release()
		rows, err := enc.Transform(ctx, values)
		if err != nil {
			return fmt.Errorf("transform failed: %w", err)
		}
		for i, row := range rows {
			record := make([]string, 0, len(row)+1)
			record = append(record, values[i])
			for _, v := range row {
				record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := out.Write(record); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("model %q has unknown kind %q", name, model.Kind)
	}

	return nil
}

func clustersCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := dirtycat.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	name := c.String("name")
	model, err := store.Models().GetModel(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load model %q: %w", name, err)
	}
	if model.Kind != core.KindAgglomerative {
		return fmt.Errorf("model %q is not an agglomerative model", name)
	}

	byCluster := make(map[int][]string)
	for i, category := range model.Categories {
		byCluster[model.Clusters[i]] = append(byCluster[model.Clusters[i]], category)
	}

	labels := make([]int, 0, len(byCluster))
	for label := range byCluster {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	for _, label := range labels {
		fmt.Printf("cluster %d:\n", label)
		for _, category := range byCluster[label] {
			fmt.Printf("  %s\n", category)
		}
	}

	return nil
}

func listModelsCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := dirtycat.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	infos, err := store.Models().ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, info := range infos {
		fmt.Printf("%s\t%s\t%s\t%d categories\t%s\n",
			info.Name, info.Kind, info.Source, info.Categories,
			info.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func deleteModelCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := dirtycat.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	name := c.String("name")
	if err := store.Models().DeleteModel(ctx, name); err != nil {
		return fmt.Errorf("failed to delete model %q: %w", name, err)
	}
	fmt.Fprintf(os.Stderr, "Deleted model %q\n", name)

	return nil
}

// encoderOptions builds encoder options from the command flags that are
// set. Flags a command does not declare read as zero values and are
// skipped.
func encoderOptions(c *cli.Context) ([]encoder.Option, error) {
	var opts []encoder.Option

	if c.IsSet("metric") {
		opts = append(opts, encoder.WithMetric(core.Metric(c.String("metric"))))
	}
	if l := c.String("linkage"); l != "" {
		opts = append(opts, encoder.WithLinkage(core.Linkage(l)))
	}
	if cr := c.String("criterion"); cr != "" {
		opts = append(opts, encoder.WithCriterion(core.Criterion(cr)))
	}
	if p := c.String("unknown-policy"); p != "" {
		opts = append(opts, encoder.WithUnknownPolicy(core.UnknownPolicy(p)))
	}
	if c.Int("ngram-min") > 0 && c.Int("ngram-max") > 0 {
		opts = append(opts, encoder.WithNGramRange(c.Int("ngram-min"), c.Int("ngram-max")))
	}
	if c.Bool("keep-case") {
		opts = append(opts, encoder.WithLowercase(false))
	}
	if c.Int("components") > 0 {
		opts = append(opts, encoder.WithComponents(c.Int("components")))
	}

	if host := c.String("embedding-host"); host != "" {
		model := c.String("embedding-model")
		if model == "" {
			return nil, fmt.Errorf("embedding-model is required when embedding-host is set")
		}
		config := embed.DefaultConfig(
			embed.WithHost(host),
			embed.WithModel(model),
		)
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid embedding configuration: %w", err)
		}
		embedder, err := openai.NewEmbedder(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		opts = append(opts, encoder.WithEmbedder(embedder))
	}

	return opts, nil
}

// readValues reads one category value per line; "-" reads stdin.
// Blank lines are kept: an empty string is a legitimate category value.
func readValues(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var values []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		values = append(values, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func countClusters(labels []int) int {
	seen := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
