// Package main is an interactive CLI for asking questions about the dataset
// without running the API server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gigsight/gigsight/internal/ai"
	"github.com/gigsight/gigsight/internal/analysis"
	"github.com/gigsight/gigsight/internal/answer"
	"github.com/gigsight/gigsight/internal/cache"
	"github.com/gigsight/gigsight/internal/config"
	"github.com/gigsight/gigsight/internal/dataset"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	_ = godotenv.Load()

	dataPath := flag.String("data", os.Getenv("DATASET_PATH"), "path to the freelancer earnings CSV")
	question := flag.String("q", "", "ask a single question and exit")
	flag.Parse()

	if err := run(*dataPath, *question); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(dataPath, question string) error {
	if dataPath == "" {
		return fmt.Errorf("a dataset is required: pass -data or set DATASET_PATH")
	}

	aiCfg, err := config.LoadAI()
	if err != nil {
		return err
	}

	classifier, err := ai.NewProvider(aiCfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := dataset.LoadFile(ctx, dataPath)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := answer.NewService(classifier, analysis.NewRegistry(store), cache.Noop{}, aiCfg.ClassifyTimeout)

	if question != "" {
		return askOne(ctx, svc, question)
	}

	fmt.Printf("GigSight — %d records loaded, classifier: %s\n", store.RowCount(), classifier.Name())
	fmt.Println(`Ask about freelancer earnings in plain language ("quit" to exit).`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n? ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if q == "quit" || q == "exit" {
			return nil
		}
		if err := askOne(ctx, svc, q); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}

func askOne(ctx context.Context, svc *answer.Service, question string) error {
	res, err := svc.Answer(ctx, question)
	if err != nil {
		return err
	}
	fmt.Println(res.Answer)
	return nil
}
