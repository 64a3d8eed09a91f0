package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/adapters/classifier"
	"github.com/Skufu/lipidcare/internal/adapters/db/memory"
	"github.com/Skufu/lipidcare/internal/adapters/notify"
	"github.com/Skufu/lipidcare/internal/adapters/ocr"
	"github.com/Skufu/lipidcare/internal/application"
)

var cmdExtract = &cli.Command{
	Name:  "extract",
	Usage: "Extract lipid values from recognised report text or a report image",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "file",
			Usage: "text file with one recognised line per line",
		},
		&cli.StringFlag{
			Name:  "image",
			Usage: "report image sent to the OCR engine",
		},
		&cli.StringFlag{
			Name:    "ocr-url",
			Sources: cli.EnvVars("OCR_URL"),
			Usage:   "OCR engine base URL, required with --image",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 30 * time.Second,
			Usage: "OCR request timeout",
		},
	},
	Action: runExtract,
}

var cmdAssess = &cli.Command{
	Name:  "assess",
	Usage: "Run one assessment from a JSON request file and print the result",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Required: true,
			Usage:    "JSON file in the /api/analyze-lipid-profile request shape",
		},
		&cli.StringFlag{
			Name:    "classifier-url",
			Sources: cli.EnvVars("CLASSIFIER_URL"),
			Usage:   "optional statistical classifier base URL",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 30 * time.Second,
			Usage: "classifier request timeout",
		},
	},
	Action: runAssess,
}

func runExtract(ctx context.Context, cmd *cli.Command) error {
	deps := application.Deps{Store: memory.New(), Queue: notify.NewMemoryQueue(), Logger: zap.NewNop()}

	var lines []string
	switch {
	case cmd.String("image") != "":
		if cmd.String("ocr-url") == "" {
			return fmt.Errorf("ocr-url is required with --image (set via --ocr-url or OCR_URL env var)")
		}
		deps.OCR = ocr.NewClient(cmd.String("ocr-url"), cmd.Duration("timeout"), zap.NewNop())
	case cmd.String("file") != "":
		var err error
		if lines, err = readLines(cmd.String("file")); err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of --file or --image is required")
	}

	svc := application.New(deps)
	if deps.OCR != nil {
		path := cmd.String("image")
		image, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		res, err := svc.ExtractReport(ctx, filepath.Base(path), image)
		if err != nil {
			return err
		}
		return writeJSON(cmd, res)
	}
	res, err := svc.ExtractText(lines)
	if err != nil {
		return err
	}
	return writeJSON(cmd, res)
}

func runAssess(ctx context.Context, cmd *cli.Command) error {
	raw, err := os.ReadFile(cmd.String("file"))
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req application.AnalyzeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	in, err := req.Input()
	if err != nil {
		return err
	}

	deps := application.Deps{Store: memory.New(), Queue: notify.NewMemoryQueue(), Logger: zap.NewNop()}
	if url := cmd.String("classifier-url"); url != "" {
		deps.Classifier = classifier.NewClient(url, cmd.Duration("timeout"), zap.NewNop())
	}
	rec, err := application.New(deps).Analyze(ctx, in)
	if err != nil {
		return err
	}
	return writeJSON(cmd, rec)
}

func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func writeJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
