package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/studyhub/backend/internal/infrastructure/config"
	"github.com/studyhub/backend/internal/infrastructure/logger"
	"github.com/studyhub/backend/internal/infrastructure/pyq"
	"go.uber.org/zap"
)

func main() {
	var (
		sourceDir  string
		outputPath string
		baseURL    string
		logLevel   string
	)

	flag.StringVar(&sourceDir, "source", "", "Question-paper directory to scan (default: from config)")
	flag.StringVar(&outputPath, "out", "", "Output path for pyq-data.json (default: from config)")
	flag.StringVar(&baseURL, "base-url", "", "URL prefix for generated file links (default: from config)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logCfg := logger.DefaultConfig()
	logCfg.Level = logLevel
	logCfg.TimeFormat = "2006-01-02 15:04:05"
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if sourceDir == "" {
		sourceDir = cfg.PYQ.SourceDir
	}
	if outputPath == "" {
		outputPath = cfg.PYQ.OutputPath
	}
	if baseURL == "" {
		baseURL = cfg.PYQ.BaseURL
	}
	if sourceDir == "" || outputPath == "" {
		log.Fatal("Source directory and output path are required (flags or config)")
	}

	count, err := pyq.NewGenerator(sourceDir, baseURL).WriteIndex(outputPath)
	if err != nil {
		log.Fatal("Failed to generate question-paper index", zap.Error(err))
	}

	log.Info("Question-paper index generated",
		zap.String("output", outputPath),
		zap.Int("subjects", count))
}
