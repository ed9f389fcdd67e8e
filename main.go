package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"

	"github.com/bmorecarrie13/shift-scheduling/config"
	"github.com/bmorecarrie13/shift-scheduling/formatter"
	"github.com/bmorecarrie13/shift-scheduling/metrics"
	"github.com/bmorecarrie13/shift-scheduling/models"
	"github.com/bmorecarrie13/shift-scheduling/parser"
	"github.com/bmorecarrie13/shift-scheduling/scheduler"
	"github.com/bmorecarrie13/shift-scheduling/store"
)

func main() {
	// Define flags
	demandPath := flag.String("demand", "", "Demand CSV file (required)")
	staffPath := flag.String("staff", "", "Staff CSV file (required)")
	configPath := flag.String("config", "", "Optional YAML config file")
	outputDir := flag.String("output", "output", "Directory for shift.csv and metrics.json")
	format := flag.String("format", "text", "Console output format: text|json|csv")
	dbPath := flag.String("db", "", "Optional SQLite file to persist run history")
	timeLimit := flag.Duration("time-limit", 0, "Override the configured solver time limit")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	// Parse command-line flags
	flag.Parse()

	// Start metrics server if address provided
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			logrus.Infof("metrics server listening on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logrus.WithError(err).Error("metrics server failed")
			}
		}()
	}

	// Validate required input flags
	if *demandPath == "" || *staffPath == "" {
		fmt.Println("Error: -demand and -staff flags are required")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	validFormats := map[string]bool{"text": true, "json": true, "csv": true}
	if !validFormats[*format] {
		logrus.Fatalf("format must be one of: text, json, csv (got: %s)", *format)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	if *timeLimit > 0 {
		cfg.SolveTimeLimit = *timeLimit
	}

	demand := mustParse(*demandPath, parser.ParseDemand)
	roster := mustParse(*staffPath, parser.ParseStaff)

	planner, err := scheduler.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	result, err := planner.Schedule(context.Background(), demand, roster)
	if err != nil {
		logrus.WithError(err).Fatal("scheduling failed")
	}

	// Console output based on format
	switch *format {
	case "json":
		fmt.Print(formatter.FormatJSON(result))
	case "csv":
		fmt.Print(formatter.FormatCSV(result))
	default: // "text"
		fmt.Print(formatter.FormatText(result))
	}

	solved := result.Status == models.StatusOptimal || result.Status == models.StatusFeasible
	if solved {
		if err := writeOutputs(*outputDir, result); err != nil {
			logrus.WithError(err).Fatal("writing output files")
		}
		if *dbPath != "" {
			persistRun(*dbPath, result)
		}
	} else {
		logrus.WithField("status", result.Status).
			Error("no schedule produced; adjust demand, roster or configuration")
	}

	// Handle metrics pushing or waiting
	if *pushGateway != "" {
		jobName := "shift_scheduler"
		if err := push.New(*pushGateway, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			logrus.WithError(err).Error("pushing to Pushgateway")
		} else {
			logrus.Info("metrics pushed to Pushgateway")
		}
	}

	if *wait && *metricsAddr != "" {
		logrus.Info("process kept alive for metric scraping; press Ctrl+C to exit")
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
	} else if *metricsAddr != "" && *pushGateway == "" {
		// Small delay to allow a final scrape for batch runs without -wait.
		time.Sleep(100 * time.Millisecond)
	}

	if !solved {
		os.Exit(2)
	}
}

func mustParse[T any](path string, parse func(r io.Reader) (T, error)) T {
	file, err := os.Open(path)
	if err != nil {
		logrus.WithError(err).Fatalf("opening %s", path)
	}
	defer file.Close()

	out, err := parse(file)
	if err != nil {
		logrus.WithError(err).Fatalf("parsing %s", path)
	}
	return out
}

func writeOutputs(dir string, result *models.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	csvFile := filepath.Join(dir, "shift.csv")
	if err := os.WriteFile(csvFile, []byte(formatter.FormatCSV(result)), 0o644); err != nil {
		return err
	}
	jsonFile := filepath.Join(dir, "metrics.json")
	if err := os.WriteFile(jsonFile, []byte(formatter.FormatJSON(result)), 0o644); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"schedule": csvFile, "metrics": jsonFile}).Info("outputs written")
	return nil
}

func persistRun(path string, result *models.Result) {
	st, err := store.Open(path)
	if err != nil {
		logrus.WithError(err).Error("opening run history database")
		return
	}
	defer st.Close()

	id, err := st.SaveRun(result)
	if err != nil {
		logrus.WithError(err).Error("persisting run")
		return
	}
	logrus.WithField("run_id", id).Info("run persisted")
}
