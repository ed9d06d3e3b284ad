package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
	"github.com/fwojciec/pagedetect/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	DB         *sqlite.DB
	Strategies pagedetect.StrategyService
	Pages      pagedetect.PageOpener
	Detector   pagedetect.Detector
	Runner     *detect.BatchRunner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Detect     DetectCmd     `cmd:"" help:"Detect how a listing page loads more items"`
	Batch      BatchCmd      `cmd:"" help:"Detect pagination for many sites from a URL file"`
	Strategies StrategiesCmd `cmd:"" help:"Manage stored pagination strategies"`
}

// DetectCmd is the "detect" subcommand.
type DetectCmd struct {
	URL          string `arg:"" help:"Listing page URL"`
	ItemSelector string `short:"s" help:"CSS selector for product items (auto-detected if omitted)"`
	NoAI         bool   `help:"Skip the vision-model pass even if GEMINI_API_KEY is set"`
	Save         bool   `help:"Persist the detected strategy"`
	JSON         bool   `short:"j" help:"Print the full result as JSON"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File         string  `arg:"" help:"File with one listing URL per line"`
	ItemSelector string  `short:"s" help:"CSS selector for product items (auto-detected if omitted)"`
	Concurrency  int     `short:"c" default:"3" help:"Concurrent detection limit"`
	RPS          float64 `default:"0.5" help:"Per-domain detections per second"`
	NoAI         bool    `help:"Skip the vision-model pass even if GEMINI_API_KEY is set"`
}

// StrategiesCmd groups the strategy management subcommands.
type StrategiesCmd struct {
	List   StrategiesListCmd   `cmd:"" help:"List stored strategies"`
	Show   StrategiesShowCmd   `cmd:"" help:"Show the strategy stored for a site"`
	Delete StrategiesDeleteCmd `cmd:"" help:"Delete a stored strategy"`
}

// StrategiesListCmd is the "strategies list" subcommand.
type StrategiesListCmd struct {
	Method string `help:"Filter by method (pagination|infinite_scroll|hybrid|none)"`
	Limit  int    `default:"50" help:"Maximum strategies to list"`
}

// StrategiesShowCmd is the "strategies show" subcommand.
type StrategiesShowCmd struct {
	URL string `arg:"" help:"Site URL the strategy was stored for"`
}

// StrategiesDeleteCmd is the "strategies delete" subcommand.
type StrategiesDeleteCmd struct {
	ID string `arg:"" help:"Strategy ID"`
}
