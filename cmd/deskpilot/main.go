//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// deskpilot runs one desktop-automation agent loop for a task given on the
// command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deskpilot-ai/deskpilot/config"
	"github.com/deskpilot-ai/deskpilot/desktop"
	"github.com/deskpilot-ai/deskpilot/log"
	openaimodel "github.com/deskpilot-ai/deskpilot/model/openai"
	"github.com/deskpilot-ai/deskpilot/planner"
	"github.com/deskpilot-ai/deskpilot/runner"
	"github.com/deskpilot-ai/deskpilot/tool"
	"github.com/deskpilot-ai/deskpilot/toolkit"
)

var (
	configFlag   string
	modelFlag    string
	baseURLFlag  string
	maxStepsFlag int
	logLevelFlag string
	planFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "deskpilot [task]",
	Short: "deskpilot - metadata-driven desktop automation agent",
	Long: `deskpilot runs an agentic control loop over a registry of desktop
automation tools: the model selects a tool, the loop executes it, interprets
the declared success/failure keys and decides whether to continue.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools",
	RunE:  runTools,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug, info, warn, error or fatal")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "decision-maker model name")
	rootCmd.Flags().StringVar(&baseURLFlag, "base-url", "", "OpenAI-compatible endpoint URL")
	rootCmd.Flags().IntVar(&maxStepsFlag, "max-steps", 0, "loop iteration bound")
	rootCmd.Flags().BoolVar(&planFlag, "plan", false, "synthesize a plan first, then execute it")
	rootCmd.AddCommand(toolsCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if maxStepsFlag > 0 {
		cfg.MaxSteps = maxStepsFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if planFlag {
		cfg.Planning = true
	}
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// buildRegistry wires the catalog over the simulated desktop. Real OS
// collaborators plug in here once an implementation exists.
func buildRegistry() (*tool.Registry, error) {
	sim := desktop.NewSim()
	reg := tool.NewRegistry()
	if err := toolkit.Register(reg, toolkit.Deps{
		Screen:  sim,
		OCR:     sim,
		Matcher: sim,
		Overlay: sim,
		Input:   sim,
		Files:   sim,
	}); err != nil {
		return nil, fmt.Errorf("register toolkit: %w", err)
	}
	return reg, nil
}

func runTask(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildRegistry()
	if err != nil {
		return err
	}

	var modelOpts []openaimodel.Option
	if cfg.APIKey != "" {
		modelOpts = append(modelOpts, openaimodel.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		modelOpts = append(modelOpts, openaimodel.WithBaseURL(cfg.BaseURL))
	}
	selector := openaimodel.New(cfg.Model, modelOpts...)

	loop := runner.New(reg, selector,
		runner.WithMaxSteps(cfg.MaxSteps),
		runner.WithSelectionRetries(cfg.SelectionRetries),
		runner.WithMinStepDelay(cfg.MinStepDelay),
		runner.WithConflicts(toolkit.Conflicts()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := strings.Join(args, " ")
	var outcome *runner.Outcome
	if cfg.Planning {
		outcome, err = loop.RunPlan(ctx, task, planner.New(selector))
	} else {
		outcome, err = loop.Run(ctx, task)
	}
	if outcome != nil {
		printOutcome(outcome)
	}
	return err
}

func printOutcome(outcome *runner.Outcome) {
	fmt.Printf("run %s: %s (%s)\n", outcome.RunID, outcome.Status, outcome.Reason)
	for i, step := range outcome.Steps {
		fmt.Printf("  %d. %s -> %s: %s\n", i+1, step.Tool, step.Classification, step.Summary)
	}
	if len(outcome.Context) > 0 {
		fmt.Printf("  context: %v\n", outcome.Context)
	}
	if len(outcome.ToolCalls) > 0 {
		parts := make([]string, 0, len(outcome.ToolCalls))
		for _, name := range sortedKeys(outcome.ToolCalls) {
			parts = append(parts, fmt.Sprintf("%s=%d", name, outcome.ToolCalls[name]))
		}
		fmt.Printf("  calls: %s\n", strings.Join(parts, " "))
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runTools(_ *cobra.Command, _ []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	reg, err := buildRegistry()
	if err != nil {
		return err
	}
	for _, decl := range reg.All() {
		fmt.Printf("%-22s %-10s %-18s", decl.Name, decl.Category, decl.Behavior)
		if len(decl.Args) > 0 {
			names := make([]string, 0, len(decl.Args))
			for _, arg := range decl.Args {
				names = append(names, arg.Name)
			}
			fmt.Printf(" args: %s", strings.Join(names, ", "))
		}
		fmt.Println()
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
