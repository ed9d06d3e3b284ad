package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/pagedetect"
)

// Run executes the "strategies list" command.
func (c *StrategiesListCmd) Run(deps *Dependencies) error {
	filter := pagedetect.StrategyFilter{Limit: c.Limit}
	if c.Method != "" {
		method := pagedetect.Method(c.Method)
		filter.Method = &method
	}

	strategies, err := deps.Strategies.FindStrategies(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedetect.ErrorMessage(err))
		return err
	}
	if len(strategies) == 0 {
		fmt.Fprintln(deps.Stdout, "No strategies stored")
		return nil
	}

	for _, s := range strategies {
		fmt.Fprintf(deps.Stdout, "%s  %-15s %-9s %s\n", s.ID, s.Method, s.Source, s.SiteURL)
	}
	return nil
}

// Run executes the "strategies show" command.
func (c *StrategiesShowCmd) Run(deps *Dependencies) error {
	strategy, err := deps.Strategies.FindStrategyBySiteURL(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedetect.ErrorMessage(err))
		return err
	}

	encoder := json.NewEncoder(deps.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(strategy)
}

// Run executes the "strategies delete" command.
func (c *StrategiesDeleteCmd) Run(deps *Dependencies) error {
	if err := deps.Strategies.DeleteStrategy(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedetect.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Deleted strategy %s\n", c.ID)
	return nil
}
