package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
)

// Run executes the detect command.
func (c *DetectCmd) Run(deps *Dependencies) error {
	page, release, err := deps.Pages.OpenPage(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedetect.ErrorMessage(err))
		return err
	}
	defer release()

	result, err := deps.Detector.Detect(deps.Ctx, page, pagedetect.DetectOptions{
		ItemSelector: c.ItemSelector,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedetect.ErrorMessage(err))
		return err
	}

	if c.JSON {
		encoder := json.NewEncoder(deps.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		printResult(deps, result)
	}

	if c.Save {
		strategy := detect.NewStrategy(c.URL, result)
		if err := deps.Strategies.CreateStrategy(deps.Ctx, strategy); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pagedetect.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Saved strategy %s\n", strategy.ID)
	}
	return nil
}

// printResult writes a human-readable summary of a detection result.
func printResult(deps *Dependencies, result *pagedetect.DetectionResult) {
	fmt.Fprintf(deps.Stdout, "Method: %s (source: %s)\n", result.Method, result.Source)

	if p := result.Pagination; p != nil {
		verified := "verified"
		if !p.Verified {
			verified = "unverified"
		}
		fmt.Fprintf(deps.Stdout, "Pagination: %s %q, %d new products (%s)\n",
			p.Type, p.Selector, p.ProductsLoaded, verified)
		if p.Offset != nil {
			fmt.Fprintf(deps.Stdout, "URL pattern: %s\n", p.Offset)
		}
	}
	if s := result.Scroll; s != nil {
		fmt.Fprintf(deps.Stdout, "Scroll: %d new products over %d positions\n",
			s.ProductsLoaded, len(s.ScrollPositions))
	}
	if len(result.Candidates) > 0 {
		fmt.Fprintln(deps.Stdout, "Candidates:")
		for _, candidate := range result.Candidates {
			fmt.Fprintf(deps.Stdout, "  %.2f  %-12s %q", candidate.Confidence, candidate.Type, candidate.Selector)
			if candidate.Text != "" {
				fmt.Fprintf(deps.Stdout, " (%s)", candidate.Text)
			}
			fmt.Fprintln(deps.Stdout)
		}
	}
}
