package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls, err := readURLFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	if len(urls) == 0 {
		fmt.Fprintln(deps.Stdout, "No URLs to process")
		return nil
	}

	progress := func(event detect.ProgressEvent) {
		switch event.Type {
		case detect.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Detecting %d sites\n", event.Total)
		case detect.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s: %s\n", event.Completed, event.Total, event.URL, event.Method)
		case detect.ProgressFailed:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s: failed: %s\n", event.Completed, event.Total, event.URL,
				pagedetect.ErrorMessage(event.Error))
		}
	}

	result, err := deps.Runner.Run(deps.Ctx, urls, pagedetect.DetectOptions{ItemSelector: c.ItemSelector}, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedetect.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Done: %d detected, %d none, %d failed\n",
		result.Detected, result.None, result.Failed)
	return nil
}

// readURLFile reads one URL per line, skipping blanks and # comments.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
