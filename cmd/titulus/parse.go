package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/titulus/internal/app"
)

var (
	parseTitle string
	parseFile  string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse report titles from the command line",
	Long: `Parses one title (--title) or a file of titles (--file, one per line,
"-" for stdin) and writes the structured results as JSON to stdout.
Per-title failures are reported inside each result; the command only
exits nonzero on configuration or I/O errors.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseTitle, "title", "t", "", "Single title to parse")
	parseCmd.Flags().StringVarP(&parseFile, "file", "f", "", "File with one title per line (\"-\" for stdin)")
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseTitle == "" && parseFile == "" {
		return fmt.Errorf("either --title or --file is required")
	}

	application, err := app.New(cmd.Context(), config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if parseTitle != "" {
		result := application.Pipeline.Parse(cmd.Context(), parseTitle)
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	input := os.Stdin
	if parseFile != "-" {
		f, err := os.Open(parseFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		input = f
	}

	encoder := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		title := strings.TrimSpace(scanner.Text())
		if title == "" {
			continue
		}

		result := application.Pipeline.Parse(cmd.Context(), title)
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	logger.Info().Int("count", count).Msg("Batch parse completed")
	return nil
}
