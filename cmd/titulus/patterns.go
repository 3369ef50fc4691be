package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/interfaces"
	"github.com/ternarybob/titulus/internal/models"
	"github.com/ternarybob/titulus/internal/storage/badger"
)

var (
	patternsType  string
	patternsAudit bool
	importPath    string
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Curate the pattern library",
	Long: `Inspects and edits the persistent pattern library. Curation commands
open the store directly, so they work before the library is seeded.`,
}

var patternsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the curated default pattern set into the store",
	RunE:  runPatternsSeed,
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active patterns",
	RunE:  runPatternsList,
}

var patternsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import patterns from a YAML file",
	Long: `Imports pattern records from a YAML document with a top-level "patterns"
list. Records are validated before any write; a record matching an
existing (type, term) pair overwrites it.`,
	RunE: runPatternsImport,
}

func init() {
	patternsListCmd.Flags().StringVar(&patternsType, "type", "", "Filter by pattern type")
	patternsListCmd.Flags().BoolVar(&patternsAudit, "audit", false, "Include counters and archived aliases")
	patternsImportCmd.Flags().StringVarP(&importPath, "file", "f", "", "YAML file to import (required)")
	patternsImportCmd.MarkFlagRequired("file")

	patternsCmd.AddCommand(patternsSeedCmd)
	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsImportCmd)
}

// openStore opens the pattern store without loading the compiled library,
// so curation works on an empty or partially seeded store.
func openStore() (interfaces.StorageManager, error) {
	manager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern store: %w", err)
	}
	return manager, nil
}

func runPatternsSeed(cmd *cobra.Command, args []string) error {
	manager, err := openStore()
	if err != nil {
		return err
	}
	defer manager.Close()

	if err := manager.SeedDefaultPatterns(cmd.Context()); err != nil {
		return fmt.Errorf("failed to seed default patterns: %w", err)
	}

	count, err := manager.PatternStorage().CountPatterns(cmd.Context())
	if err != nil {
		return err
	}

	logger.Info().Int("count", count).Msg("Default patterns seeded")
	fmt.Printf("Seeded pattern library: %d records\n", count)
	return nil
}

func runPatternsList(cmd *cobra.Command, args []string) error {
	manager, err := openStore()
	if err != nil {
		return err
	}
	defer manager.Close()

	store := manager.PatternStorage()

	var records []*models.Pattern
	if patternsType != "" {
		records, err = store.ListByType(cmd.Context(), models.PatternType(patternsType))
	} else {
		records, err = store.ListActive(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to list patterns: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if patternsAudit {
		fmt.Fprintln(w, "TYPE\tTERM\tPRIORITY\tACTIVE\tSUCCESS\tFAILURE\tARCHIVED ALIASES")
		for _, p := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%d\t%d\t%s\n",
				p.Type, p.Term, p.Priority, p.Active,
				p.SuccessCount, p.FailureCount, strings.Join(p.ArchivedAliases, ", "))
		}
	} else {
		fmt.Fprintln(w, "TYPE\tTERM\tPRIORITY\tALIASES")
		for _, p := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				p.Type, p.Term, p.Priority, strings.Join(p.Aliases, ", "))
		}
	}
	w.Flush()

	fmt.Printf("\n%d patterns\n", len(records))
	return nil
}

// importDocument is the on-disk YAML shape for pattern imports.
type importDocument struct {
	Patterns []*models.Pattern `yaml:"patterns"`
}

func runPatternsImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var doc importDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}
	if len(doc.Patterns) == 0 {
		return fmt.Errorf("import file contains no patterns")
	}

	// Validate everything before the first write so a bad record cannot
	// leave the store half-imported.
	now := time.Now().UTC()
	for i, p := range doc.Patterns {
		if p.ID == "" {
			p.ID = common.NewPatternID()
		}
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid pattern at index %d (%s): %w", i, p.Term, err)
		}
	}

	manager, err := openStore()
	if err != nil {
		return err
	}
	defer manager.Close()

	if err := manager.PatternStorage().SavePatterns(cmd.Context(), doc.Patterns); err != nil {
		return fmt.Errorf("failed to save patterns: %w", err)
	}

	logger.Info().Int("count", len(doc.Patterns)).Str("file", importPath).Msg("Patterns imported")
	fmt.Printf("Imported %d patterns from %s\n", len(doc.Patterns), importPath)
	return nil
}
