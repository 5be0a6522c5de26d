package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/physio-intake/internal/ingest"
	"github.com/ziadkadry99/physio-intake/internal/progress"
	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths or globs...]",
	Short: "Load assessment or exercise documents into the knowledge base",
	Long: `Ingests .json, .csv and plain-text files into the knowledge base.
Directories are searched recursively and doublestar globs such as
"guides/**/*.json" are expanded. Re-ingesting identical content is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("type", "", "document type: assessment or exercise (required)")
	ingestCmd.Flags().String("category", "", "category for every file (default <type>_<file name>)")
	ingestCmd.Flags().Bool("replace", false, "remove the category's existing documents first")
	ingestCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	typeFlag, _ := cmd.Flags().GetString("type")
	category, _ := cmd.Flags().GetString("category")
	replace, _ := cmd.Flags().GetBool("replace")

	docType, err := vectordb.ParseDocumentType(typeFlag)
	if err != nil {
		return err
	}

	files, err := ingest.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no ingestable files found in %v", args)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(false)

	knowledge, err := openKnowledge(ctx, cfg, logger)
	if err != nil {
		return err
	}
	ingester := ingest.NewIngester(knowledge, cfg.KnowledgeDir(), ingest.WithLogger(logger))

	replaced := make(map[string]bool)
	reporter := progress.NewReporter("Ingesting")
	reporter.Start(len(files))

	var total, failed int
	for i, path := range files {
		reporter.Update(i+1, path)

		fileCategory := category
		if fileCategory == "" {
			fileCategory = ingest.DefaultFileCategory(docType, path)
		}
		if replace && !replaced[fileCategory] {
			if err := ingester.ReplaceCategory(ctx, string(docType), fileCategory); err != nil {
				reporter.Finish()
				return fmt.Errorf("replacing category %s: %w", fileCategory, err)
			}
			replaced[fileCategory] = true
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping file", "file", path, "error", err)
			failed++
			continue
		}
		res, err := ingester.IngestFile(ctx, path, raw, string(docType), fileCategory)
		if err != nil {
			logger.Warn("skipping file", "file", path, "error", err)
			failed++
			continue
		}
		total += res.Count
	}
	reporter.Finish()

	fmt.Printf("Ingested %d document(s) from %d file(s) into %s (%d total).\n",
		total, len(files)-failed, docType, ingester.Count())
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be ingested", failed)
	}
	return nil
}
