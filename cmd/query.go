package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/physio-intake/internal/vectordb"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Semantically search the knowledge base",
	Long:  `Searches the knowledge base with a natural language query and prints the closest assessment and exercise entries.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 5, "maximum number of results")
	queryCmd.Flags().String("type", "", "filter by type: assessment or exercise")
	queryCmd.Flags().String("category", "", "filter by category")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	typeFilter, _ := cmd.Flags().GetString("type")
	category, _ := cmd.Flags().GetString("category")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var filter *vectordb.SearchFilter
	if typeFilter != "" {
		docType, err := vectordb.ParseDocumentType(typeFilter)
		if err != nil {
			return err
		}
		filter = &vectordb.SearchFilter{Type: &docType}
	}
	if category != "" {
		if filter == nil {
			filter = &vectordb.SearchFilter{}
		}
		filter.Category = &category
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openKnowledge(ctx, cfg, newLogger(false))
	if err != nil {
		return err
	}
	if store.Count() == 0 {
		fmt.Println("Knowledge base is empty. Run `physio-intake ingest` first.")
		return nil
	}

	results, err := store.Search(ctx, queryText, limit, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		return printQueryResultsJSON(results)
	}
	printQueryResultsTable(results)
	return nil
}

type queryResultJSON struct {
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	Type       string  `json:"type"`
	Category   string  `json:"category"`
	Source     string  `json:"source,omitempty"`
	Content    string  `json:"content"`
}

func printQueryResultsJSON(results []vectordb.SearchResult) error {
	out := make([]queryResultJSON, 0, len(results))
	for i, r := range results {
		md := r.Document.Metadata
		out = append(out, queryResultJSON{
			Rank:       i + 1,
			Similarity: float64(r.Similarity),
			Type:       string(md.Type),
			Category:   md.Category,
			Source:     md.Source,
			Content:    r.Document.Content,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printQueryResultsTable(results []vectordb.SearchResult) {
	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		md := r.Document.Metadata
		fmt.Printf("  %d. [%.1f%%] %s / %s\n", i+1, r.Similarity*100, md.Type, md.Category)
		if md.Source != "" {
			fmt.Printf("     Source: %s\n", md.Source)
		}
		fmt.Printf("     %s\n\n", truncate(r.Document.Content, 160))
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
