package admin

import (
	"encoding/json"
	"fmt"

	"github.com/cloo-solutions/intakeiq/internal/classify"
	"github.com/spf13/cobra"
)

func ClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <filename>",
		Short: "Classify a filename against the pattern rules",
		Long:  "Run the filename pattern rules over a name and print the match, without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassify,
	}

	cmd.Flags().StringP("rules", "r", "", "Path to a rules YAML file (defaults to the built-in tables)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	fileName := args[0]
	rulesPath, _ := cmd.Flags().GetString("rules")
	outputFormat, _ := cmd.Flags().GetString("output")

	registry, err := classify.NewDefaultRegistry(rulesPath)
	if err != nil {
		return fmt.Errorf("failed to load classification rules: %w", err)
	}

	match := registry.Match(fileName)
	if match == nil {
		if outputFormat == "json" {
			fmt.Println(`{"matched": false}`)
		} else {
			fmt.Printf("No match for %q\n", fileName)
		}
		return nil
	}

	placement := registry.ResolveFolder(match.FileType, match.Category)

	if outputFormat == "json" {
		data := map[string]interface{}{
			"matched":    true,
			"file_type":  match.FileType,
			"category":   match.Category,
			"confidence": match.Confidence,
			"folder":     placement.Folder,
			"level":      placement.Level,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("File type:  %s\n", match.FileType)
		fmt.Printf("Category:   %s\n", match.Category)
		fmt.Printf("Confidence: %.2f\n", match.Confidence)
		fmt.Printf("Placement:  %s (%s level)\n", placement.Folder, placement.Level)
	}

	return nil
}
