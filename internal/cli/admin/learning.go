package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloo-solutions/intakeiq/internal/repository"
	"github.com/spf13/cobra"
)

func LearningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learning",
		Short: "Inspect the keyword learning history",
		Long:  "List learned keywords and show learning statistics",
	}

	cmd.AddCommand(LearningListCmd())
	cmd.AddCommand(LearningStatsCmd())

	return cmd
}

func LearningListCmd() *cobra.Command {
	var includeDismissed bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List learning events",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runLearningList(outputFormat, includeDismissed)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().BoolVar(&includeDismissed, "include-dismissed", false, "Include dismissed events")

	return cmd
}

func runLearningList(outputFormat string, includeDismissed bool) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	learningRepo := repository.NewLearningRepository(pool)
	events, err := learningRepo.ListEvents(ctx, includeDismissed)
	if err != nil {
		return fmt.Errorf("failed to list learning events: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(events))
		for i, e := range events {
			data[i] = map[string]interface{}{
				"id":               e.ID,
				"keyword":          e.Keyword,
				"target_file_type": e.TargetFileType,
				"correction_count": e.CorrectionCount,
				"state":            e.State,
				"created_at":       e.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(events) == 0 {
			fmt.Println("No learning events found")
			return nil
		}
		fmt.Println("Learning events:")
		for _, e := range events {
			fmt.Printf("  %s: %q -> %s (%s, %d corrections, %s)\n",
				e.ID, e.Keyword, e.TargetFileType, e.State, e.CorrectionCount,
				e.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func LearningStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runLearningStats(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runLearningStats(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	learningRepo := repository.NewLearningRepository(pool)
	stats, err := learningRepo.Stats(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to load learning stats: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"total_learned":            stats.TotalLearned,
			"this_week":                stats.ThisWeek,
			"this_month":               stats.ThisMonth,
			"file_types_with_learning": stats.FileTypesWithLearning,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Total learned:            %d\n", stats.TotalLearned)
		fmt.Printf("This week:                %d\n", stats.ThisWeek)
		fmt.Printf("This month:               %d\n", stats.ThisMonth)
		fmt.Printf("File types with learning: %d\n", stats.FileTypesWithLearning)
	}

	return nil
}
