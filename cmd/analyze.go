package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/deal-analyzer/internal/model"
	"github.com/sells-group/deal-analyzer/internal/pipeline"
)

var (
	analyzeFile   string
	analyzeDealID string
	analyzeUserID string
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single deal from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(analyzeFile)
		if err != nil {
			return eris.Wrap(err, "read deal file")
		}

		var input model.DealInput
		if err := json.Unmarshal(raw, &input); err != nil {
			return eris.Wrap(err, "parse deal file")
		}

		dealID := analyzeDealID
		if dealID == "" {
			dealID = uuid.New().String()
		}
		userID := analyzeUserID
		if userID == "" {
			userID = "cli"
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, input, dealID, userID)
		if err != nil {
			return eris.Wrap(err, "analyze deal")
		}

		if analyzeJSON {
			out, err := json.MarshalIndent(result.Analysis, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal analysis")
			}
			fmt.Println(string(out))
		} else {
			snap := pipeline.BuildSnapshot(input, dealID, userID)
			fmt.Print(pipeline.FormatReport(snap, result.Analysis))
		}

		// Let background persistence finish before the process exits.
		<-result.Persisted

		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "path to deal JSON file (required)")
	analyzeCmd.Flags().StringVar(&analyzeDealID, "deal-id", "", "deal ID (generated if empty)")
	analyzeCmd.Flags().StringVar(&analyzeUserID, "user-id", "", "user ID (default \"cli\")")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the raw analysis JSON instead of the report")
	_ = analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}
