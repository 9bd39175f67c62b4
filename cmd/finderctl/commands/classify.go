package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/laptopfinder/backend/config"
	"github.com/laptopfinder/backend/internal/infrastructure/classifier"
)

var classifyModel string

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show the query classifier's prediction for a text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyModel, "model", "", "classifier model file (defaults to classifier.model_path)")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, cancel, err := commandContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	path := classifyModel
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.Classifier.ModelPath
	}

	nb, err := classifier.Load(path)
	if err != nil {
		return err
	}
	analysis, err := nb.Analyze(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), analysis)
}
