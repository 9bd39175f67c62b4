package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryFilters []string

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the catalog with the classifier-driven finder",
	Long: `Search the catalog the way GET /api/v1/laptop-finder does.
Filters are given as repeated --filter key=value flags, for example
--filter brand=Dell --filter price_max=1200.`,
	Args: cobra.ArbitraryArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVarP(&queryFilters, "filter", "f", nil, "filter as key=value (repeatable)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel, err := commandContext(cmd)
	if err != nil {
		return err
	}
	defer cancel()

	filters, issues, err := parseFilterFlags(queryFilters)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Finder.Find(ctx, strings.Join(args, " "), filters)
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	for _, issue := range issues {
		resp.FilterMessages = append(resp.FilterMessages, issue.Message())
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
