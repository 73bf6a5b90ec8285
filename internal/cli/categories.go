package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/config"
)

// NewCategoriesCmd prints the trivia categories, falling back to the offline list.
func NewCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List trivia categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCategories(cmd.Context(), cmd, *configPath)
		},
	}
}

func listCategories(ctx context.Context, cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	source := newTriviaSource(cfg)
	for _, c := range source.FetchCategories(ctx) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", c.ID, c.Name)
	}
	return nil
}
