package nutriplan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutriplan/internal/service"
)

var (
	recipeCategory string
	recipeName     string
	recipeJSON     bool
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Browse recipes from TheMealDB",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes (at most 25), optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()
		meals, err := mealClient().ListMeals(ctx)
		if err != nil {
			return err
		}
		meals = service.FilterMeals(meals, service.MealFilter{Category: recipeCategory, Name: recipeName})
		if recipeJSON {
			return writeJSON(cmd, meals)
		}
		printer(cmd).Meals(meals)
		return nil
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <meal-id>...",
	Short: "Show recipe details",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()
		meals, err := mealClient().LookupMeals(ctx, args)
		if err != nil {
			return err
		}
		if recipeJSON {
			return writeJSON(cmd, meals)
		}
		p := printer(cmd)
		for i, m := range meals {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			p.Meal(m)
		}
		return nil
	},
}

var recipesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Count listed recipes per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()
		meals, err := mealClient().ListMeals(ctx)
		if err != nil {
			return err
		}
		counts := service.MealCategories(meals)
		if recipeJSON {
			return writeJSON(cmd, counts)
		}
		printer(cmd).Categories(counts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recipesCmd)
	recipesCmd.AddCommand(recipesListCmd, recipesShowCmd, recipesCategoriesCmd)
	recipesListCmd.Flags().StringVar(&recipeCategory, "category", "", "Only recipes in this category")
	recipesListCmd.Flags().StringVar(&recipeName, "name", "", "Only recipes whose name contains this text")
	recipesCmd.PersistentFlags().BoolVar(&recipeJSON, "json", false, "Output as JSON")
}
