package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Attentive/internal/models"
	"github.com/soaringjerry/Attentive/internal/services"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <total>",
	Short: "Print the assessment tier for a total score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := strconv.Atoi(args[0])
		if err != nil || total < 0 || total > models.MaxTotalScore {
			return fmt.Errorf("total must be an integer between 0 and %d", models.MaxTotalScore)
		}
		a := services.Classify(total)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", a.Tier, a.Color, a.Recommendation)
		return nil
	},
}
