package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mstolarz/vizquery/internal/plot"
)

// sampleQuestions are built-in fallback questions for --random, usable
// against most relational schemas.
var sampleQuestions = []string{
	"How many rows does each table contain?",
	"What are the five most recent records in the largest table?",
	"Which numeric column has the widest range of values?",
	"Show the distribution of records per category in the most categorical-looking table.",
}

var askRandom bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question about the database",
	Long: `Ask generates a SQL query for the question, runs it, and prints the
result. When the result suits a chart, an HTML chart page is written and
its path printed. With --random a built-in sample question is asked.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			if !askRandom {
				return fmt.Errorf("provide a question or pass --random")
			}
			question = sampleQuestions[rand.Intn(len(sampleQuestions))]
			fmt.Printf("Question: %s\n\n", question)
		}

		visualizer, cleanup, err := buildVisualizer(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := visualizer.QuestionToPlot(cmd.Context(), question)
		if err != nil {
			return err
		}

		plot.WriteTable(os.Stdout, result.Dataset)
		if result.Decision == plot.DecisionChart {
			fmt.Printf("\nChart written to %s\n", result.ChartPath)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askRandom, "random", false, "ask a built-in sample question")
	rootCmd.AddCommand(askCmd)
}
