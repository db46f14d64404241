package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var questionCount int

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Suggest example questions for the connected database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		visualizer, cleanup, err := buildVisualizer(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		questions, err := visualizer.RandomQuestions(cmd.Context(), questionCount)
		if err != nil {
			return err
		}
		for i, q := range questions {
			fmt.Printf("%d. %s\n", i+1, q)
		}
		return nil
	},
}

func init() {
	questionsCmd.Flags().IntVar(&questionCount, "count", 5, "how many questions to suggest")
	rootCmd.AddCommand(questionsCmd)
}
