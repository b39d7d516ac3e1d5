package command

import (
	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Test Results",
	Long:  "The results command is used to export test results",
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}
