package command

import (
	"github.com/spf13/cobra"
)

var reportingCmd = &cobra.Command{
	Use:   "reporting",
	Short: "Result Reporting",
	Long:  "The reporting command is used to manage results that could not be reported",
}

func init() {
	rootCmd.AddCommand(reportingCmd)
}
