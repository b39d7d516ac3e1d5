package command

import (
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Test Queue",
	Long:  "The queue command is used to inspect the pending test orders of a facility",
}

func init() {
	rootCmd.AddCommand(queueCmd)
}
