package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labnet/testorders/reporting"
)

var reportingRetryParams = struct {
	Limit int
}{}

var reportingRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Retry Failed Reports",
	Long:  "The retry command is used to resend results whose report failed. Delivered reports are removed from the outbox",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(retryReports) },
}

func retryReports(reporter reporting.Reporter) error {
	delivered, err := reporter.Retry(context.TODO(), reportingRetryParams.Limit)
	if err != nil {
		return err
	}

	fmt.Printf("Delivered %v reports\n", delivered)
	return nil
}

func init() {
	reportingRetryCmd.Flags().IntVarP(&reportingRetryParams.Limit, "limit", "l", 100, "The maximum number of reports to retry")

	reportingCmd.AddCommand(reportingRetryCmd)
}
