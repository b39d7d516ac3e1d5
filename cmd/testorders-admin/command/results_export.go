package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/labnet/testorders/results/service"
)

var resultsExportParams = struct {
	FacilityId string
	Output     string
	From       string
	To         string
}{}

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export Results",
	Long:  "The export command is used to write the current results of a facility to a spreadsheet",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(exportResults) },
}

func exportResults(results service.Service) error {
	query := service.Query{
		FacilityId: resultsExportParams.FacilityId,
	}
	if resultsExportParams.From != "" {
		from, err := time.ParseInLocation(time.DateOnly, resultsExportParams.From, time.UTC)
		if err != nil {
			return err
		}
		query.From = &from
	}
	if resultsExportParams.To != "" {
		to, err := time.ParseInLocation(time.DateOnly, resultsExportParams.To, time.UTC)
		if err != nil {
			return err
		}
		to = to.AddDate(0, 0, 1).Add(-time.Millisecond)
		query.To = &to
	}

	file, err := results.Export(adminContext(), query)
	if err != nil {
		return err
	}
	if err := file.Save(resultsExportParams.Output); err != nil {
		return err
	}

	fmt.Printf("Exported results of facility %s to %s\n", resultsExportParams.FacilityId, resultsExportParams.Output)
	return nil
}

func init() {
	resultsExportCmd.Flags().StringVarP(&resultsExportParams.FacilityId, "facility", "f", "", "The id of the facility")
	resultsExportCmd.Flags().StringVarP(&resultsExportParams.Output, "out", "o", "results.xlsx", "The path of the spreadsheet to write")
	resultsExportCmd.Flags().StringVar(&resultsExportParams.From, "from", "", "Only export results tested on or after this date (YYYY-MM-DD)")
	resultsExportCmd.Flags().StringVar(&resultsExportParams.To, "to", "", "Only export results tested on or before this date (YYYY-MM-DD)")
	_ = resultsExportCmd.MarkFlagRequired("facility")

	resultsCmd.AddCommand(resultsExportCmd)
}
