package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/labnet/testorders/orders/manager"
)

var queueListParams = struct {
	FacilityId string
}{}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List Pending Orders",
	Long:  "The list command is used to retrieve the pending orders of a facility, oldest first",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(listQueue) },
}

func listQueue(mngr manager.Manager) error {
	queue, err := mngr.GetQueue(adminContext(), queueListParams.FacilityId)
	if err != nil {
		return err
	}

	for _, order := range queue {
		name := "(unknown)"
		if order.Patient != nil {
			name = order.Patient.FullName()
		}
		outcome := "-"
		if order.Outcome != nil {
			outcome = string(*order.Outcome)
		}

		fmt.Printf("%s %s [%s] rev %d - %s - %s\n", order.Id.Hex(), name, order.PatientId.Hex(), order.Revision, order.DeviceSpecimenId, outcome)
	}
	fmt.Printf("Found %v pending orders\n", len(queue))

	return nil
}

func init() {
	queueListCmd.Flags().StringVarP(&queueListParams.FacilityId, "facility", "f", "", "The id of the facility")
	_ = queueListCmd.MarkFlagRequired("facility")

	queueCmd.AddCommand(queueListCmd)
}
