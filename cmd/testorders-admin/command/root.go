package command

import (
	"context"
	"fmt"
	"os"

	"github.com/DataDog/datadog-agent/pkg/util/fxutil"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/labnet/testorders/access"
	"github.com/labnet/testorders/api"
)

const adminSubject = "testorders-admin"

var logLevel string

// Run executes a given function with dependencies supplied by the service DI graph
// `f` must return an error or nothing
// `opts` can be used to supply additional arguments that are not provided by the service
func Run(f interface{}, opts ...fx.Option) error {
	deps := append(opts, api.Dependencies()...)
	return fxutil.OneShot(f, deps...)
}

// adminContext runs operations as a site admin, bypassing facility scoping.
func adminContext() context.Context {
	return access.NewContext(context.Background(), access.Caller{
		SubjectId: adminSubject,
		SiteAdmin: true,
	})
}

var rootCmd = &cobra.Command{
	Use:   "testorders-admin",
	Short: "Helper tool to manage test orders and results",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Overwrite zap's log level
		return os.Setenv("LOG_LEVEL", logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "v", "error", "Log Level")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
