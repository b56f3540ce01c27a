package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/craftml/mlbuilder/mlbuilderd"
	"github.com/craftml/mlbuilder/pkg/sdk"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mlbuilderd",
		Short: "ML Builder Daemon",
		Long:  `ML Builder Daemon manages the lifecycle of the wizard builder service.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			sdkConf := sdk.Config{
				BuilderURL:      mlbuilderd.DefBuilderURL,
				TLSVerification: mlbuilderd.DefTLSVerification,
			}
			mlbuilderd.SetSDK(sdk.NewSDK(sdkConf))
		},
	}

	rootCmd.AddCommand(mlbuilderd.NewBuilderCmd())
	rootCmd.AddCommand(mlbuilderd.NewWizardsCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
