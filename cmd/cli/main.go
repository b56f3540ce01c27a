package main

import (
	"log"

	"github.com/spf13/cobra"

	mlbuilder "github.com/craftml/mlbuilder"
	"github.com/craftml/mlbuilder/cli"
	"github.com/craftml/mlbuilder/mlbuilderd"
	"github.com/craftml/mlbuilder/pkg/sdk"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "mlbuilder-cli",
		Short: "ML Builder CLI",
		Long:  `ML Builder CLI is a command line interface for driving model-building wizards.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			sdkConf := sdk.Config{
				BuilderURL:      mlbuilderd.DefBuilderURL,
				TLSVerification: mlbuilderd.DefTLSVerification,
			}
			if configPath != "" {
				cfg, err := mlbuilder.LoadConfig(configPath)
				if err != nil {
					log.Fatal(err)
				}
				if cfg.Builder.URL != "" {
					sdkConf.BuilderURL = cfg.Builder.URL
				}
				sdkConf.TLSVerification = cfg.Builder.TLSVerification
			}
			cli.SetBuilderSDK(sdk.NewSDK(sdkConf))
		},
	}

	rootCmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"Path to a TOML config file",
	)

	rootCmd.AddCommand(cli.NewWizardsCmd())
	rootCmd.AddCommand(cli.NewRunCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
