package mlbuilderd

import (
	"github.com/spf13/cobra"

	"github.com/craftml/mlbuilder/pkg/sdk"
)

var (
	DefTLSVerification        = false
	DefBuilderURL             = "http://localhost:7070"
	defOffset          uint64 = 0
	defLimit           uint64 = 10
)

var bsdk sdk.SDK

func SetSDK(s sdk.SDK) {
	bsdk = s
}

var wizardsCmd = []cobra.Command{
	{
		Use:   "create [name]",
		Short: "Create wizard",
		Long:  `Create wizard.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			w, err := bsdk.CreateWizard(name)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	},
	{
		Use:   "view <id>",
		Short: "View wizard",
		Long:  `View wizard.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			w, err := bsdk.GetWizard(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	},
	{
		Use:   "list",
		Short: "List wizards",
		Long:  `List wizards.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			page, err := bsdk.ListWizards(defOffset, defLimit)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	},
	{
		Use:   "delete <id>",
		Short: "Delete wizard",
		Long:  `Delete wizard.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			if err := bsdk.DeleteWizard(args[0]); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logOKCmd(*cmd)
		},
	},
	{
		Use:   "back <id>",
		Short: "Move wizard back one stage",
		Long:  `Move wizard back one stage.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			w, err := bsdk.Retreat(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	},
}

func NewWizardsCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "wizards [create|view|list|delete|back]",
		Short: "Wizards manager",
		Long:  `Create, view, list, delete wizards and move them back a stage.`,
	}

	for i := range wizardsCmd {
		cmd.AddCommand(&wizardsCmd[i])
	}

	cmd.PersistentFlags().StringVarP(
		&DefBuilderURL,
		"builder-url",
		"b",
		DefBuilderURL,
		"Builder URL",
	)

	cmd.PersistentFlags().Uint64VarP(
		&defOffset,
		"offset",
		"o",
		defOffset,
		"Offset",
	)

	cmd.PersistentFlags().Uint64VarP(
		&defLimit,
		"limit",
		"l",
		defLimit,
		"Limit",
	)

	cmd.PersistentFlags().BoolVarP(
		&DefTLSVerification,
		"tls-verification",
		"v",
		DefTLSVerification,
		"TLS Verification",
	)

	return &cmd
}
