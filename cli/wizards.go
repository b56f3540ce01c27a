package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/craftml/mlbuilder/pkg/sdk"
)

var (
	defOffset uint64 = 0
	defLimit  uint64 = 10

	testSize     float64
	hiddenLayers string
	numLayers    int
	neurons      int
	learningRate float64
	maxIter      int
)

var bsdk sdk.SDK

func SetBuilderSDK(s sdk.SDK) {
	bsdk = s
}

func NewWizardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wizards [create|view|list|delete|back|upload|preprocess|models|train|matrices|matrix|save]",
		Short: "Wizards manager",
		Long:  `Create and drive model-building wizards through their stages.`,
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create wizard",
		Long:  `Create a new wizard run. A name is generated when none is given.`,
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
	}

	viewCmd := &cobra.Command{
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
	}

	listCmd := &cobra.Command{
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
	}

	deleteCmd := &cobra.Command{
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
	}

	backCmd := &cobra.Command{
		Use:   "back <id>",
		Short: "Move wizard back one stage",
		Long:  `Move wizard back one stage. Collected data is kept so the stage can be redone.`,
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
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <id> <file>",
		Short: "Upload dataset",
		Long: `Upload a dataset file (.csv, .xls or .xlsx) and move the wizard to the
preprocess stage.

Examples:
  mlbuilder-cli wizards upload b1d10738-c5d7-4ff1-8f4d-b9328ce6f040 iris.csv`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			w, err := bsdk.UploadDataset(args[0], args[1], data)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	}

	preprocessCmd := &cobra.Command{
		Use:   "preprocess <id> <method> <target_column>",
		Short: "Configure preprocessing",
		Long: `Apply a preprocessing method (normalization or onehot) against a target
column and move the wizard to the model-select stage.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 3 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			w, err := bsdk.Preprocess(args[0], args[1], args[2])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models <id> <model>...",
		Short: "Select models",
		Long: `Select one or more models to train (perceptron, decision_tree, mlp) and
move the wizard to the train stage.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			w, err := bsdk.SelectModels(args[0], args[1:])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	}

	trainCmd := &cobra.Command{
		Use:   "train <id>",
		Short: "Train selected models",
		Long: `Train every selected model and move the wizard to the results stage.
MLP hyperparameter flags are ignored unless an MLP-family model was selected.

Examples:
  mlbuilder-cli wizards train b1d10738-c5d7-4ff1-8f4d-b9328ce6f040 --test-size=0.3 --hidden-layers=64,32`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			w, err := bsdk.Train(args[0], sdk.TrainParams{
				TestSize:     testSize,
				HiddenLayers: hiddenLayers,
				NumLayers:    numLayers,
				Neurons:      neurons,
				LearningRate: learningRate,
				MaxIter:      maxIter,
			})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	}

	trainCmd.Flags().Float64Var(&testSize, "test-size", 0, "Test split fraction (default 0.2)")
	trainCmd.Flags().StringVar(&hiddenLayers, "hidden-layers", "", "MLP hidden layer sizes, e.g. 64,32")
	trainCmd.Flags().IntVar(&numLayers, "num-layers", 0, "MLP layer count, used with --neurons")
	trainCmd.Flags().IntVar(&neurons, "neurons", 0, "Neurons per MLP layer, used with --num-layers")
	trainCmd.Flags().Float64Var(&learningRate, "learning-rate", 0, "MLP learning rate (default 0.001)")
	trainCmd.Flags().IntVar(&maxIter, "max-iter", 0, "MLP iteration cap (default 300)")

	matricesCmd := &cobra.Command{
		Use:   "matrices <id>",
		Short: "Fetch confusion matrices",
		Long:  `Fetch confusion matrices for every trained model.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			w, err := bsdk.FetchMatrices(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	}

	matrixCmd := &cobra.Command{
		Use:   "matrix <id> <model>",
		Short: "Retry one confusion matrix",
		Long:  `Retry the confusion-matrix fetch for a single trained model.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			w, err := bsdk.FetchMatrix(args[0], args[1])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	}

	saveCmd := &cobra.Command{
		Use:   "save <id> <model> <name>",
		Short: "Save trained model",
		Long:  `Save a trained model server-side under the given name.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 3 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			path, err := bsdk.SaveModel(args[0], args[1], args[2])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logSuccessCmd(*cmd, "Saved to "+path)
		},
	}

	cmd.AddCommand(createCmd)
	cmd.AddCommand(viewCmd)
	cmd.AddCommand(listCmd)
	cmd.AddCommand(deleteCmd)
	cmd.AddCommand(backCmd)
	cmd.AddCommand(uploadCmd)
	cmd.AddCommand(preprocessCmd)
	cmd.AddCommand(modelsCmd)
	cmd.AddCommand(trainCmd)
	cmd.AddCommand(matricesCmd)
	cmd.AddCommand(matrixCmd)
	cmd.AddCommand(saveCmd)

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

	return cmd
}
