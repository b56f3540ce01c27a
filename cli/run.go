package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/craftml/mlbuilder/pkg/sdk"
)

const mlpModel = "mlp"

// NewRunCmd drives a whole wizard interactively: one form per stage, each
// submitted to the builder before the next is shown.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a wizard interactively",
		Long:  `Walk through upload, preprocess, model selection, training and results in one sitting.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			if err := runInteractive(cmd); err != nil {
				logErrorCmd(*cmd, err)
			}
		},
	}
}

func runInteractive(cmd *cobra.Command) error {
	var name string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Wizard name").
			Description("Leave empty to generate one").
			Value(&name),
	)).Run(); err != nil {
		return err
	}

	w, err := bsdk.CreateWizard(name)
	if err != nil {
		return err
	}
	logSuccessCmd(*cmd, "Created wizard "+w.ID)

	if w, err = runUploadStage(w); err != nil {
		return err
	}
	if w, err = runPreprocessStage(w); err != nil {
		return err
	}
	if w, err = runModelsStage(w); err != nil {
		return err
	}
	if w, err = runTrainStage(w); err != nil {
		return err
	}

	return runResultsStage(cmd, w)
}

func runUploadStage(w sdk.Wizard) (sdk.Wizard, error) {
	var path string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Dataset file").
			Description("Path to a .csv, .xls or .xlsx file").
			Value(&path).
			Validate(func(s string) error {
				s = strings.ToLower(strings.TrimSpace(s))
				for _, ext := range []string{".csv", ".xls", ".xlsx"} {
					if strings.HasSuffix(s, ext) {
						return nil
					}
				}

				return errors.New("expected a .csv, .xls or .xlsx file")
			}),
	)).Run(); err != nil {
		return sdk.Wizard{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sdk.Wizard{}, err
	}

	return bsdk.UploadDataset(w.ID, path, data)
}

func runPreprocessStage(w sdk.Wizard) (sdk.Wizard, error) {
	columns := datasetColumns(w)
	if len(columns) == 0 {
		return sdk.Wizard{}, errors.New("the uploaded dataset reported no columns")
	}

	var method, target string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Preprocessing method").
			Options(
				huh.NewOption("Normalization (scale numeric features)", "normalization"),
				huh.NewOption("One-hot encoding (expand categorical features)", "onehot"),
			).
			Value(&method),
		huh.NewSelect[string]().
			Title("Target column").
			Description("The column the models will predict").
			Options(huh.NewOptions(columns...)...).
			Value(&target),
	)).Run(); err != nil {
		return sdk.Wizard{}, err
	}

	return bsdk.Preprocess(w.ID, method, target)
}

func runModelsStage(w sdk.Wizard) (sdk.Wizard, error) {
	var models []string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Models to train").
			Options(
				huh.NewOption("Perceptron", "perceptron"),
				huh.NewOption("Decision tree", "decision_tree"),
				huh.NewOption("Multilayer perceptron", mlpModel),
			).
			Validate(func(selected []string) error {
				if len(selected) == 0 {
					return errors.New("pick at least one model")
				}

				return nil
			}).
			Value(&models),
	)).Run(); err != nil {
		return sdk.Wizard{}, err
	}

	return bsdk.SelectModels(w.ID, models)
}

func runTrainStage(w sdk.Wizard) (sdk.Wizard, error) {
	params := sdk.TrainParams{}

	var testSize string
	fields := []huh.Field{
		huh.NewInput().
			Title("Test split fraction").
			Description("Between 0 and 1, empty for 0.2").
			Value(&testSize).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				var v float64
				if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &v); err != nil {
					return errors.New("not a number")
				}
				if v < 0 || v >= 1 {
					return errors.New("must be in [0, 1)")
				}

				return nil
			}),
	}

	var hidden, lr, iters string
	wantsMLP := false
	for _, m := range w.Models {
		if m == mlpModel {
			wantsMLP = true
		}
	}
	if wantsMLP {
		fields = append(fields,
			huh.NewInput().
				Title("Hidden layers").
				Description("Comma-separated sizes, e.g. 64,32; empty for 100").
				Value(&hidden),
			huh.NewInput().
				Title("Learning rate").
				Description("Empty for 0.001").
				Value(&lr),
			huh.NewInput().
				Title("Max iterations").
				Description("Empty for 300").
				Value(&iters),
		)
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return sdk.Wizard{}, err
	}

	if s := strings.TrimSpace(testSize); s != "" {
		fmt.Sscanf(s, "%g", &params.TestSize)
	}
	params.HiddenLayers = strings.TrimSpace(hidden)
	if s := strings.TrimSpace(lr); s != "" {
		fmt.Sscanf(s, "%g", &params.LearningRate)
	}
	if s := strings.TrimSpace(iters); s != "" {
		fmt.Sscanf(s, "%d", &params.MaxIter)
	}

	return bsdk.Train(w.ID, params)
}

func runResultsStage(cmd *cobra.Command, w sdk.Wizard) error {
	w, err := bsdk.FetchMatrices(w.ID)
	if err != nil {
		return err
	}
	logJSONCmd(*cmd, w)

	trained := make([]string, 0, len(w.Results))
	for m := range w.Results {
		trained = append(trained, m)
	}
	if len(trained) == 0 {
		logSuccessCmd(*cmd, "No model trained successfully; nothing to save")

		return nil
	}

	var save bool
	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Save a trained model?").
			Value(&save),
	)).Run(); err != nil {
		return err
	}
	if !save {
		return nil
	}

	var model, name string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Model to save").
			Options(huh.NewOptions(trained...)...).
			Value(&model),
		huh.NewInput().
			Title("Model name").
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("a name is required")
				}

				return nil
			}).
			Value(&name),
	)).Run(); err != nil {
		return err
	}

	path, err := bsdk.SaveModel(w.ID, model, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	logSuccessCmd(*cmd, "Saved to "+path)

	return nil
}

func datasetColumns(w sdk.Wizard) []string {
	if w.Dataset == nil {
		return nil
	}
	if len(w.Dataset.Columns) > 0 {
		return w.Dataset.Columns
	}
	if len(w.Dataset.Preview) > 0 {
		cols := make([]string, 0, len(w.Dataset.Preview[0]))
		for k := range w.Dataset.Preview[0] {
			cols = append(cols, k)
		}

		return cols
	}

	return nil
}
