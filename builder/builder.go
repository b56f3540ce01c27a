package builder

import (
	"context"
	"io"

	"github.com/craftml/mlbuilder/wizard"
)

// TrainParams carries the user-tunable knobs for one training run. MLP
// hyperparameters are attached per model only when the identifier belongs
// to the MLP family; other models ignore them.
type TrainParams struct {
	TestSize     float64 `json:"test_size,omitempty"`
	HiddenLayers string  `json:"hidden_layers,omitempty"`
	NumLayers    int     `json:"num_layers,omitempty"`
	Neurons      int     `json:"neurons,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	MaxIter      int     `json:"max_iter,omitempty"`
}

type Service interface {
	CreateWizard(ctx context.Context, w wizard.Wizard) (wizard.Wizard, error)
	GetWizard(ctx context.Context, wizardID string) (wizard.Wizard, error)
	ListWizards(ctx context.Context, offset, limit uint64) (wizard.WizardPage, error)
	DeleteWizard(ctx context.Context, wizardID string) error

	// Retreat moves the wizard back one stage; it is always available
	// except at Upload.
	Retreat(ctx context.Context, wizardID string) (wizard.Wizard, error)

	// UploadDataset runs the upload stage: it opens a trainer session,
	// replaces any previously stored session handle and dataset
	// descriptor wholesale, and advances on success.
	UploadDataset(ctx context.Context, wizardID, filename string, file io.Reader) (wizard.Wizard, error)

	// ConfigurePreprocess runs the preprocess stage. Method and target
	// column are validated locally before any network call.
	ConfigurePreprocess(ctx context.Context, wizardID, method, targetColumn string) (wizard.Wizard, error)

	// SelectModels runs the model-select stage. Purely local: the
	// selection replaces the previous one entirely.
	SelectModels(ctx context.Context, wizardID string, models []string) (wizard.Wizard, error)

	// Train runs the train stage: one sequential trainer call per
	// selected model in selection order. Per-model failures are recorded
	// and do not stop the batch; the stage advances once the loop
	// finishes regardless of how many models failed.
	Train(ctx context.Context, wizardID string, params TrainParams) (wizard.Wizard, error)

	// FetchMatrices fetches confusion matrices for all trained models
	// concurrently, each into its own result slot.
	FetchMatrices(ctx context.Context, wizardID string) (wizard.Wizard, error)

	// FetchMatrix retries the confusion-matrix fetch for a single model
	// without touching sibling slots.
	FetchMatrix(ctx context.Context, wizardID, modelType string) (wizard.Wizard, error)

	// SaveModel persists one trained model server-side under a
	// user-supplied name and returns the reported storage path.
	SaveModel(ctx context.Context, wizardID, modelType, name string) (string, error)
}
