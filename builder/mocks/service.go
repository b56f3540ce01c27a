package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/craftml/mlbuilder/builder"
	"github.com/craftml/mlbuilder/wizard"
)

// MockService is a mock implementation of the builder.Service interface
type MockService struct {
	mock.Mock
}

// CreateWizard creates a new wizard
func (m *MockService) CreateWizard(ctx context.Context, w wizard.Wizard) (wizard.Wizard, error) {
	args := m.Called(ctx, w)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// GetWizard retrieves a wizard by ID
func (m *MockService) GetWizard(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	args := m.Called(ctx, wizardID)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// ListWizards lists wizards with pagination
func (m *MockService) ListWizards(ctx context.Context, offset, limit uint64) (wizard.WizardPage, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).(wizard.WizardPage), args.Error(1)
}

// DeleteWizard deletes a wizard
func (m *MockService) DeleteWizard(ctx context.Context, wizardID string) error {
	args := m.Called(ctx, wizardID)
	return args.Error(0)
}

// Retreat moves a wizard back one stage
func (m *MockService) Retreat(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	args := m.Called(ctx, wizardID)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// UploadDataset uploads a dataset for a wizard
func (m *MockService) UploadDataset(ctx context.Context, wizardID, filename string, file io.Reader) (wizard.Wizard, error) {
	args := m.Called(ctx, wizardID, filename, file)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// ConfigurePreprocess applies a preprocessing method to a wizard's dataset
func (m *MockService) ConfigurePreprocess(ctx context.Context, wizardID, method, targetColumn string) (wizard.Wizard, error) {
	args := m.Called(ctx, wizardID, method, targetColumn)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// SelectModels records the models to train
func (m *MockService) SelectModels(ctx context.Context, wizardID string, models []string) (wizard.Wizard, error) {
	args := m.Called(ctx, wizardID, models)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// Train trains the selected models
func (m *MockService) Train(ctx context.Context, wizardID string, params builder.TrainParams) (wizard.Wizard, error) {
	args := m.Called(ctx, wizardID, params)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// FetchMatrices fetches confusion matrices for all trained models
func (m *MockService) FetchMatrices(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	args := m.Called(ctx, wizardID)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// FetchMatrix fetches the confusion matrix for one trained model
func (m *MockService) FetchMatrix(ctx context.Context, wizardID, modelType string) (wizard.Wizard, error) {
	args := m.Called(ctx, wizardID, modelType)
	return args.Get(0).(wizard.Wizard), args.Error(1)
}

// SaveModel saves a trained model under a name
func (m *MockService) SaveModel(ctx context.Context, wizardID, modelType, name string) (string, error) {
	args := m.Called(ctx, wizardID, modelType, name)
	return args.String(0), args.Error(1)
}
