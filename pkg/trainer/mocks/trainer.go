package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/craftml/mlbuilder/pkg/trainer"
)

// MockService is a mock implementation of the trainer.Service interface.
type MockService struct {
	mock.Mock
}

func (m *MockService) Upload(ctx context.Context, filename string, file io.Reader) (trainer.UploadResponse, error) {
	args := m.Called(ctx, filename, file)
	return args.Get(0).(trainer.UploadResponse), args.Error(1)
}

func (m *MockService) Preprocess(ctx context.Context, req trainer.PreprocessRequest) (trainer.PreprocessResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(trainer.PreprocessResponse), args.Error(1)
}

func (m *MockService) Train(ctx context.Context, req trainer.TrainRequest) (trainer.TrainResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(trainer.TrainResponse), args.Error(1)
}

func (m *MockService) SaveModel(ctx context.Context, req trainer.SaveRequest) (trainer.SaveResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(trainer.SaveResponse), args.Error(1)
}

func (m *MockService) ConfusionMatrix(ctx context.Context, sessionID, modelType, format string) (trainer.MatrixResponse, error) {
	args := m.Called(ctx, sessionID, modelType, format)
	return args.Get(0).(trainer.MatrixResponse), args.Error(1)
}
