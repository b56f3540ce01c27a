package api

import (
	"bytes"
	"context"
	"errors"

	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"

	"github.com/craftml/mlbuilder/builder"
	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/wizard"
)

func createWizardEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(createWizardReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.CreateWizard(ctx, wizard.Wizard{Name: req.Name})
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard:  w,
			created: true,
		}, nil
	}
}

func getWizardEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.GetWizard(ctx, req.id)
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard: w,
		}, nil
	}
}

func listWizardsEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listEntityReq)
		if !ok {
			return listWizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listWizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		page, err := svc.ListWizards(ctx, req.offset, req.limit)
		if err != nil {
			return listWizardResponse{}, err
		}

		return listWizardResponse{
			WizardPage: page,
		}, nil
	}
}

func deleteWizardEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		if err := svc.DeleteWizard(ctx, req.id); err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			deleted: true,
		}, nil
	}
}

func retreatWizardEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.Retreat(ctx, req.id)
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard: w,
		}, nil
	}
}

func uploadDatasetEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(uploadReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.UploadDataset(ctx, req.id, req.filename, bytes.NewReader(req.file))
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard: w,
		}, nil
	}
}

func configurePreprocessEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(preprocessReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.ConfigurePreprocess(ctx, req.id, req.Method, req.TargetColumn)
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard: w,
		}, nil
	}
}

func selectModelsEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(modelsReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.SelectModels(ctx, req.id, req.Models)
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard: w,
		}, nil
	}
}

func trainEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(trainReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.Train(ctx, req.id, req.TrainParams)
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard: w,
		}, nil
	}
}

func fetchMatricesEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.FetchMatrices(ctx, req.id)
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard: w,
		}, nil
	}
}

func fetchMatrixEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(modelActionReq)
		if !ok {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return wizardResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.FetchMatrix(ctx, req.id, req.model)
		if err != nil {
			return wizardResponse{}, err
		}

		return wizardResponse{
			Wizard: w,
		}, nil
	}
}

func saveModelEndpoint(svc builder.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(saveModelReq)
		if !ok {
			return saveModelResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return saveModelResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		path, err := svc.SaveModel(ctx, req.id, req.model, req.Name)
		if err != nil {
			return saveModelResponse{}, err
		}

		return saveModelResponse{
			ModelType: req.model,
			Path:      path,
		}, nil
	}
}
