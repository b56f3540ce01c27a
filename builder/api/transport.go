package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/craftml/mlbuilder/builder"
	"github.com/craftml/mlbuilder/pkg/api"
)

const (
	maxFileSize = 1024 * 1024 * 100
	fileKey     = "file"
)

var datasetExtensions = []string{".csv", ".xls", ".xlsx"}

func MakeHandler(svc builder.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Route("/wizards", func(r chi.Router) {
		r.Post("/", otelhttp.NewHandler(kithttp.NewServer(
			createWizardEndpoint(svc),
			decodeCreateWizardReq,
			api.EncodeResponse,
			opts...,
		), "create-wizard").ServeHTTP)
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			listWizardsEndpoint(svc),
			decodeListEntityReq,
			api.EncodeResponse,
			opts...,
		), "list-wizards").ServeHTTP)
		r.Route("/{wizardID}", func(r chi.Router) {
			r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
				getWizardEndpoint(svc),
				decodeEntityReq,
				api.EncodeResponse,
				opts...,
			), "get-wizard").ServeHTTP)
			r.Delete("/", otelhttp.NewHandler(kithttp.NewServer(
				deleteWizardEndpoint(svc),
				decodeEntityReq,
				api.EncodeResponse,
				opts...,
			), "delete-wizard").ServeHTTP)
			r.Post("/retreat", otelhttp.NewHandler(kithttp.NewServer(
				retreatWizardEndpoint(svc),
				decodeEntityReq,
				api.EncodeResponse,
				opts...,
			), "retreat-wizard").ServeHTTP)
			r.Post("/upload", otelhttp.NewHandler(kithttp.NewServer(
				uploadDatasetEndpoint(svc),
				decodeUploadDatasetReq,
				api.EncodeResponse,
				opts...,
			), "upload-dataset").ServeHTTP)
			r.Post("/preprocess", otelhttp.NewHandler(kithttp.NewServer(
				configurePreprocessEndpoint(svc),
				decodePreprocessReq,
				api.EncodeResponse,
				opts...,
			), "configure-preprocess").ServeHTTP)
			r.Post("/models", otelhttp.NewHandler(kithttp.NewServer(
				selectModelsEndpoint(svc),
				decodeModelsReq,
				api.EncodeResponse,
				opts...,
			), "select-models").ServeHTTP)
			r.Post("/train", otelhttp.NewHandler(kithttp.NewServer(
				trainEndpoint(svc),
				decodeTrainReq,
				api.EncodeResponse,
				opts...,
			), "train-models").ServeHTTP)
			r.Post("/matrices", otelhttp.NewHandler(kithttp.NewServer(
				fetchMatricesEndpoint(svc),
				decodeEntityReq,
				api.EncodeResponse,
				opts...,
			), "fetch-matrices").ServeHTTP)
			r.Route("/models/{modelType}", func(r chi.Router) {
				r.Get("/matrix", otelhttp.NewHandler(kithttp.NewServer(
					fetchMatrixEndpoint(svc),
					decodeModelActionReq,
					api.EncodeResponse,
					opts...,
				), "fetch-matrix").ServeHTTP)
				r.Post("/save", otelhttp.NewHandler(kithttp.NewServer(
					saveModelEndpoint(svc),
					decodeSaveModelReq,
					api.EncodeResponse,
					opts...,
				), "save-model").ServeHTTP)
			})
		})
	})

	mux.Get("/health", supermq.Health("builder", instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeCreateWizardReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req createWizardReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func decodeEntityReq(_ context.Context, r *http.Request) (any, error) {
	return entityReq{
		id: chi.URLParam(r, "wizardID"),
	}, nil
}

func decodeListEntityReq(_ context.Context, r *http.Request) (any, error) {
	o, err := apiutil.ReadNumQuery[uint64](r, api.OffsetKey, api.DefOffset)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	l, err := apiutil.ReadNumQuery[uint64](r, api.LimitKey, api.DefLimit)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	return listEntityReq{
		offset: o,
		limit:  l,
	}, nil
}

func decodeUploadDatasetReq(_ context.Context, r *http.Request) (any, error) {
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}
	file, header, err := r.FormFile(fileKey)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}
	defer file.Close()

	valid := false
	for _, ext := range datasetExtensions {
		if strings.HasSuffix(strings.ToLower(header.Filename), ext) {
			valid = true

			break
		}
	}
	if !valid {
		return nil, errors.Join(apiutil.ErrValidation, errors.New("invalid file extension"))
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return uploadReq{
		id:       chi.URLParam(r, "wizardID"),
		filename: header.Filename,
		file:     data,
	}, nil
}

func decodePreprocessReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req preprocessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}
	req.id = chi.URLParam(r, "wizardID")

	return req, nil
}

func decodeModelsReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req modelsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}
	req.id = chi.URLParam(r, "wizardID")

	return req, nil
}

func decodeTrainReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req trainReq
	if err := json.NewDecoder(r.Body).Decode(&req.TrainParams); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}
	req.id = chi.URLParam(r, "wizardID")

	return req, nil
}

func decodeModelActionReq(_ context.Context, r *http.Request) (any, error) {
	return modelActionReq{
		id:    chi.URLParam(r, "wizardID"),
		model: chi.URLParam(r, "modelType"),
	}, nil
}

func decodeSaveModelReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req saveModelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}
	req.id = chi.URLParam(r, "wizardID")
	req.model = chi.URLParam(r, "modelType")

	return req, nil
}
