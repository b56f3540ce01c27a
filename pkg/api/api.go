package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"

	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
)

const (
	OffsetKey = "offset"
	LimitKey  = "limit"
	DefOffset = 0
	DefLimit  = 100

	ContentType = "application/json"

	MaxLimitSize = 100
)

func EncodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	if ar, ok := response.(supermq.Response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

type errorRes struct {
	Err string `json:"error"`
}

func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	switch {
	case errors.Is(err, apiutil.ErrValidation),
		errors.Is(err, pkgerrors.ErrEmptyKey),
		errors.Is(err, pkgerrors.ErrInvalidData),
		errors.Is(err, pkgerrors.ErrMissingDataset),
		errors.Is(err, pkgerrors.ErrMissingMethod),
		errors.Is(err, pkgerrors.ErrMissingTarget),
		errors.Is(err, pkgerrors.ErrUnknownColumn),
		errors.Is(err, pkgerrors.ErrUnknownMethod),
		errors.Is(err, pkgerrors.ErrEmptySelection),
		errors.Is(err, pkgerrors.ErrUnknownModel),
		errors.Is(err, pkgerrors.ErrMissingName),
		errors.Is(err, pkgerrors.ErrInvalidSplit):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, pkgerrors.ErrNotFound),
		errors.Is(err, pkgerrors.ErrNotTrained):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, pkgerrors.ErrEntityExists),
		errors.Is(err, pkgerrors.ErrWrongStage),
		errors.Is(err, pkgerrors.ErrOutOfRange):
		w.WriteHeader(http.StatusConflict)
	case errors.Is(err, pkgerrors.ErrRemote):
		w.WriteHeader(http.StatusBadGateway)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	if err := json.NewEncoder(w).Encode(errorRes{Err: err.Error()}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
