package api

import (
	apiutil "github.com/absmach/supermq/api/http/util"

	"github.com/craftml/mlbuilder/builder"
	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
)

type createWizardReq struct {
	Name string `json:"name"`
}

func (c *createWizardReq) validate() error {
	return nil
}

type entityReq struct {
	id string
}

func (e *entityReq) validate() error {
	if e.id == "" {
		return apiutil.ErrMissingID
	}

	return nil
}

type listEntityReq struct {
	offset, limit uint64
}

func (e *listEntityReq) validate() error {
	return nil
}

type uploadReq struct {
	id       string
	filename string
	file     []byte
}

func (u *uploadReq) validate() error {
	if u.id == "" {
		return apiutil.ErrMissingID
	}
	if len(u.file) == 0 {
		return pkgerrors.ErrMissingDataset
	}

	return nil
}

type preprocessReq struct {
	id           string
	Method       string `json:"method"`
	TargetColumn string `json:"target_column"`
}

func (p *preprocessReq) validate() error {
	if p.id == "" {
		return apiutil.ErrMissingID
	}

	return nil
}

type modelsReq struct {
	id     string
	Models []string `json:"models"`
}

func (m *modelsReq) validate() error {
	if m.id == "" {
		return apiutil.ErrMissingID
	}
	if len(m.Models) == 0 {
		return pkgerrors.ErrEmptySelection
	}

	return nil
}

type trainReq struct {
	id string
	builder.TrainParams
}

func (t *trainReq) validate() error {
	if t.id == "" {
		return apiutil.ErrMissingID
	}

	return nil
}

type modelActionReq struct {
	id    string
	model string
}

func (m *modelActionReq) validate() error {
	if m.id == "" {
		return apiutil.ErrMissingID
	}
	if m.model == "" {
		return pkgerrors.ErrUnknownModel
	}

	return nil
}

type saveModelReq struct {
	id    string
	model string
	Name  string `json:"name"`
}

func (s *saveModelReq) validate() error {
	if s.id == "" {
		return apiutil.ErrMissingID
	}
	if s.model == "" {
		return pkgerrors.ErrUnknownModel
	}
	if s.Name == "" {
		return apiutil.ErrMissingName
	}

	return nil
}
