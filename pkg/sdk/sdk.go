package sdk

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const CTJSON string = "application/json"

type PageMetadata struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type SDK interface {
	// CreateWizard creates a new wizard run.
	//
	// example:
	//  w, _ := sdk.CreateWizard("iris-experiment")
	//  fmt.Println(w)
	CreateWizard(name string) (Wizard, error)

	// GetWizard gets a wizard by id.
	//
	// example:
	//  w, _ := sdk.GetWizard("b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	//  fmt.Println(w)
	GetWizard(id string) (Wizard, error)

	// ListWizards lists wizards.
	//
	// example:
	//  page, _ := sdk.ListWizards(0, 10)
	//  fmt.Println(page)
	ListWizards(offset uint64, limit uint64) (WizardPage, error)

	// DeleteWizard deletes a wizard.
	//
	// example:
	//  _ = sdk.DeleteWizard("b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	DeleteWizard(id string) error

	// Retreat moves a wizard back one stage.
	//
	// example:
	//  w, _ := sdk.Retreat("b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	Retreat(id string) (Wizard, error)

	// UploadDataset sends a dataset file and moves the wizard to the
	// preprocess stage.
	//
	// example:
	//  w, _ := sdk.UploadDataset(id, "iris.csv", data)
	UploadDataset(id, filename string, file []byte) (Wizard, error)

	// Preprocess applies a preprocessing method against a target column.
	//
	// example:
	//  w, _ := sdk.Preprocess(id, "normalization", "species")
	Preprocess(id, method, targetColumn string) (Wizard, error)

	// SelectModels records the models to train.
	//
	// example:
	//  w, _ := sdk.SelectModels(id, []string{"perceptron", "mlp"})
	SelectModels(id string, models []string) (Wizard, error)

	// Train trains all selected models.
	//
	// example:
	//  w, _ := sdk.Train(id, sdk.TrainParams{TestSize: 0.2})
	Train(id string, params TrainParams) (Wizard, error)

	// FetchMatrices fetches confusion matrices for all trained models.
	//
	// example:
	//  w, _ := sdk.FetchMatrices(id)
	FetchMatrices(id string) (Wizard, error)

	// FetchMatrix retries the confusion-matrix fetch for one model.
	//
	// example:
	//  w, _ := sdk.FetchMatrix(id, "mlp")
	FetchMatrix(id, modelType string) (Wizard, error)

	// SaveModel saves a trained model server-side under a name.
	//
	// example:
	//  path, _ := sdk.SaveModel(id, "mlp", "my-classifier")
	SaveModel(id, modelType, name string) (string, error)
}

type builderSDK struct {
	builderURL string
	client     *http.Client
}

type Config struct {
	BuilderURL      string
	TLSVerification bool
}

func NewSDK(cfg Config) SDK {
	return &builderSDK{
		builderURL: cfg.BuilderURL,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *builderSDK) processRequest(method, reqURL, contentType string, data []byte, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", contentType)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		var errResp struct {
			Error string `json:"error"`
		}
		if jerr := json.Unmarshal(body, &errResp); jerr == nil && errResp.Error != "" {
			return []byte{}, fmt.Errorf("unexpected response code %d: %s", resp.StatusCode, errResp.Error)
		}

		return []byte{}, fmt.Errorf("unexpected response code: %d", resp.StatusCode)
	}

	return body, nil
}
