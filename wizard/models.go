package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Model identifiers the trainer understands. The catalog is fixed; the
// model-select stage is purely local.
const (
	ModelPerceptron   = "perceptron"
	ModelDecisionTree = "decision_tree"
	ModelMLP          = "mlp"
)

const (
	MethodNormalization = "normalization"
	MethodOneHot        = "onehot"
)

func Catalog() []string {
	return []string{ModelPerceptron, ModelDecisionTree, ModelMLP}
}

func InCatalog(model string) bool {
	switch model {
	case ModelPerceptron, ModelDecisionTree, ModelMLP:
		return true
	default:
		return false
	}
}

// IsMLPFamily reports whether the identifier refers to a multilayer
// perceptron. The trainer accepts several aliases for the same estimator
// and all of them take the same hyperparameters.
func IsMLPFamily(model string) bool {
	switch strings.ToLower(model) {
	case ModelMLP, "multilayer_perceptron", "backpropagation":
		return true
	default:
		return false
	}
}

// NormalizeMethod maps user spellings onto the trainer's wire values.
func NormalizeMethod(method string) string {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "one-hot" || m == "one_hot" {
		return MethodOneHot
	}

	return m
}

var hiddenLayerSep = regexp.MustCompile(`[,;\s]+`)

// HiddenLayers derives the MLP hidden-layer sizes the way the trainer
// does: an explicit spec string wins ("64,32", separators comma, semicolon
// or whitespace), then numLayers x neurons, then the trainer default of a
// single layer of 100.
func HiddenLayers(spec string, numLayers, neurons int) ([]int, error) {
	if s := strings.TrimSpace(spec); s != "" {
		parts := hiddenLayerSep.Split(s, -1)
		layers := make([]int, 0, len(parts))
		for _, p := range parts {
			if p == "" {
				continue
			}
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid hidden layer size %q", p)
			}
			if n <= 0 {
				return nil, fmt.Errorf("hidden layer sizes must be positive, got %d", n)
			}
			layers = append(layers, n)
		}
		if len(layers) == 0 {
			return nil, fmt.Errorf("empty hidden layers spec")
		}

		return layers, nil
	}

	if numLayers > 0 && neurons > 0 {
		layers := make([]int, numLayers)
		for i := range layers {
			layers[i] = neurons
		}

		return layers, nil
	}
	if numLayers < 0 || neurons < 0 {
		return nil, fmt.Errorf("num_layers and neurons must be positive")
	}

	return []int{100}, nil
}
