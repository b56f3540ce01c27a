package mlbuilder

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

type Config struct {
	Builder BuilderConfig `toml:"builder"`
	Trainer TrainerConfig `toml:"trainer"`
	Storage StorageConfig `toml:"storage"`
}

type BuilderConfig struct {
	URL             string `toml:"url"`
	TLSVerification bool   `toml:"tls_verification"`
}

type TrainerConfig struct {
	URL             string `toml:"url"`
	TLSVerification bool   `toml:"tls_verification"`
}

type StorageConfig struct {
	Type       string `toml:"type"`
	SQLitePath string `toml:"sqlite_path"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
