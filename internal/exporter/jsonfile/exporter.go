// Package jsonfile writes the whole report, summary included, as indented
// JSON.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"link-checker/internal/domain"
)

var validate = validator.New()

// Config is decoded from the exporter's raw JSON. Path "-" means stdout.
type Config struct {
	Path string `json:"path" validate:"required"`
}

type Exporter struct {
	path string
	out  io.Writer
}

func New(rawConfig json.RawMessage) (domain.Exporter, error) {
	var cfg Config
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("invalid json exporter config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid json exporter config: %w", err)
	}
	if cfg.Path == "-" {
		return NewWithWriter(os.Stdout), nil
	}
	return &Exporter{path: cfg.Path}, nil
}

func NewWithWriter(w io.Writer) domain.Exporter {
	return &Exporter{out: w}
}

func (e *Exporter) Export(report *domain.Report) error {
	if e.out != nil {
		return encode(report, e.out)
	}

	file, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", e.path, err)
	}
	if err := encode(report, file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", e.path, err)
	}
	return file.Close()
}

func encode(report *domain.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
