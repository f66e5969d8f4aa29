package config

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"link-checker/internal/domain"
)

const (
	ExporterTypeCSV        = "csv"
	ExporterTypeJSON       = "json"
	ExporterTypeTable      = "table"
	ExporterTypeUptimeKuma = "uptime-kuma"
)

// ExporterConfig selects an exporter. Type-specific settings stay in Raw and
// are decoded by the exporter itself.
type ExporterConfig struct {
	Type       string   `json:"type" validate:"required,exporterType"`
	IssueTypes []string `json:"issue_types" validate:"dive,issueType"`
	Raw        json.RawMessage
}

func init() {
	if err := validate.RegisterValidation("exporterType", validateExporterType); err != nil {
		panic(fmt.Sprintf("failed to register exporter type validator: %v", err))
	}
	if err := validate.RegisterValidation("issueType", validateIssueType); err != nil {
		panic(fmt.Sprintf("failed to register issue type validator: %v", err))
	}
}

func validateExporterType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case ExporterTypeCSV, ExporterTypeJSON, ExporterTypeTable, ExporterTypeUptimeKuma:
		return true
	default:
		return false
	}
}

func validateIssueType(fl validator.FieldLevel) bool {
	_, err := domain.ParseIssueType(fl.Field().String())
	return err == nil
}

func (e *ExporterConfig) UnmarshalJSON(data []byte) error {
	e.Raw = data

	// Define an alias type to avoid recursion
	type alias ExporterConfig
	temp := struct {
		*alias
	}{
		alias: (*alias)(e),
	}

	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("failed to unmarshal exporter config: %w", err)
	}

	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid exporter config: %w", err)
	}

	return nil
}

// NewExporterConfig builds an exporter entry the same way a config file would.
func NewExporterConfig(typ string, settings map[string]any, issueTypes []string) (ExporterConfig, error) {
	doc := map[string]any{"type": typ}
	for k, v := range settings {
		doc[k] = v
	}
	if len(issueTypes) > 0 {
		doc["issue_types"] = issueTypes
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return ExporterConfig{}, fmt.Errorf("failed to encode exporter config: %w", err)
	}

	var cfg ExporterConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ExporterConfig{}, err
	}
	return cfg, nil
}

// Ensure required interfaces are implemented
var _ json.Unmarshaler = (*ExporterConfig)(nil)
