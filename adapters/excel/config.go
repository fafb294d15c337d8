package excel

import (
	"socialgap/adapters/coercer"
)

// ExcelConfig holds configuration for a file data source
type ExcelConfig struct {
	FilePath       string                 `json:"file_path"`
	Sheet          string                 `json:"sheet"`
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultExcelConfig returns the defaults for file processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Sheet:          "Sheet1",
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
