package pdf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spherical/legal-simplifier/internal/domain"
)

// headerWindow is how far into the file the %PDF- signature may start.
const headerWindow = 1024

var disableConfigDir sync.Once

// Validator provides input validation for uploaded PDF payloads
type Validator struct {
	maxBytes int64
	strict   bool
}

// NewValidator creates a new validator instance. With strict set, payloads are
// also run through pdfcpu's relaxed validation before extraction.
func NewValidator(maxBytes int64, strict bool) *Validator {
	return &Validator{
		maxBytes: maxBytes,
		strict:   strict,
	}
}

// Validate checks that data looks like a readable PDF
func (v *Validator) Validate(data []byte) error {
	if len(data) == 0 {
		return domain.ExtractionError("file is empty", nil)
	}

	if v.maxBytes > 0 && int64(len(data)) > v.maxBytes {
		return domain.ExtractionError(fmt.Sprintf("file is too large (%d bytes, limit %d)", len(data), v.maxBytes), nil)
	}

	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if !bytes.Contains(window, []byte("%PDF-")) {
		return domain.ExtractionError("file is not a PDF (missing %PDF- header)", nil)
	}

	if v.strict {
		return validateStructure(data)
	}
	return nil
}

// validateStructure rejects corrupt and encrypted documents.
func validateStructure(data []byte) error {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return domain.ExtractionError("PDF failed structural validation", err)
	}
	return nil
}
