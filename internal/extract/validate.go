package extract

import (
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/legal-translator/internal/common"
)

const (
	CodeInvalidPDF = "EXTRACTION_INVALID_PDF"
	CodeNoText     = "EXTRACTION_NO_TEXT"
	CodeFailed     = "EXTRACTION_FAILED"
)

// ValidatePDF checks that path is a readable PDF using pdfcpu in relaxed mode.
func ValidatePDF(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return common.NewExtractionError(CodeInvalidPDF, "cannot open source document", err)
	}
	if st.Size() == 0 {
		return common.NewExtractionError(CodeInvalidPDF, "source document is empty", nil)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return common.NewExtractionError(CodeInvalidPDF, "source is not a valid PDF", err)
	}
	return nil
}
