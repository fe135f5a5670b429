package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := Extract([]byte("plain text FIR copy"))
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = Extract(nil)
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestExtractBrokenPDF(t *testing.T) {
	_, err := Extract([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF"))
	assert.Error(t, err)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("application/pdf"))
	assert.True(t, IsPDF("Application/PDF; charset=binary"))
	assert.False(t, IsPDF("text/plain"))
	assert.False(t, IsPDF(""))
}
