package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for input without a PDF header
var ErrNotPDF = errors.New("not a PDF document")

// MaxTextSize caps the plain text read out of one document
const MaxTextSize = 4 << 20

// Extract returns the plain text of a PDF, trimmed of surrounding whitespace
func Extract(data []byte) (text string, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", ErrNotPDF
	}

	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, io.LimitReader(plain, MaxTextSize)); err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// IsPDF reports whether a declared MIME type is a PDF
func IsPDF(mime string) bool {
	return strings.EqualFold(strings.TrimSpace(strings.Split(mime, ";")[0]), "application/pdf")
}
