package service

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// pdfPlainText extracts the text layer of a PDF without OCR. Scanned
// documents have no text layer and come back empty; callers treat that
// as a failure. The pdf library panics on some malformed files, so the
// panic is converted into an error here.
func pdfPlainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text extraction panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text layer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to buffer pdf text: %w", err)
	}
	return buf.String(), nil
}
