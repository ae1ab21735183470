// Package resume turns an uploaded resume file into plain text suitable for
// contact extraction. Only PDF files are accepted.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// MaxFileSize is the largest accepted upload, in bytes.
	MaxFileSize = 20 << 20

	// maxTextLength caps the extracted text passed to the extractor.
	maxTextLength = 40_000

	pdfMagic = "%PDF-"
)

var (
	// ErrTooLarge means the upload exceeds MaxFileSize.
	ErrTooLarge = errors.New("resume file too large")
	// ErrNotPDF means the upload is not a PDF file.
	ErrNotPDF = errors.New("resume must be a PDF file")
	// ErrUnreadable means the PDF could not be parsed or contains no text.
	ErrUnreadable = errors.New("could not read text from resume")
)

// ExtractText reads an uploaded resume and returns its plain text. The reader
// is consumed up to MaxFileSize+1 bytes; anything beyond that is rejected.
func ExtractText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", ErrTooLarge
	}
	if !bytes.HasPrefix(data, []byte(pdfMagic)) {
		return "", ErrNotPDF
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, textReader); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrUnreadable
	}
	if len(text) > maxTextLength {
		text = text[:maxTextLength]
	}
	return text, nil
}
