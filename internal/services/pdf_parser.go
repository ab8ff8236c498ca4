package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PDFParserService interface {
	ExtractText(filePath string) (string, error)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

// ExtractText concatenates the plain text of every page in order. Any parse
// failure, including a panic inside the PDF reader, and an empty result are
// both reported as ErrExtractionFailed.
func (p *pdfParserService) ExtractText(filePath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ PDF parser panicked on %s: %v", filePath, r)
			text, err = "", fmt.Errorf("%w: %v", ErrExtractionFailed, r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: open PDF: %v", ErrExtractionFailed, err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// a broken page contributes nothing, like an empty one
			continue
		}
		textBuilder.WriteString(pageText)
	}

	text = strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", ErrExtractionFailed
	}

	return text, nil
}
