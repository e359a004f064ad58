package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	ledongthuc "github.com/ledongthuc/pdf"
)

// ledongthucSource reads pages with github.com/ledongthuc/pdf. Each shown string
// of a page, in row order, is one content item.
type ledongthucSource struct {
	r *ledongthuc.Reader
}

func openLedongthuc(data []byte) (pageSource, error) {
	r, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &ledongthucSource{r: r}, nil
}

func (s *ledongthucSource) NumPage() int {
	return s.r.NumPage()
}

func (s *ledongthucSource) PageText(pageNum int) (string, error) {
	page := s.r.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d has no page object", pageNum)
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var items []string
	for _, row := range rows {
		for _, t := range row.Content {
			items = append(items, t.S)
		}
	}
	return joinItems(items), nil
}

func (s *ledongthucSource) Close() error {
	return nil
}

// fitzSource reads pages with MuPDF through github.com/gen2brain/go-fitz. Each line
// of MuPDF's page text is one content item.
type fitzSource struct {
	doc *fitz.Document
}

func openFitz(data []byte) (pageSource, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &fitzSource{doc: doc}, nil
}

func (s *fitzSource) NumPage() int {
	return s.doc.NumPage()
}

func (s *fitzSource) PageText(pageNum int) (string, error) {
	text, err := s.doc.Text(pageNum - 1)
	if err != nil {
		return "", err
	}
	return joinItems(strings.Split(text, "\n")), nil
}

func (s *fitzSource) Close() error {
	return s.doc.Close()
}
