// Package extract pulls positioned words out of a schedule PDF using
// pdfium text extraction. It is the only component that touches the PDF
// itself; everything downstream works on the word stream it produces.
package extract

import (
	"math"
	"unicode"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"

	"github.com/coursegrid/coursegrid"
)

// Options controls word segmentation.
type Options struct {
	// XTolerance is the widest horizontal gap, in points, that still
	// joins two characters into one word. The schedule renders some
	// neighbouring cells almost touching ("(Blended)MW"), so this must
	// stay tight.
	XTolerance float64
}

// DefaultOptions returns segmentation options tuned for the schedule
// document.
func DefaultOptions() Options {
	return Options{XTolerance: 1.5}
}

// Words extracts every word of the document at filePath, in page order,
// with rounded pixel coordinates. Top is page-relative; DocTop adds the
// cumulative height of all preceding pages so vertical order is monotone
// across the whole document.
func Words(instance pdfium.Pdfium, filePath string, opts Options) ([]coursegrid.Word, error) {
	doc, err := instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCount, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	var words []coursegrid.Word
	docOffset := 0.0

	for i := 0; i < pageCount.PageCount; i++ {
		pageWords, pageHeight, err := extractPageWords(instance, doc.Document, i, docOffset, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract page %d", i+1)
		}
		words = append(words, pageWords...)
		docOffset += pageHeight
	}

	return words, nil
}

// positionedChar is one character with its page-space box, y already
// converted from PDF bottom-left origin to top-left.
type positionedChar struct {
	r      rune
	x0, x1 float64
	top    float64
}

func extractPageWords(instance pdfium.Pdfium, docRef references.FPDF_DOCUMENT, pageIndex int, docOffset float64, opts Options) ([]coursegrid.Word, float64, error) {
	pageResp, err := instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: docRef,
		Index:    pageIndex,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to load page")
	}
	defer instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})

	heightResp, err := instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{
			ByReference: &pageResp.Page,
		},
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to get page height")
	}
	pageHeight := float64(heightResp.PageHeight)

	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &pageResp.Page,
		},
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to count characters")
	}

	chars := make([]positionedChar, 0, charCount.Count)
	for i := 0; i < charCount.Count; i++ {
		unicodeResp, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		boxResp, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		chars = append(chars, positionedChar{
			r:   rune(unicodeResp.Unicode),
			x0:  boxResp.Left,
			x1:  boxResp.Right,
			top: pageHeight - boxResp.Top,
		})
	}

	return groupCharsIntoWords(chars, pageIndex+1, docOffset, opts), pageHeight, nil
}

// groupCharsIntoWords splits the character run into words on whitespace
// and on horizontal gaps wider than the x tolerance, mirroring how the
// document visually separates cells.
func groupCharsIntoWords(chars []positionedChar, pageNumber int, docOffset float64, opts Options) []coursegrid.Word {
	var words []coursegrid.Word

	var runes []rune
	var x0, prevX1, top float64

	flush := func() {
		if len(runes) == 0 {
			return
		}
		words = append(words, coursegrid.Word{
			Text:       string(runes),
			X0:         int(math.Round(x0)),
			Top:        int(math.Round(top)),
			DocTop:     int(math.Round(docOffset + top)),
			PageNumber: pageNumber,
		})
		runes = nil
	}

	for _, c := range chars {
		if unicode.IsSpace(c.r) || c.r == 0 {
			flush()
			continue
		}

		newLine := len(runes) > 0 && math.Abs(c.top-top) > 3
		wideGap := len(runes) > 0 && (c.x0-prevX1) > opts.XTolerance
		if newLine || wideGap {
			flush()
		}

		if len(runes) == 0 {
			x0 = c.x0
			top = c.top
		}
		runes = append(runes, c.r)
		prevX1 = c.x1
	}
	flush()

	return words
}
