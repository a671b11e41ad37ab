package hocr

import (
	"fmt"

	"github.com/hector-sherpas/pdftext/pkg/geom"
)

// HOCR represents the entire hOCR document structure
type HOCR struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system and friends, keyed by meta name
	Pages    []Page            // Pages in the document
}

// Page is one page of extracted text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID         string      // Unique identifier
	PageNumber int         // Zero-based page index (ppageno)
	Rotation   int         // Page rotation in degrees (textangle)
	BBox       geom.Rect   // Page box
	Areas      []Area      // Content areas
	Paragraphs []Paragraph // Paragraphs directly under page
	Lines      []Line      // Lines directly under page
}

// Class assign 'ocr_page' to 'Page' struct
func (Page) Class() string { return "ocr_page" }

// Title builds the hOCR title attribute of the page
func (p Page) Title() string {
	title := fmt.Sprintf("%s; ppageno %d", p.BBox, p.PageNumber)
	if p.Rotation != 0 {
		title += fmt.Sprintf("; textangle %d", p.Rotation)
	}
	return title
}

// Area is a content area, one per block
// Corresponds to hOCR element with class: 'ocr_carea'
type Area struct {
	ID         string
	BBox       geom.Rect
	Paragraphs []Paragraph
	Lines      []Line // Lines directly under area
}

// Class assign 'ocr_carea' to 'Area' struct
func (Area) Class() string { return "ocr_carea" }

// Paragraph is a run of lines
// Corresponds to hOCR element with class: 'ocr_par'
type Paragraph struct {
	ID    string
	BBox  geom.Rect
	Lines []Line
}

// Class assign 'ocr_par' to 'Paragraph' struct
func (Paragraph) Class() string { return "ocr_par" }

// Line is a line of text
// Corresponds to hOCR element with class: 'ocr_line'
type Line struct {
	ID    string
	BBox  geom.Rect
	Words []Word
}

// Class assign 'ocr_line' to 'Line' struct
func (Line) Class() string { return "ocr_line" }

// Word is a positioned run of text
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID   string
	Text string
	BBox geom.Rect
}

// Class assign 'ocrx_word' to 'Word' struct
func (Word) Class() string { return "ocrx_word" }
