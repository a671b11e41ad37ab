// Package hocr converts extracted pages to and from hOCR, the HTML-based
// format for positioned text.
//
// The hierarchy maps one to one onto assembled pages:
//
// - Page (ocr_page) is a layout.Page
// - Area (ocr_carea) with one Paragraph (ocr_par) is a layout.Block
// - Line (ocr_line) is a layout.Line
// - Word (ocrx_word) is a layout.Span
//
// Boxes are stored in pixel space, the same space layout pages use. hOCR
// titles carry integer coordinates, so a round trip rounds every box.
//
// Main Functions:
//
// - FromPages: builds an HOCR document from assembled pages
// - Generate: renders an HOCR document as hOCR HTML
// - Parse: reads hOCR HTML into an HOCR document
// - (*HOCR).LayoutPages: converts a parsed document back to layout pages
package hocr
