// textlayer is a command-line tool for making PDFs searchable from hOCR.
//
// The tool draws the words of an hOCR file as an invisible text layer over
// the pages of an existing PDF, at the position of each word. hOCR written by
// pdftext -hocr maps onto the PDF it was extracted from; other hOCR is
// scaled from its page boxes to the PDF pages.
//
// Usage:
//
//	textlayer -hocr document.hocr -pdf document.pdf -output document_text.pdf [options]
//
// Required flags:
//
//	-hocr string      Path to hOCR file
//	-pdf string       Path to the PDF to add the text layer to
//	-output string    Output PDF path
//
// Processing options:
//
//	-start-page int   PDF page number of the first hOCR page (default 1)
//	-layer string     Base name of the text layer (default "Extracted Text")
//	-debug            Enable debug mode (shows the text and word boxes)
//	-force            Force reapply even if a text layer is already detected
//	-overwrite        Overwrite output file if it exists
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/hector-sherpas/pdftext/pkg/textlayer"
)

func main() {
	hocrPath := flag.String("hocr", "", "Path to a multi-page hOCR file")
	pdfPath := flag.String("pdf", "", "Path to an existing PDF to add the text layer to")
	outputPath := flag.String("output", "", "Output PDF path")
	startPage := flag.Int("start-page", 1, "PDF page number of the first hOCR page (1-based index)")
	layerName := flag.String("layer", textlayer.DefaultConfig().LayerName, "Base name of the text layer")
	debug := flag.Bool("debug", false, "Enable debug mode")
	force := flag.Bool("force", false, "Force reapply even if a text layer is already detected")
	overwriteOutput := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *hocrPath == "" || *pdfPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: Must provide -hocr, -pdf and -output paths")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*outputPath); err == nil {
		if !*overwriteOutput {
			logger.Fatalf("Output file %s already exists. Use -overwrite to overwrite.", *outputPath)
		}
		if err := os.Remove(*outputPath); err != nil {
			logger.Fatalf("Failed to remove existing output: %v", err)
		}
	}

	cfg := textlayer.DefaultConfig()
	cfg.Debug = *debug
	cfg.Force = *force
	cfg.StartPage = *startPage
	cfg.LayerName = *layerName
	cfg.Logger = logger

	hocrData, err := os.ReadFile(*hocrPath)
	if err != nil {
		logger.Fatalf("Failed to read hOCR file: %v", err)
	}
	inputData, err := os.ReadFile(*pdfPath)
	if err != nil {
		logger.Fatalf("Failed to read input PDF: %v", err)
	}

	finalPDF, err := textlayer.Apply(inputData, hocrData, cfg)
	if err != nil {
		logger.Fatalf("Error applying text layer: %v", err)
	}

	if err := os.WriteFile(*outputPath, finalPDF, 0666); err != nil {
		logger.Fatalf("Failed to write output PDF: %v", err)
	}
	logger.Info("Searchable PDF created: ", *outputPath)
}
