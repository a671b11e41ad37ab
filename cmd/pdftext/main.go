// pdftext is a command-line tool for extracting structured text from PDFs.
//
// The tool splits the selected pages across workers, reconstructs blocks,
// lines and spans with the built-in layout model (or Google Document AI), and
// writes any combination of flat text, structured JSON, hOCR and a copy of
// the PDF with an invisible, searchable text layer.
//
// Configuration:
//
// An optional YAML configuration file overrides the built-in thresholds.
// PDFTEXT_* environment variables override the file:
//
//	worker_page_threshold: 10
//	block_threshold: 0.8
//	row_overlap: 0.5
//	model_path: ""
//	documentai:
//	  project_id: "your-gcp-project-id"
//	  location: "us"
//	  processor_id: "your-processor-id"
//
// Usage:
//
//	pdftext -pdf input.pdf [options]
//
// Required flags:
//
//	-pdf string     Path to the input PDF file
//
// Extraction options:
//
//	-config string  Path to the YAML configuration file
//	-pages string   Zero-based pages to extract, e.g. 0-3,7 (default all)
//	-workers int    Number of parallel workers (default 0, serial)
//	-sort           Reorder blocks into reading order
//	-keep-hyphens   Keep line-end hyphens in flat text
//	-keep-chars     Keep character boxes in JSON output
//	-flatten-forms  Include form field values as page text
//	-model string   Layout model: heuristic or docai (default heuristic)
//
// Output options (at least one required):
//
//	-text string    Path to save flat text
//	-json string    Path to save structured pages as JSON
//	-hocr string    Path to save hOCR output
//	-layer string   Path to save the PDF with a text layer applied
//
// Example:
//
//	pdftext -pdf report.pdf -workers 4 -sort -text report.txt -json report.json
//	GOOGLE_APPLICATION_CREDENTIALS=creds.json pdftext -config config.yml -pdf scan.pdf -model docai -layer scan_text.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hector-sherpas/pdftext/pkg/config"
	"github.com/hector-sherpas/pdftext/pkg/gdocai"
	"github.com/hector-sherpas/pdftext/pkg/hocr"
	"github.com/hector-sherpas/pdftext/pkg/layout"
	"github.com/hector-sherpas/pdftext/pkg/partition"
	"github.com/hector-sherpas/pdftext/pkg/pdftext"
	"github.com/hector-sherpas/pdftext/pkg/textlayer"
)

func main() {
	// Required flags.
	pdfPath := flag.String("pdf", "", "Path to the input PDF file (required)")

	// Extraction flags
	configPath := flag.String("config", "", "Path to the config YAML file")
	pages := flag.String("pages", "", "Zero-based pages to extract, e.g. 0-3,7 (default all)")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 or 1 runs serially)")
	sortBlocks := flag.Bool("sort", false, "Reorder blocks into reading order")
	keepHyphens := flag.Bool("keep-hyphens", false, "Keep line-end hyphens in flat text")
	keepChars := flag.Bool("keep-chars", false, "Keep character boxes in JSON output")
	flattenForms := flag.Bool("flatten-forms", false, "Include form field values as page text")
	modelName := flag.String("model", "heuristic", "Layout model: heuristic or docai")
	debug := flag.Bool("debug", false, "Enable debug logging")

	// Output flags
	textPath := flag.String("text", "", "Path to save flat text")
	jsonPath := flag.String("json", "", "Path to save structured pages as JSON")
	hocrPath := flag.String("hocr", "", "Path to save hOCR output")
	layerPath := flag.String("layer", "", "Path to save the PDF with a text layer applied")

	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Create a map of provided flags to validate
	providedFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		providedFlags[f.Name] = true
	})

	if *pdfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -pdf flag is required")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Validate that provided output flags have values
	hasError := false
	validateFlag := func(name string, value string) {
		if providedFlags[name] && value == "" {
			fmt.Fprintf(os.Stderr, "Error: -%s flag requires a value\n", name)
			hasError = true
		}
	}

	validateFlag("config", *configPath)
	validateFlag("text", *textPath)
	validateFlag("json", *jsonPath)
	validateFlag("hocr", *hocrPath)
	validateFlag("layer", *layerPath)

	if *modelName != "heuristic" && *modelName != "docai" {
		fmt.Fprintf(os.Stderr, "Error: unknown -model %q (want heuristic or docai)\n", *modelName)
		hasError = true
	}

	if hasError {
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if at least one output flag is provided
	hasOutputFlag := providedFlags["text"] || providedFlags["json"] ||
		providedFlags["hocr"] || providedFlags["layer"]

	if !hasOutputFlag {
		fmt.Fprintln(os.Stderr, "Error: At least one output flag must be provided (-text, -json, -hocr, or -layer)")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	var pageRange []int
	if *pages != "" {
		pageRange, err = partition.ParseRange(*pages)
		if err != nil {
			logger.Fatalf("Invalid -pages: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pdfBytes, err := os.ReadFile(*pdfPath)
	if err != nil {
		logger.Fatalf("Failed to read PDF file: %v", err)
	}

	opts := pdftext.Options{
		Sort:         *sortBlocks,
		KeepHyphens:  *keepHyphens,
		KeepChars:    *keepChars,
		FlattenForms: *flattenForms,
		PageRange:    pageRange,
		Workers:      *workers,
		Settings:     settings,
		Logger:       logger,
	}

	if *modelName == "docai" {
		client, err := gdocai.NewClient(ctx, settings.DocumentAI)
		if err != nil {
			logger.Fatalf("Failed to create Document AI client: %v", err)
		}
		defer client.Close()
		opts.Model = gdocai.NewModel(client, gdocai.ProcessorName(settings.DocumentAI), pdfBytes, logger)
	}

	logger.WithFields(logrus.Fields{
		"pdf":     *pdfPath,
		"model":   *modelName,
		"workers": *workers,
	}).Info("Extracting text")

	res, err := pdftext.Extract(ctx, pdfBytes, opts)
	if err != nil {
		logger.Fatalf("Error extracting text: %v", err)
	}

	// Write flat text output if flag is provided.
	if *textPath != "" {
		if err := os.WriteFile(*textPath, []byte(res.FlatText()), 0644); err != nil {
			logger.Fatalf("Failed to write text output: %v", err)
		}
		logger.Info("Document text saved to: ", *textPath)
	}

	if *jsonPath == "" && *hocrPath == "" && *layerPath == "" {
		return
	}
	structured := res.Structured()

	// Write JSON output if flag is provided.
	if *jsonPath != "" {
		data, err := pdftext.ToJSON(structured)
		if err != nil {
			logger.Fatalf("Failed to convert pages to JSON: %v", err)
		}
		if err := os.WriteFile(*jsonPath, data, 0644); err != nil {
			logger.Fatalf("Failed to write JSON output: %v", err)
		}
		logger.Info("Structured JSON saved to: ", *jsonPath)
	}

	// Write hOCR output if flag is provided.
	if *hocrPath != "" {
		html, err := hocr.Generate(hocr.FromPages(structured, hocr.Options{Title: filepath.Base(*pdfPath)}))
		if err != nil {
			logger.Fatalf("Failed to render hOCR: %v", err)
		}
		if err := os.WriteFile(*hocrPath, []byte(html), 0644); err != nil {
			logger.Fatalf("Failed to write hOCR output: %v", err)
		}
		logger.Info("Rendered hOCR output saved to: ", *hocrPath)
	}

	// Generate a PDF with a text layer if flag is provided.
	if *layerPath != "" {
		writeLayer(logger, pdfBytes, structured, *layerPath, *debug)
	}
}

// writeLayer applies the extracted pages as a text layer and saves the PDF
func writeLayer(logger *logrus.Logger, pdfBytes []byte, pages []layout.Page, path string, debug bool) {
	cfg := textlayer.DefaultConfig()
	cfg.Debug = debug
	cfg.Logger = logger

	out, err := textlayer.Apply(pdfBytes, pages, cfg)
	if err != nil {
		logger.Fatalf("Failed to apply text layer: %v", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		logger.Fatalf("Failed to write PDF with text layer: %v", err)
	}
	logger.Info("PDF with text layer saved to: ", path)
}
