package gdocai

import (
	"context"
	"errors"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/hector-sherpas/pdftext/pkg/config"
)

// Processor sends a process request to Document AI
type Processor interface {
	Process(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.Document, error)
}

// Client is a Processor backed by the Document AI API
type Client struct {
	client *documentai.DocumentProcessorClient
}

// NewClient connects to the regional Document AI endpoint for cfg.
// Credentials are read from GOOGLE_APPLICATION_CREDENTIALS when it is set,
// otherwise application default credentials apply.
func NewClient(ctx context.Context, cfg config.DocumentAI) (*Client, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)

	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	return &Client{client: client}, nil
}

// Process implements Processor
func (c *Client) Process(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.Document, error) {
	resp, err := c.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return resp.GetDocument(), nil
}

// Close closes the connection to the API
func (c *Client) Close() error {
	return c.client.Close()
}

// ProcessorName builds the resource name of the processor in cfg
func ProcessorName(cfg config.DocumentAI) string {
	return fmt.Sprintf(
		"projects/%s/locations/%s/processors/%s",
		cfg.ProjectID, cfg.Location, cfg.ProcessorID,
	)
}

func validate(cfg config.DocumentAI) error {
	var errs []error
	if cfg.ProjectID == "" {
		errs = append(errs, errors.New("documentai.project_id is required"))
	}
	if cfg.Location == "" {
		errs = append(errs, errors.New("documentai.location is required"))
	}
	if cfg.ProcessorID == "" {
		errs = append(errs, errors.New("documentai.processor_id is required"))
	}
	return errors.Join(errs...)
}

// processRequest builds a request for the given 1-based pages of pdf
func processRequest(name string, pdf []byte, pages []int32) *documentaipb.ProcessRequest {
	return &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdf,
				MimeType: "application/pdf",
			},
		},
		ProcessOptions: &documentaipb.ProcessOptions{
			PageRange: &documentaipb.ProcessOptions_IndividualPageSelector_{
				IndividualPageSelector: &documentaipb.ProcessOptions_IndividualPageSelector{
					Pages: pages,
				},
			},
		},
		SkipHumanReview: true,
	}
}
