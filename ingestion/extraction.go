package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/cvrank/ai"
	"github.com/poiesic/cvrank/core"
)

// extractionProcessor fills a document's text and metadata from an ai.CVExtractor.
type extractionProcessor struct {
	extractor ai.CVExtractor
	logger    *slog.Logger
}

var _ processor = (*extractionProcessor)(nil)

func newExtractionProcessor(extractor ai.CVExtractor, logger *slog.Logger) (processor, error) {
	if extractor == nil {
		return nil, fmt.Errorf("cv extractor required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &extractionProcessor{
		extractor: extractor,
		logger:    logger.With("processor", "extraction"),
	}, nil
}

// process replaces doc.RawText with the extracted text, keeping the source
// text when extraction returns nothing. Schema problems are logged only.
func (ep *extractionProcessor) process(ctx context.Context, doc *core.CVDocument) error {
	ext, err := ep.extractor.Extract(ctx, doc.RawText)
	if err != nil {
		ep.logger.Error("error extracting cv", "source", doc.SourceFile, "err", err)
		return fmt.Errorf("%w: extract: %w", core.ErrUpstreamService, err)
	}

	if text := strings.TrimSpace(ext.Text); text != "" {
		doc.RawText = text
	} else {
		ep.logger.Warn("extraction returned no text, keeping source text", "source", doc.SourceFile)
	}
	for _, problem := range ext.SchemaErrors {
		ep.logger.Warn("metadata schema violation", "source", doc.SourceFile, "problem", problem)
	}

	doc.Metadata = ext.Metadata
	doc.CandidateName = ext.Metadata.Name()
	doc.Email = ext.Metadata.Email()
	return nil
}
