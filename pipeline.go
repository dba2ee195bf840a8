package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Result is the outcome of post-processing one document.
type Result struct {
	Document       *Document
	Metadata       PrintMetadata
	Thumbnail      ThumbnailBlock
	ThumbnailLines int
	Annotation     AnnotationStats
}

type Processor struct {
	log *zap.Logger
}

func NewProcessor(log *zap.Logger) *Processor {
	return &Processor{log: log}
}

// Process runs strip, extract, normalize and annotate over doc in memory.
// doc itself is not modified.
func (p *Processor) Process(doc *Document) (*Result, error) {
	filtered, block := Strip(doc.Lines)
	p.log.Debug("stripped preamble",
		zap.Int("lines_in", len(doc.Lines)),
		zap.Int("lines_kept", len(filtered)),
		zap.Int("thumbnail_start", block.StartIndex),
		zap.Int("thumbnail_end", block.EndIndex),
	)

	meta, err := ExtractMetadata(filtered)
	if err != nil {
		return nil, err
	}
	p.log.Debug("extracted metadata", zap.Any("metadata", meta))

	lines, chunks := NormalizeThumbnail(filtered, block, meta, doc.Newline)
	if block.Found() {
		p.log.Info("normalized thumbnail",
			zap.Int("payload_bytes", len(block.RawPayload)),
			zap.Int("payload_lines", chunks),
		)
	} else {
		p.log.Info("no complete thumbnail block, leaving content as is")
	}

	lines, stats := AnnotateLayers(lines, meta, doc.Newline)
	if stats.FirstSentinel < 0 {
		p.log.Warn("no layer change marker found, progress not annotated",
			zap.String("marker", layerChangeSentinel))
	} else {
		p.log.Info("annotated layers",
			zap.Int("groups", stats.Groups),
			zap.Int("layers_annotated", stats.LayersAnnotated),
			zap.Int("total_layers", meta.TotalLayers),
		)
	}

	return &Result{
		Document:       &Document{Lines: lines, Newline: doc.Newline},
		Metadata:       meta,
		Thumbnail:      block,
		ThumbnailLines: chunks,
		Annotation:     stats,
	}, nil
}

// Run loads src, processes it and writes the result to dst. Nothing is
// written unless every stage succeeded.
func (p *Processor) Run(ctx context.Context, src, dst string) (*Result, error) {
	doc, err := LoadDocument(src)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	res, err := p.Process(doc)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", src, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := WriteDocument(dst, res.Document); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return res, nil
}
