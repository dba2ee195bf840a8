package main

import (
	"strings"
)

// Markers written by SuperSlicer. They are matched verbatim.
const (
	preambleStart    = "; generated by SuperSlicer"
	thumbnailBegin   = "; thumbnail begin"
	thumbnailEnd     = "; thumbnail end"
	commentDelimiter = ";"
	payloadPrefix    = "; "
)

// ThumbnailBlock locates the first embedded preview image of a document.
// StartIndex and EndIndex are source line indices of the begin and end
// markers, -1 when the marker was not seen.
type ThumbnailBlock struct {
	StartIndex int
	EndIndex   int
	RawPayload string

	// interior of the block inside the filtered sequence
	filteredStart int
	filteredEnd   int
}

func (b ThumbnailBlock) Found() bool {
	return b.StartIndex >= 0 && b.EndIndex > b.StartIndex
}

// Strip drops the slicer preamble and consumes the thumbnail marker lines.
// Everything else, the thumbnail interior included, is passed through.
func Strip(lines []string) ([]string, ThumbnailBlock) {
	block := ThumbnailBlock{StartIndex: -1, EndIndex: -1}
	filtered := make([]string, 0, len(lines))
	suppressing := false

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, preambleStart):
			suppressing = true
		case strings.HasPrefix(line, thumbnailBegin):
			if block.StartIndex < 0 {
				block.StartIndex = i
				block.filteredStart = len(filtered)
			}
		case strings.HasPrefix(line, thumbnailEnd):
			block.EndIndex = i
			block.filteredEnd = len(filtered)
		case suppressing && strings.TrimSpace(line) == commentDelimiter:
			suppressing = false
		case !suppressing:
			filtered = append(filtered, line)
		}
	}

	if block.Found() {
		block.RawPayload = joinPayload(lines[block.StartIndex+1 : block.EndIndex])
	}
	return filtered, block
}

// joinPayload concatenates payload lines without their comment prefix and
// terminators. Stray marker lines inside the block are not payload.
func joinPayload(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(line, thumbnailBegin) || strings.HasPrefix(line, thumbnailEnd) {
			continue
		}
		sb.WriteString(strings.TrimPrefix(content(line), payloadPrefix))
	}
	return sb.String()
}
