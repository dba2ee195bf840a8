package main

import (
	"fmt"
	"strconv"
)

const (
	thumbnailResolution = "250x250"
	payloadLineWidth    = 75 - len(payloadPrefix)
)

// NormalizeThumbnail moves the thumbnail found by Strip to the front of the
// filtered lines as a single block whose header also carries the print
// summary. The old interior lines are dropped. Without a complete block the
// lines are returned unchanged and the chunk count is 0.
func NormalizeThumbnail(filtered []string, block ThumbnailBlock, meta PrintMetadata, newline string) ([]string, int) {
	if !block.Found() {
		return filtered, 0
	}

	chunks := chunkPayload(block.RawPayload, payloadLineWidth)
	out := make([]string, 0, len(filtered)+len(chunks)+2)
	out = append(out, thumbnailHeader(len(block.RawPayload), len(chunks), meta)+newline)
	for _, chunk := range chunks {
		out = append(out, chunk+newline)
	}
	out = append(out, thumbnailEnd+newline)
	out = append(out, filtered[:block.filteredStart]...)
	out = append(out, filtered[block.filteredEnd:]...)
	return out, len(chunks)
}

// thumbnailHeader fields: resolution, payload bytes, image index, payload
// lines, filament m, filament g, layer height, diameter, density, layers.
func thumbnailHeader(payloadLen, numLines int, meta PrintMetadata) string {
	return fmt.Sprintf("%s %s %d 1 %d %d %d %s %s %s %d",
		thumbnailBegin,
		thumbnailResolution,
		payloadLen,
		numLines,
		meta.FilamentLengthMeters,
		meta.FilamentMassGrams,
		meta.LayerHeight(),
		strconv.FormatFloat(meta.FilamentDiameterMm, 'f', -1, 64),
		strconv.FormatFloat(meta.FilamentDensity, 'f', -1, 64),
		meta.TotalLayers,
	)
}

func chunkPayload(payload string, width int) []string {
	chunks := make([]string, 0, (len(payload)+width-1)/width)
	for start := 0; start < len(payload); start += width {
		chunks = append(chunks, payload[start:min(start+width, len(payload))])
	}
	return chunks
}
