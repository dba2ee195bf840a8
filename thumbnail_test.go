package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeta = PrintMetadata{
	FilamentLengthMeters: 13,
	FilamentMassGrams:    251,
	FilamentDiameterMm:   1.75,
	FilamentDensity:      1.24,
	LayerHeightMm:        0.2,
	TotalLayers:          120,
}

func TestNormalizeThumbnail(t *testing.T) {
	payload := strings.Repeat("A", 73) + strings.Repeat("B", 73) + "CCCC"
	filtered := []string{"\n", "; old\n", "; old\n", "G28\n"}
	block := ThumbnailBlock{StartIndex: 2, EndIndex: 5, RawPayload: payload, filteredStart: 1, filteredEnd: 3}

	out, n := NormalizeThumbnail(filtered, block, testMeta, "\n")

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{
		"; thumbnail begin 250x250 150 1 3 13 251 0.20 1.75 1.24 120\n",
		strings.Repeat("A", 73) + "\n",
		strings.Repeat("B", 73) + "\n",
		"CCCC\n",
		"; thumbnail end\n",
		"\n",
		"G28\n",
	}, out)
}

func TestNormalizeThumbnailWithoutBlock(t *testing.T) {
	filtered := []string{"; AAAA\n", "G28\n"}

	out, n := NormalizeThumbnail(filtered, ThumbnailBlock{StartIndex: 0, EndIndex: -1}, testMeta, "\n")

	assert.Equal(t, filtered, out)
	assert.Zero(t, n)
}

func TestChunkPayload(t *testing.T) {
	assert.Empty(t, chunkPayload("", payloadLineWidth))
	assert.Equal(t, []string{"ab", "cd"}, chunkPayload("abcd", 2))
	assert.Equal(t, []string{"abc", "d"}, chunkPayload("abcd", 3))
	assert.Len(t, chunkPayload(strings.Repeat("x", 146), payloadLineWidth), 2)
}

func TestNormalizedThumbnailRoundTrip(t *testing.T) {
	var src []string
	src = append(src, "; thumbnail begin 300x300 200\n")
	payload := strings.Repeat("/9j/4AAQSkZJRgABAQ", 11) + "==" // 200 bytes
	for _, chunk := range chunkPayload(payload, 78) {
		src = append(src, "; "+chunk+"\n")
	}
	src = append(src, "; thumbnail end\n", ";\n", "G28\n")

	filtered, block := Strip(src)
	require.True(t, block.Found())
	require.Equal(t, payload, block.RawPayload)
	first, _ := NormalizeThumbnail(filtered, block, testMeta, "\n")

	filtered, block = Strip(first)
	require.True(t, block.Found())
	assert.Equal(t, payload, block.RawPayload)
	second, _ := NormalizeThumbnail(filtered, block, testMeta, "\n")

	assert.Equal(t, first, second)
}
