package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layerLines(sentinels int) []string {
	lines := []string{"G28\n", "G92 E0\n"}
	for i := 0; i < sentinels; i++ {
		lines = append(lines, layerChangeSentinel+"\n", "G1 Z1\n")
	}
	return append(lines, "M107\n")
}

// directivesAfter collects the three lines following every sentinel.
func directivesAfter(lines []string) [][]string {
	var groups [][]string
	for i, line := range lines {
		if strings.HasPrefix(line, layerChangeSentinel) {
			var g []string
			for _, d := range lines[i+1 : i+4] {
				g = append(g, strings.TrimSuffix(d, "\n"))
			}
			groups = append(groups, g)
		}
	}
	return groups
}

func TestAnnotateLayers(t *testing.T) {
	meta := PrintMetadata{
		FilamentLengthMeters: 8,
		FilamentMassGrams:    12,
		LayerHeightMm:        0.2,
		TotalLayers:          4,
		EstimatedMinutes:     100,
	}
	in := layerLines(5)

	out, stats := AnnotateLayers(in, meta, "\n")

	assert.Equal(t, AnnotationStats{FirstSentinel: 2, Groups: 5, LayersAnnotated: 4}, stats)
	assert.Len(t, out, len(in)+15)
	assert.Equal(t, in[:2], out[:2])
	assert.Equal(t, [][]string{
		{"M117 L1 M8 G12 Z4 Q0.20", "M73 R100", "M73 P0"},
		{"M117 L1 M8 G12", "M73 R100", "M73 P0"},
		{"M117 L2 M6 G9", "M73 R75", "M73 P25"},
		{"M117 L3 M4 G6", "M73 R50", "M73 P50"},
		{"M117 L4 M2 G3", "M73 R25", "M73 P100"},
	}, directivesAfter(out))
	assert.Equal(t, "M107\n", out[len(out)-1])
}

func TestAnnotateLayersWithoutSentinel(t *testing.T) {
	in := []string{"G28\n", ";LAYER_CHANGE\n", "M107\n"}

	out, stats := AnnotateLayers(in, PrintMetadata{TotalLayers: 3}, "\n")

	assert.Equal(t, in, out)
	assert.Equal(t, AnnotationStats{FirstSentinel: -1}, stats)
}

func TestAnnotateLayersZeroDeclaredLayers(t *testing.T) {
	meta := PrintMetadata{FilamentLengthMeters: 5, FilamentMassGrams: 7, EstimatedMinutes: 60}

	out, stats := AnnotateLayers(layerLines(3), meta, "\n")

	assert.Equal(t, 3, stats.Groups)
	assert.Equal(t, [][]string{
		{"M117 L1 M5 G7 Z0 Q0.00", "M73 R60", "M73 P0"},
		// 0 == -1 never holds, so nothing is forced to 100 here
		{"M117 L1 M5 G7", "M73 R60", "M73 P0"},
		{"M117 L2 M0 G0", "M73 R0", "M73 P100"},
	}, directivesAfter(out))
}

func TestAnnotateLayersInsertsThreeLinesPerSentinel(t *testing.T) {
	for _, n := range []int{1, 2, 7, 50} {
		meta := PrintMetadata{TotalLayers: n, FilamentLengthMeters: 3, FilamentMassGrams: 9, EstimatedMinutes: 42}
		in := layerLines(n + 1)

		out, stats := AnnotateLayers(in, meta, "\n")

		require.Equal(t, n+1, stats.Groups)
		require.Equal(t, n, stats.LayersAnnotated)
		require.Len(t, out, len(in)+3*(n+1))
		groups := directivesAfter(out)
		assert.Equal(t, "M73 P100", groups[len(groups)-1][2], "layers=%d", n)
	}
}

func TestAnnotateLayersNewlineHandling(t *testing.T) {
	in := []string{"G28\r\n", layerChangeSentinel}

	out, _ := AnnotateLayers(in, PrintMetadata{TotalLayers: 1}, "\r\n")

	assert.Equal(t, []string{
		"G28\r\n",
		layerChangeSentinel + "\r\n",
		"M117 L1 M0 G0 Z1 Q0.00\r\n",
		"M73 R0\r\n",
		"M73 P0\r\n",
	}, out)
}
