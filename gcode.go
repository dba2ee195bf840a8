package main

import (
	"fmt"
	"math"
	"strings"
)

// layerChangeSentinel is the comment SuperSlicer writes after every layer
// change when the after-layer-change G-code template is set up for it.
const layerChangeSentinel = ";AFTER_LAYER_CHANGE"

type layerPhase int

const (
	firstLayer layerPhase = iota
	subsequentLayer
)

// LayerProgressState is threaded through the annotation walk, one step per
// layer-change sentinel.
type LayerProgressState struct {
	phase                 layerPhase
	LayersAnnotated       int
	RemainingLengthMeters float64
	RemainingMassGrams    float64
}

// AnnotationStats summarises one annotation walk.
type AnnotationStats struct {
	FirstSentinel   int `yaml:"first_sentinel_line"`
	Groups          int `yaml:"groups_inserted"`
	LayersAnnotated int `yaml:"layers_annotated"`
}

type progressAnnotator struct {
	meta           PrintMetadata
	lengthPerLayer float64
	massPerLayer   float64
}

func newProgressAnnotator(meta PrintMetadata) progressAnnotator {
	div := float64(meta.layerDivisor())
	return progressAnnotator{
		meta:           meta,
		lengthPerLayer: float64(meta.FilamentLengthMeters) / div,
		massPerLayer:   float64(meta.FilamentMassGrams) / div,
	}
}

func (a progressAnnotator) initialState() LayerProgressState {
	return LayerProgressState{
		phase:                 firstLayer,
		RemainingLengthMeters: float64(a.meta.FilamentLengthMeters),
		RemainingMassGrams:    float64(a.meta.FilamentMassGrams),
	}
}

// step returns the directives for one sentinel and the state for the next.
func (a progressAnnotator) step(s LayerProgressState) (LayerProgressState, []string) {
	m := int(math.Ceil(s.RemainingLengthMeters))
	g := int(math.Ceil(s.RemainingMassGrams))

	if s.phase == firstLayer {
		s.phase = subsequentLayer
		return s, []string{
			fmt.Sprintf("M117 L1 M%d G%d Z%d Q%s", m, g, a.meta.TotalLayers, a.meta.LayerHeight()),
			fmt.Sprintf("M73 R%d", a.remainingMinutes(s.LayersAnnotated)),
			fmt.Sprintf("M73 P%d", a.percentDone(s.LayersAnnotated)),
		}
	}

	percent := a.percentDone(s.LayersAnnotated)
	// Compared against the declared count, so a file claiming zero layers
	// never reaches 100 here.
	if s.LayersAnnotated == a.meta.TotalLayers-1 {
		percent = 100
	}
	directives := []string{
		fmt.Sprintf("M117 L%d M%d G%d", s.LayersAnnotated+1, m, g),
		fmt.Sprintf("M73 R%d", a.remainingMinutes(s.LayersAnnotated)),
		fmt.Sprintf("M73 P%d", percent),
	}

	s.RemainingLengthMeters -= a.lengthPerLayer
	s.RemainingMassGrams -= a.massPerLayer
	s.LayersAnnotated++
	return s, directives
}

func (a progressAnnotator) remainingMinutes(done int) int {
	return int(a.meta.EstimatedMinutes * (1 - float64(done)/float64(a.meta.layerDivisor())))
}

func (a progressAnnotator) percentDone(done int) int {
	return int(float64(done) / float64(a.meta.layerDivisor()) * 100)
}

// AnnotateLayers returns a copy of lines with three progress directives
// (M117 status, M73 remaining time, M73 percent) after every layer-change
// sentinel.
func AnnotateLayers(lines []string, meta PrintMetadata, newline string) ([]string, AnnotationStats) {
	stats := AnnotationStats{FirstSentinel: -1}
	for i, line := range lines {
		if strings.HasPrefix(line, layerChangeSentinel) {
			stats.FirstSentinel = i
			break
		}
	}
	if stats.FirstSentinel < 0 {
		return lines, stats
	}

	a := newProgressAnnotator(meta)
	state := a.initialState()
	out := make([]string, 0, len(lines)+3*meta.TotalLayers+3)
	out = append(out, lines[:stats.FirstSentinel]...)

	var directives []string
	for _, line := range lines[stats.FirstSentinel:] {
		if !strings.HasPrefix(line, layerChangeSentinel) {
			out = append(out, line)
			continue
		}
		if !strings.HasSuffix(line, "\n") {
			line += newline
		}
		out = append(out, line)

		state, directives = a.step(state)
		for _, d := range directives {
			out = append(out, d+newline)
		}
		stats.Groups++
	}
	stats.LayersAnnotated = state.LayersAnnotated
	return out, stats
}
