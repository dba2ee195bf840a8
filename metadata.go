package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrMalformedMetadata = errors.New("malformed metadata")

// PrintMetadata holds the print summary SuperSlicer writes as trailing
// `; key = value` comments. Absent keys leave their field at zero.
type PrintMetadata struct {
	FilamentLengthMeters int     `yaml:"filament_length_m"`
	FilamentMassGrams    int     `yaml:"filament_mass_g"`
	FilamentDiameterMm   float64 `yaml:"filament_diameter_mm"`
	FilamentDensity      float64 `yaml:"filament_density_g_cm3"`
	LayerHeightMm        float64 `yaml:"layer_height_mm"`
	TotalLayers          int     `yaml:"total_layers"`
	EstimatedMinutes     float64 `yaml:"estimated_minutes"`
}

// LayerHeight is the layer height as embedded in the thumbnail header and
// the first layer status line.
func (m PrintMetadata) LayerHeight() string {
	return strconv.FormatFloat(m.LayerHeightMm, 'f', 2, 64)
}

// layerDivisor is the layer count used for every division.
func (m PrintMetadata) layerDivisor() int {
	return max(m.TotalLayers, 1)
}

type metadataField struct {
	prefix string
	parse  func(m *PrintMetadata, value string) error
}

var metadataFields = []metadataField{
	{"; filament used [mm] =", func(m *PrintMetadata, v string) error {
		mm, err := parseFloat(v)
		m.FilamentLengthMeters = ceilPositive(roundTo(mm/1000, 2))
		return err
	}},
	{"; filament used [g] =", func(m *PrintMetadata, v string) error {
		g, err := parseFloat(v)
		m.FilamentMassGrams = ceilPositive(roundTo(g, 2))
		return err
	}},
	{"; filament_diameter =", func(m *PrintMetadata, v string) (err error) {
		m.FilamentDiameterMm, err = parseFloat(v)
		return err
	}},
	{"; filament_density =", func(m *PrintMetadata, v string) (err error) {
		m.FilamentDensity, err = parseFloat(v)
		return err
	}},
	{"; layer_height =", func(m *PrintMetadata, v string) error {
		h, err := parseFloat(v)
		m.LayerHeightMm = roundTo(h, 2)
		return err
	}},
	{"; total layers count =", func(m *PrintMetadata, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		m.TotalLayers = max(n, 0)
		return err
	}},
	{"; estimated printing time (normal mode) =", func(m *PrintMetadata, v string) (err error) {
		m.EstimatedMinutes, err = parsePrintTime(v)
		return err
	}},
}

// ExtractMetadata scans lines for the known summary keys. A later occurrence
// of a key overwrites an earlier one.
func ExtractMetadata(lines []string) (PrintMetadata, error) {
	var m PrintMetadata
	for _, line := range lines {
		for _, field := range metadataFields {
			if !strings.HasPrefix(line, field.prefix) {
				continue
			}
			_, value, _ := strings.Cut(content(line), "=")
			if err := field.parse(&m, value); err != nil {
				return PrintMetadata{}, fmt.Errorf("%w: %q: %v", ErrMalformedMetadata, strings.TrimSpace(content(line)), err)
			}
			break
		}
	}
	return m, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", strings.TrimSpace(v))
	}
	return f, nil
}

// parsePrintTime converts a SuperSlicer duration such as "1d 2h 3m 4s" to
// minutes. Any component may be missing.
func parsePrintTime(v string) (float64, error) {
	var days, hours, minutes, seconds int
	for _, part := range strings.Fields(v) {
		if len(part) < 2 {
			return 0, fmt.Errorf("bad duration component %q", part)
		}
		n, err := strconv.Atoi(part[:len(part)-1])
		if err != nil {
			return 0, fmt.Errorf("bad duration component %q: %w", part, err)
		}
		switch part[len(part)-1] {
		case 'd':
			days = n
		case 'h':
			hours = n
		case 'm':
			minutes = n
		case 's':
			seconds = n
		default:
			return 0, fmt.Errorf("unknown duration unit in %q", part)
		}
	}
	return float64(days*24*60+hours*60+minutes) + float64(seconds)/60, nil
}

func roundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

func ceilPositive(x float64) int {
	if x > 0 {
		return int(math.Ceil(x))
	}
	return 0
}
