package inventory

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// magnitudePattern captures the first number and an optional scale letter.
// Upper-casing folds both μ (U+03BC) and µ (U+00B5) to Μ (U+039C).
var magnitudePattern = regexp.MustCompile(`(\d+\.?\d*)\s*([KMGUNPRΜμµ]?)`)

// unitScale maps a scale letter to its multiplier. M is mega: component values
// written with M for milli sort as if they were mega.
var unitScale = map[string]float64{
	"":  1,
	"R": 1,
	"K": 1e3,
	"M": 1e6,
	"G": 1e9,
	"U": 1e-6,
	"Μ": 1e-6,
	"μ": 1e-6,
	"µ": 1e-6,
	"N": 1e-9,
	"P": 1e-12,
}

// ParseMagnitude extracts a sortable magnitude from a component value such as
// "4.7K" or "100n". Text without any number yields +Inf so it sorts last.
func ParseMagnitude(text string) float64 {
	normalized := strings.ToUpper(strings.TrimSpace(text))

	match := magnitudePattern.FindStringSubmatch(normalized)
	if match == nil {
		return math.Inf(1)
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return math.Inf(1)
	}

	scale, ok := unitScale[match[2]]
	if !ok {
		scale = 1
	}
	return value * scale
}
