package adapters

import (
	"strings"

	"ozon-extractor/internal/types"
)

// ParseCharacteristics turns the characteristics block text into name/value pairs.
//
// Lines up to and including the marker line (section headers and controls) are
// discarded. The remaining trimmed lines alternate name, value; an empty line in
// value position is an empty value. Blank lines around the pairs are ignored.
// A trailing name without a value is dropped rather than paired with "".
func ParseCharacteristics(text, marker string, logger types.Logger) []types.Characteristic {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	start := -1
	for i, line := range lines {
		if line == marker {
			start = i + 1
			break
		}
	}
	if start < 0 {
		if strings.TrimSpace(text) != "" {
			logger.Warnf("Characteristics marker %q not found, parsing the whole section", marker)
		}
		start = 0
	}
	lines = trimBlankLines(lines[start:])

	if len(lines)%2 != 0 {
		logger.Warnf("Dropping characteristic %q: no value follows it", lines[len(lines)-1])
		lines = lines[:len(lines)-1]
	}

	characteristics := make([]types.Characteristic, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		characteristics = append(characteristics, types.Characteristic{
			Name:  lines[i],
			Value: lines[i+1],
		})
	}

	return characteristics
}

// trimBlankLines drops empty lines at both ends, keeping interior ones
func trimBlankLines(lines []string) []string {
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
