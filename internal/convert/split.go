package convert

import (
	"regexp"
	"strings"

	"github.com/gwicho38/mcli-sub001/internal/models"
)

// Marker is the boundary line written between cells when code is joined back
// into a flat script.
const Marker = "# %%"

// markerLine matches every recognized boundary form: "# %%", "# <cell>" and
// "# CELL", case-insensitive, alone on its line ignoring surrounding
// whitespace.
var markerLine = regexp.MustCompile(`(?i)^\s*#\s*(%%|<cell>|cell)\s*$`)

// IsMarkerLine reports whether line is an explicit cell boundary.
func IsMarkerLine(line string) bool {
	return markerLine.MatchString(line)
}

// Split breaks a flat script into cell blocks. The rules form a strict
// cascade and the first one that fires governs the whole document:
//
//  1. explicit marker lines
//  2. top-level definitions (python only), preamble grouped into the
//     first definition's block
//  3. runs of two or more blank lines
//  4. the whole text as a single block
//
// Blocks are trimmed and end with exactly one newline. A whitespace-only
// script yields no blocks at all.
func Split(code string, lang models.Language) []string {
	if blocks, found := splitOnMarkers(code); found {
		return blocks
	}
	if lang.Normalize() == models.LanguagePython {
		if blocks := splitOnDefinitions(code); len(blocks) > 1 {
			return blocks
		}
	}
	if blocks := splitOnBlankRuns(code); len(blocks) > 1 {
		return blocks
	}
	return canonicalBlocks([]string{code})
}

// splitOnMarkers cuts the script at explicit marker lines. Unlike the other
// rules it keeps interior blank blocks, so back-to-back markers survive a
// round trip; blank blocks at the edges are still dropped.
func splitOnMarkers(code string) ([]string, bool) {
	lines := strings.Split(code, "\n")
	var segments []string
	var current []string
	found := false
	for _, line := range lines {
		if IsMarkerLine(line) {
			found = true
			segments = append(segments, strings.Join(current, "\n"))
			current = nil
			continue
		}
		current = append(current, line)
	}
	if !found {
		return nil, false
	}
	segments = append(segments, strings.Join(current, "\n"))

	blocks := make([]string, 0, len(segments))
	for _, seg := range segments {
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			blocks = append(blocks, trimmed+"\n")
		} else {
			blocks = append(blocks, "")
		}
	}
	for len(blocks) > 0 && blocks[0] == "" {
		blocks = blocks[1:]
	}
	for len(blocks) > 0 && blocks[len(blocks)-1] == "" {
		blocks = blocks[:len(blocks)-1]
	}
	return blocks, true
}

// splitOnDefinitions cuts before each top-level def/class except the first,
// so imports and other preamble stay with the first definition. Returns nil
// when the script has fewer than two top-level definitions.
func splitOnDefinitions(code string) []string {
	lines := strings.SplitAfter(code, "\n")
	starts := definitionStarts(lines)
	if len(starts) < 2 {
		return nil
	}
	var raw []string
	prev := 0
	for _, s := range starts[1:] {
		raw = append(raw, strings.Join(lines[prev:s], ""))
		prev = s
	}
	raw = append(raw, strings.Join(lines[prev:], ""))
	return canonicalBlocks(raw)
}

// definitionStarts returns the line index where each top-level definition
// begins, backing up over any column-0 decorator run attached to it.
func definitionStarts(lines []string) []int {
	var starts []int
	for i := range lines {
		if !isDefinitionLine(lines[i]) {
			continue
		}
		start := i
		for start > 0 && strings.HasPrefix(lines[start-1], "@") {
			start--
		}
		starts = append(starts, start)
	}
	return starts
}

func isDefinitionLine(line string) bool {
	return strings.HasPrefix(line, "def ") ||
		strings.HasPrefix(line, "async def ") ||
		strings.HasPrefix(line, "class ")
}

// splitOnBlankRuns cuts at runs of two or more blank lines. Single blank
// lines stay inside their block.
func splitOnBlankRuns(code string) []string {
	lines := strings.Split(code, "\n")
	var raw []string
	var current []string
	for i := 0; i < len(lines); i++ {
		if isBlank(lines[i]) && i+1 < len(lines) && isBlank(lines[i+1]) {
			raw = append(raw, strings.Join(current, "\n"))
			current = nil
			for i+1 < len(lines) && isBlank(lines[i+1]) {
				i++
			}
			continue
		}
		current = append(current, lines[i])
	}
	raw = append(raw, strings.Join(current, "\n"))
	return canonicalBlocks(raw)
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// canonicalBlocks trims each block, drops the empty ones and normalizes the
// rest to end with a single newline.
func canonicalBlocks(raw []string) []string {
	var blocks []string
	for _, b := range raw {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			blocks = append(blocks, trimmed+"\n")
		}
	}
	return blocks
}
