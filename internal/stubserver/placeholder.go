// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stubserver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/cobol-lens/pkg/types"
)

// division is one of the standard COBOL program divisions.
type division struct {
	marker string
	title  string
	detail string
}

var divisions = []division{
	{marker: "IDENTIFICATION DIVISION", title: "Identification", detail: "Program Details"},
	{marker: "DATA DIVISION", title: "Data", detail: "Variables & Storage"},
	{marker: "PROCEDURE DIVISION", title: "Procedure", detail: "Main Logic"},
}

var programID = regexp.MustCompile(`(?im)^\s*PROGRAM-ID\.\s*([A-Z0-9-]+)`)

// Placeholder is the default Converter. It recognises the program
// divisions and the PROGRAM-ID, and draws a structural flowchart from
// them. It does no language analysis.
type Placeholder struct{}

// Convert implements Converter.
func (Placeholder) Convert(_ context.Context, source string) (types.ConversionResult, error) {
	upper := strings.ToUpper(source)
	var found []division
	for _, d := range divisions {
		if strings.Contains(upper, d.marker) {
			found = append(found, d)
		}
	}

	name := "UNKNOWN"
	if m := programID.FindStringSubmatch(source); m != nil {
		name = strings.ToUpper(m[1])
	}

	var pseudo strings.Builder
	for i, d := range found {
		fmt.Fprintf(&pseudo, "%d. %s:\n", i+1, strings.ToUpper(d.title))
		if d.title == "Identification" {
			fmt.Fprintf(&pseudo, "   Program: %s\n", name)
		} else {
			fmt.Fprintf(&pseudo, "   %s\n", d.detail)
		}
		pseudo.WriteString("\n")
	}
	if len(found) == 0 {
		pseudo.WriteString("No standard COBOL divisions found.\n")
	}

	explanation := fmt.Sprintf("PROGRAM %s declares %d of the 3 standard divisions. "+
		"This is PLACEHOLDER output from the development backend.", name, len(found))

	return types.ConversionResult{
		Pseudocode:  strings.TrimRight(pseudo.String(), "\n"),
		Explanation: explanation,
		Flowchart:   flowchart(found),
	}, nil
}

// flowchart draws a vertical chain Start -> divisions -> End.
func flowchart(found []division) string {
	const (
		width   = 400
		boxW    = 220
		boxH    = 60
		gap     = 40
		radius  = 30
		centerX = width / 2
	)
	height := 2*(2*radius+gap) + len(found)*(boxH+gap) + gap

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	b.WriteString(`<defs><marker id="arrow" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto">`)
	b.WriteString(`<polygon points="0 0, 10 3.5, 0 7" fill="#333"/></marker></defs>`)

	y := gap + radius
	node := func(label string) {
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="#ffefd5" stroke="#333"/>`, centerX, y, radius)
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" dominant-baseline="middle" font-family="Arial">%s</text>`, centerX, y, label)
	}
	arrow := func(from, to int) {
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#333" marker-end="url(#arrow)"/>`, centerX, from, centerX, to)
	}

	node("Start")
	last := y + radius
	y = last + gap
	for i, d := range found {
		arrow(last, y)
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="10" fill="#f0f5f9" stroke="#333"/>`, centerX-boxW/2, y, boxW, boxH)
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-family="Arial" font-weight="bold">%d. %s</text>`, centerX, y+boxH/2-6, i+1, d.title)
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-family="Arial">%s</text>`, centerX, y+boxH/2+14, strings.ReplaceAll(d.detail, "&", "&amp;"))
		last = y + boxH
		y = last + gap
	}
	y += radius
	arrow(last, y-radius)
	node("End")
	b.WriteString(`</svg>`)
	return b.String()
}
