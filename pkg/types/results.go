// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionResult is the backend's output for one uploaded COBOL source.
type ConversionResult struct {
	// ID is the server-issued conversion identifier.
	ID string `json:"-" yaml:"id"`

	// Pseudocode is the structured pseudocode rendering of the program.
	Pseudocode string `json:"pseudocode" yaml:"pseudocode"`

	// Explanation is a short plain-English summary of the program.
	Explanation string `json:"explanation" yaml:"explanation"`

	// Flowchart is an SVG document, or an "Error: ..." message when the
	// backend could not render one.
	Flowchart string `json:"flowchart" yaml:"flowchart"`
}
