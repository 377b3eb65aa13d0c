// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate decides whether a user-supplied file may be uploaded.
// Only the filename extension is examined; file contents are never read.
package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/pdiddy/cobol-lens/pkg/types"
)

// allowedExtensions is the fixed set of accepted extensions, in display order.
var allowedExtensions = []string{"cob", "txt"}

// Accepts reports whether filename carries an allowed extension. The
// comparison is case-insensitive. A filename without a "." is always
// rejected, even one spelled like an extension ("cob").
func Accepts(filename string) bool {
	if !strings.Contains(filename, ".") {
		return false
	}
	return lo.Contains(allowedExtensions, types.ExtensionOf(filename))
}

// AllowedExtensions returns a copy of the accepted extensions.
func AllowedExtensions() []string {
	return slices.Clone(allowedExtensions)
}

// RejectionNotice is the message shown when a file is refused.
func RejectionNotice() string {
	dotted := lo.Map(allowedExtensions, func(ext string, _ int) string {
		return "." + ext
	})
	return fmt.Sprintf("Only %s files are allowed", strings.Join(dotted, " and "))
}
