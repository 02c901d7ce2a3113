// Package security screens files before extraction reads them fully.
// Binary blobs with source extensions would otherwise be scanned line
// by line and pollute the symbol cache with garbage.
package security

import (
	"bytes"
	"errors"
	"fmt"
)

// Well-known signatures of non-source formats. A source extension on
// any of these means the file is mislabeled or disguised.
var binarySignatures = [][]byte{
	{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, // PNG
	{0xFF, 0xD8, 0xFF},                   // JPEG
	{0x47, 0x49, 0x46, 0x38},             // GIF
	{0x25, 0x50, 0x44, 0x46, 0x2D},       // PDF
	{0x50, 0x4B, 0x03, 0x04},             // ZIP
	{0x7F, 0x45, 0x4C, 0x46},             // ELF
	{0x4D, 0x5A},                         // PE executable
	{0xCF, 0xFA, 0xED, 0xFE},             // Mach-O 64-bit
	{0x1F, 0x8B},                         // gzip
}

// ErrBinaryContent is returned when a file's bytes look like binary
// data rather than source text.
var ErrBinaryContent = errors.New("content appears to be binary")

// maxSniffBytes bounds how much of the content the checks inspect.
const maxSniffBytes = 64 * 1024

// CheckSource reports an error when content cannot be source text.
// Only the first 64KB is inspected.
func CheckSource(content []byte) error {
	head := content
	if len(head) > maxSniffBytes {
		head = head[:maxSniffBytes]
	}

	for _, sig := range binarySignatures {
		if bytes.HasPrefix(head, sig) {
			return fmt.Errorf("%w: known binary signature %x", ErrBinaryContent, sig)
		}
	}

	if bytes.IndexByte(head, 0) >= 0 {
		return fmt.Errorf("%w: NUL byte in content", ErrBinaryContent)
	}

	if ratio := nonPrintableRatio(head); ratio > 0.3 {
		return fmt.Errorf("%w: %.0f%% non-printable bytes", ErrBinaryContent, ratio*100)
	}

	return nil
}

// nonPrintableRatio counts control characters other than tab, LF and CR.
// UTF-8 continuation bytes are above 127 and do not count.
func nonPrintableRatio(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable) / float64(len(data))
}
