// Copyright © 2026 The flextools authors.

// Package hexdump renders a byte slice as a classic hex-plus-ASCII dump,
// shared by the flexdump and flexcat front ends. It is modeled on
// flexdump.c's output shape: 16 bytes per line, an offset prefix, and an
// ASCII gutter with non-printable bytes shown as '.'.
package hexdump

import (
	"fmt"
	"strings"
)

// BytesPerLine is the number of bytes rendered on each dump line.
const BytesPerLine = 16

// Render returns data rendered as hex-plus-ASCII lines, with each offset
// shown relative to baseOffset.
func Render(data []byte, baseOffset int) string {
	var sb strings.Builder
	for i := 0; i < len(data); i += BytesPerLine {
		end := i + BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		line := data[i:end]
		fmt.Fprintf(&sb, "%06X  ", baseOffset+i)
		for j := 0; j < BytesPerLine; j++ {
			if j < len(line) {
				fmt.Fprintf(&sb, "%02X ", line[j])
			} else {
				sb.WriteString("   ")
			}
			if j == 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(" |")
		for _, b := range line {
			if b > 0x1F && b < 0x7F {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}
