package chat

import (
	"bufio"
	"io"
)

// NewLineScanner frames r into newline-terminated lines. Partial reads are
// buffered until a '\n' arrives, a trailing '\r' is dropped, and a final
// unterminated line before EOF is still returned. A line longer than
// maxLine bytes stops the scanner with bufio.ErrTooLong.
func NewLineScanner(r io.Reader, maxLine int) *bufio.Scanner {
	if maxLine <= 0 {
		maxLine = 4096
	}
	sc := bufio.NewScanner(r)
	initial := 512
	if maxLine < initial {
		initial = maxLine
	}
	// Scanner needs room for the delimiter on top of the payload.
	sc.Buffer(make([]byte, 0, initial), maxLine+1)
	sc.Split(bufio.ScanLines)
	return sc
}

// frame appends the line delimiter.
func frame(line string) []byte {
	b := make([]byte, 0, len(line)+1)
	b = append(b, line...)
	return append(b, '\n')
}
