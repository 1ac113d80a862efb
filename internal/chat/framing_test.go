package chat

import (
	"bufio"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestLineScanner_ReassemblesPartialReads(t *testing.T) {
	sc := NewLineScanner(iotest.OneByteReader(strings.NewReader("alpha\r\nbeta\n\ngam")), 64)

	var got []string
	for sc.Scan() {
		got = append(got, sc.Text())
	}
	require.NoError(t, sc.Err())
	require.Equal(t, []string{"alpha", "beta", "", "gam"}, got)
}

func TestLineScanner_RejectsOversizedLine(t *testing.T) {
	sc := NewLineScanner(strings.NewReader("12345678\n123456789\nnext\n"), 8)

	require.True(t, sc.Scan())
	require.Equal(t, "12345678", sc.Text())
	require.False(t, sc.Scan())
	require.ErrorIs(t, sc.Err(), bufio.ErrTooLong)
}

func TestFrameAppendsDelimiter(t *testing.T) {
	require.Equal(t, []byte("A> hi\n"), frame("A> hi"))
	require.Equal(t, []byte("\n"), frame(""))
}
