package ui

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/config"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/session"
)

func feed(t *testing.T, input string) *bytes.Buffer {
	t.Helper()
	prevIn, prevOut := in, out
	buf := &bytes.Buffer{}
	in = bufio.NewReader(strings.NewReader(input))
	out = buf
	inputClosed = false
	t.Cleanup(func() { in, out, inputClosed = prevIn, prevOut, false })
	return buf
}

func TestReadInt(t *testing.T) {
	feed(t, "3\nx\n9\n")
	v, err := ReadInt("n: ", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = ReadInt("n: ", 1, 5)
	assert.Error(t, err)
	_, err = ReadInt("n: ", 1, 5)
	assert.Error(t, err)
}

func TestReadDefaults(t *testing.T) {
	feed(t, "\n48 hours\n\n4\n")
	assert.Equal(t, "24 hours", ReadDefault("offset", "24 hours"))
	assert.Equal(t, "48 hours", ReadDefault("offset", "24 hours"))

	v, err := ReadIntDefault("images", 6, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, v)
	v, err = ReadIntDefault("images", 6, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestReadDateRange(t *testing.T) {
	feed(t, "2024-03-01\n2024-03-05\n2024-03-05\n2024-03-01\n")
	start, end, err := ReadDateRange()
	require.NoError(t, err)
	assert.Equal(t, 4, int(end.Sub(start).Hours()/24))

	_, _, err = ReadDateRange()
	assert.Error(t, err)
}

func TestParsePoint(t *testing.T) {
	pt, err := parsePoint(" -60.5, -3.25 ")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{-60.5, -3.25}, pt)

	_, err = parsePoint("1")
	assert.Error(t, err)
	_, err = parsePoint("200,0")
	assert.Error(t, err)
}

func TestChoose(t *testing.T) {
	buf := feed(t, "2\n")
	i, err := Choose("Sources", []string{"modis_nrt", "viirs_snpp_nrt"})
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, buf.String(), "2. viirs_snpp_nrt")

	_, err = Choose("Empty", nil)
	assert.Error(t, err)
}

func TestShowMenu_ExitsOnChoiceAndEOF(t *testing.T) {
	buf := feed(t, "0\n12\n")
	(&App{}).ShowMenu(context.Background())
	assert.Contains(t, buf.String(), "value must be between 1 and 12")
	assert.Contains(t, buf.String(), "Exiting...")

	feed(t, "")
	(&App{}).ShowMenu(context.Background())
}

func TestShowMenu_HandlerErrorsArePrinted(t *testing.T) {
	buf := feed(t, "4\n12\n")
	s := session.New(session.NewBus(), nil, session.ImageryParamsFromConfig(config.DefaultConfig().Planet))
	(&App{Session: s}).ShowMenu(context.Background())
	assert.Contains(t, buf.String(), "no alerts loaded")
	assert.Contains(t, buf.String(), "Error:")
}
