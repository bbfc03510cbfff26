package csvenc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindows1252RoundTrip(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Write(&b, Windows1252, []string{"nome", "descrição"}, [][]string{{"Capacete", "proteção"}}))

	// ç and ã are single bytes in cp1252
	assert.Contains(t, b.String(), "prote\xe7\xe3o")

	recs, err := NewReader(&b, Windows1252).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"nome", "descrição"}, {"Capacete", "proteção"}}, recs)
}

func TestUTF8ReaderStripsBOM(t *testing.T) {
	recs, err := NewReader(strings.NewReader("\ufeffname,quantity\nLuva,3\n"), UTF8).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "name", recs[0][0])
	assert.Equal(t, []string{"Luva", "3"}, recs[1])
}

func TestParseEncoding(t *testing.T) {
	e, err := ParseEncoding("CP1252")
	require.NoError(t, err)
	assert.Equal(t, Windows1252, e)

	e, err = ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, UTF8, e)

	_, err = ParseEncoding("shift-jis")
	assert.Error(t, err)
}
