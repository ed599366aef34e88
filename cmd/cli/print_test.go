package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb"
	"github.com/cypherdb/cypherdb/internal/executor"
	"github.com/cypherdb/cypherdb/internal/value"
)

func TestLineReaderTrimsAndStopsAtEOF(t *testing.T) {
	r := newLineReader(strings.NewReader("  MATCH (n) RETURN n  \nexit\n"))
	line, ok := r.readLine()
	require.True(t, ok)
	assert.Equal(t, "MATCH (n) RETURN n", line)

	line, ok = r.readLine()
	require.True(t, ok)
	assert.Equal(t, "exit", line)

	_, ok = r.readLine()
	assert.False(t, ok)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	fn()
	require.NoError(t, w.Close())
	os.Stdout = old
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestPrintResultSetEmptyReportsNoRows(t *testing.T) {
	out := captureStdout(t, func() { printResultSet(&cypherdb.ResultSet{}) })
	assert.Contains(t, out, "no rows")
}

func TestPrintResultSetPrintsHeaderAndRows(t *testing.T) {
	rs := &cypherdb.ResultSet{
		Columns: []string{"name", "age"},
		Rows: []executor.Row{
			{"name": value.StringValue("Ada"), "age": value.IntValue(30)},
		},
	}
	out := captureStdout(t, func() { printResultSet(rs) })
	assert.Contains(t, out, "name | age")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "30")
}
