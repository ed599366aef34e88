package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cypherdb/cypherdb"
)

type lineReader struct {
	scanner *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{scanner: bufio.NewScanner(r)}
}

func (lr *lineReader) readLine() (string, bool) {
	if !lr.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(lr.scanner.Text()), true
}

func printResultSet(rs *cypherdb.ResultSet) {
	if rs == nil || len(rs.Columns) == 0 {
		fmt.Println("(no rows)")
		return
	}
	fmt.Println(strings.Join(rs.Columns, " | "))
	for _, row := range rs.Project() {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = v.String()
		}
		fmt.Println(strings.Join(parts, " | "))
	}
}
