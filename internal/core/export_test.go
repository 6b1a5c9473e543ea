package core

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	input := "Report Number,Crash Date/Time,Speed Limit,Road Name\n" +
		"MCP1,05/01/2023 03:30:00 PM,35,\"Main St, North\"\n" +
		"MCP2,,,\n"
	specs := []FieldSpec{{Name: "Crash Date/Time", Type: ColumnTemporal}}

	res, err := ReadCSV(strings.NewReader(input), specs)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, res.Table); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "Report Number,Crash Date/Time,Speed Limit,Road Name\n" +
		"MCP1,2023-05-01 15:30:00,35,\"Main St, North\"\n" +
		"MCP2,,,\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", got, want)
	}
}
