package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/crashaudit/internal/core"
)

const crashCSV = "Report Number,Local Case Number,Agency Name,Crash Date/Time,Speed Limit,Vehicle Year,Weather\n" +
	"MCP1,L1,Montgomery County Police,05/01/2023 03:30:00 PM,35,2015,CLEAR\n" +
	"MCP2,L2,Montgomery County Police,05/02/2023 09:15:00 AM,,2019,RAIN\n" +
	"MCP2,L2,Montgomery County Police,05/02/2023 09:15:00 AM,,2019,RAIN\n" +
	"MCP3,L3,Rockville Police,05/20/2023 06:00:00 PM,45,2008,\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAuditCommand(t *testing.T) {
	path := writeFile(t, "crashes.csv", crashCSV)

	out, err := run(t, "audit", path)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	for _, want := range []string{
		"Health score:",
		"Rows: 4  Columns: 7",
		"Found 1 duplicate IDs based on 'Report Number'.",
		"Latest record: 2023-05-20 18:00:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "audit", "--json", path)
	if err != nil {
		t.Fatalf("audit --json: %v", err)
	}
	var report core.AuditReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.RowCount != 4 || report.HealthScore <= 0 {
		t.Errorf("report = rows %d, health %v", report.RowCount, report.HealthScore)
	}
}

func TestAuditWithRulesFile(t *testing.T) {
	path := writeFile(t, "crashes.csv", crashCSV)
	rulesPath := writeFile(t, "rules.yaml", "primary_key: Local Case Number\n")

	out, err := run(t, "audit", "--rules", rulesPath, path)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !strings.Contains(out, "based on 'Local Case Number'") {
		t.Errorf("rules file not applied:\n%s", out)
	}
}

func TestReadOnlyCommands(t *testing.T) {
	path := writeFile(t, "crashes.csv", crashCSV)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"profile", path}, "Speed Limit"},
		{[]string{"dictionary", path}, "NON-NULL"},
		{[]string{"insight", path}, "What:"},
		{[]string{"datasets"}, "crash_reports"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("%v: %v", tt.args, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestCleanCommand(t *testing.T) {
	path := writeFile(t, "crashes.csv", crashCSV)
	outPath := filepath.Join(t.TempDir(), "clean.csv")

	out, err := run(t, "clean", path, "--dedupe", "--impute", "Speed Limit=Mean", "-o", outPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.Contains(out, "Imputed 'Speed Limit' with Mean: 40.00") {
		t.Errorf("missing impute message:\n%s", out)
	}
	if !strings.Contains(out, "Drop Duplicates") {
		t.Errorf("missing history entry:\n%s", out)
	}
	// impute runs before dedupe
	if strings.Index(out, "Impute 'Speed Limit'") > strings.Index(out, "Drop Duplicates") {
		t.Errorf("steps out of order:\n%s", out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("cleaned file has %d lines, want 4:\n%s", len(lines), data)
	}
	if strings.Contains(string(data), ",,") {
		t.Errorf("speed limit still missing in output:\n%s", data)
	}
}

func TestCleanCommandJSON(t *testing.T) {
	path := writeFile(t, "crashes.csv", crashCSV)

	out, err := run(t, "clean", path, "--json", "--min-year", "Vehicle Year=2010")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	// a step message precedes the JSON document
	var result struct {
		History []core.TransformationLogEntry `json:"history"`
		Before  core.Snapshot                 `json:"before"`
		After   core.Snapshot                 `json:"after"`
	}
	if err := json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &result); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if result.Before.RowCount != 4 || result.After.RowCount != 3 {
		t.Errorf("rows %d -> %d, want 4 -> 3", result.Before.RowCount, result.After.RowCount)
	}
	if len(result.History) != 1 || result.History[0].Operation != "Filter Vehicle Year >= 2010" {
		t.Errorf("history = %+v", result.History)
	}
}

func TestCommandErrors(t *testing.T) {
	path := writeFile(t, "crashes.csv", crashCSV)
	badRules := writeFile(t, "rules.yaml", "bogus_key: 1\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no steps", []string{"clean", path}, "no cleaning steps"},
		{"bad strategy", []string{"clean", path, "--impute", "Speed Limit=Average"}, "Average"},
		{"bad assignment", []string{"clean", path, "--fill", "Weather"}, "expected COLUMN=VALUE"},
		{"bad year", []string{"clean", path, "--min-year", "Vehicle Year=old"}, "positive integer"},
		{"exclusive drop", []string{"clean", path, "--drop-missing", "Weather", "--drop-any-missing"}, "mutually exclusive"},
		{"missing column", []string{"clean", path, "--standardize", "Nope"}, "Nope"},
		{"unknown dataset", []string{"audit", "--dataset", "nope", path}, "unknown dataset"},
		{"bad rules", []string{"audit", "--rules", badRules, path}, "invalid rules"},
		{"missing file", []string{"audit", filepath.Join(t.TempDir(), "absent.csv")}, "absent.csv"},
		{"no args", []string{"audit"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatalf("%v: expected error", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestSplitAssignment(t *testing.T) {
	tests := []struct {
		in        string
		col, val  string
		wantError bool
	}{
		{"Weather=UNKNOWN", "Weather", "UNKNOWN", false},
		{" Speed Limit = 25 ", "Speed Limit", "25", false},
		{"Road Name=A=B", "Road Name", "A=B", false},
		{"Weather=", "Weather", "", false},
		{"=x", "", "", true},
		{"Weather", "", "", true},
	}
	for _, tt := range tests {
		col, val, err := splitAssignment("fill", tt.in)
		if (err != nil) != tt.wantError {
			t.Errorf("splitAssignment(%q) error = %v", tt.in, err)
			continue
		}
		if col != tt.col || val != tt.val {
			t.Errorf("splitAssignment(%q) = %q, %q; want %q, %q", tt.in, col, val, tt.col, tt.val)
		}
	}
}
