package progress

import (
	"bytes"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Task: "Reanalyzing reports", Out: &buf}
	r.Start(2)
	r.Update(1, "rep-1")
	r.Update(2, "rep-2")
	r.Finish()

	want := "Reanalyzing reports: 2 item(s)\n[1/2] rep-1\n[2/2] rep-2\nReanalyzing reports: done\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNewReporterHonorsCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := NewReporter("x").(*TerminalReporter); !ok {
		t.Error("expected TerminalReporter outside CI")
	}
}

func TestTerminalReporterWithoutStart(t *testing.T) {
	r := &TerminalReporter{Task: "x"}
	r.Update(1, "ignored")
	r.Finish()
}
