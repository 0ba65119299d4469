package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResultLabel(t *testing.T) {
	if got := ResultLabel(true); got != "success" {
		t.Errorf("ResultLabel(true) = %q", got)
	}
	if got := ResultLabel(false); got != "failure" {
		t.Errorf("ResultLabel(false) = %q", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	PipelineRunsTotal.WithLabelValues("TestRole", "success").Inc()

	path := filepath.Join(t.TempDir(), "rolecfg.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `rolecfg_pipeline_runs_total{result="success",role="TestRole"}`) {
		t.Errorf("textfile missing pipeline counter:\n%s", data)
	}
}
