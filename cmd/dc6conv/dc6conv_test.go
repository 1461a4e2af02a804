package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"badc0de.net/pkg/go-dc6/dc6/dc6test"
	"badc0de.net/pkg/go-dc6/ttesting"
)

func TestRunWithoutInputsPrintsUsage(t *testing.T) {
	buf := &bytes.Buffer{}
	flag.CommandLine.SetOutput(buf)
	defer flag.CommandLine.SetOutput(nil)

	ttesting.AssertEqualInt(t, "exit code", run(nil), 0)
	if !strings.Contains(buf.String(), "Usage:") {
		t.Errorf("usage not printed, got %q", buf.String())
	}
}

func TestRunSkipsMissingInput(t *testing.T) {
	in := t.TempDir()
	good := filepath.Join(in, "good.dc6")
	data := dc6test.Build(dc6test.File{Directions: 1, FramesPerDirection: 1, Frames: []dc6test.Frame{
		{Flipped: true, Width: 2, Height: 2, Data: dc6test.EncodeRows(dc6test.Fill(2, 2, 9))},
	}})
	if err := os.WriteFile(good, data, 0644); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	oldOut, oldFormat := *outDir, *format
	*outDir, *format = out, "png"
	defer func() { *outDir, *format = oldOut, oldFormat }()

	code := run([]string{filepath.Join(in, "gone.dc6"), good})
	ttesting.AssertEqualInt(t, "exit code", code, 0)
	if _, err := os.Stat(filepath.Join(out, "good.png")); err != nil {
		t.Errorf("good file not converted: %v", err)
	}
}
