package applog

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	saved := baseLogger
	savedLevel := GetLogLevel()
	baseLogger = log.New(&buf, "", 0)
	t.Cleanup(func() {
		baseLogger = saved
		SetLogLevel(savedLevel.String())
	})
	return &buf
}

func TestInfof_NoDoubleFormattingWithPercent(t *testing.T) {
	buf := captureLog(t)
	SetLogLevel("info")

	msg := "[pipeline] kept 412 of 500 records (82.4% of input) window=56d"
	Infof(msg)

	out := buf.String()
	if !strings.Contains(out, "(82.4% of input)") {
		t.Fatalf("log output missing expected percent segment: %s", out)
	}
	if strings.Contains(out, "%!o(MISSING)") || strings.Contains(out, "%!f(MISSING)") {
		t.Fatalf("log output still shows fmt artifact: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLog(t)
	if !SetLogLevel("warn") {
		t.Fatalf("warn should be a valid level")
	}
	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warnf("warn %d", 3)
	Errorf("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Fatalf("messages below warn leaked: %s", out)
	}
	if !strings.Contains(out, "[WARN] warn 3") || !strings.Contains(out, "[ERROR] error 4") {
		t.Fatalf("expected warn and error lines, got: %s", out)
	}
}

func TestSetLogLevel_UnknownKeepsCurrent(t *testing.T) {
	captureLog(t)
	SetLogLevel("error")
	if SetLogLevel("verbose") {
		t.Fatalf("verbose should not be accepted")
	}
	if GetLogLevel() != LevelError {
		t.Fatalf("level changed on unknown name: %v", GetLogLevel())
	}
	if !ValidLevel(" Debug ") {
		t.Fatalf("ValidLevel should trim and ignore case")
	}
}

func TestComponentLogger(t *testing.T) {
	buf := captureLog(t)
	SetLogLevel("debug")
	l := For("pipeline")
	if l.Component() != "pipeline" {
		t.Fatalf("component %q", l.Component())
	}
	l.Infof("%d records loaded", 3)
	l.Warnf("kept 50% as-is")
	l.Debugf("ceiling %.1f", 12.5)

	out := buf.String()
	for _, want := range []string{"[INFO] [pipeline] 3 records loaded", "[WARN] [pipeline] kept 50% as-is", "[DEBUG] [pipeline] ceiling 12.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
