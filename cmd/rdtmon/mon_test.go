package main

import (
	"strings"
	"testing"
)

func TestBuildMonitorRejectsBadTime(t *testing.T) {
	_, err := buildMonitor(monitorOptions{interval: 10, monTime: "soon"})
	if err == nil || !strings.Contains(err.Error(), "invalid monitoring time") {
		t.Fatalf("expected monitoring time error, got %v", err)
	}
}

func TestBuildMonitorRejectsBadFileType(t *testing.T) {
	_, err := buildMonitor(monitorOptions{interval: 10, monTime: "inf", fileType: "yaml"})
	if err == nil || !strings.Contains(err.Error(), "invalid selection of output file type") {
		t.Fatalf("expected file type error, got %v", err)
	}
}

func TestBuildMonitorRejectsMixedSelection(t *testing.T) {
	_, err := buildMonitor(monitorOptions{
		cores:    []string{"llc:0"},
		pids:     []string{"llc:1234"},
		interval: 10,
		monTime:  "inf",
	})
	if err == nil || !strings.Contains(err.Error(), "can not be done simultaneously") {
		t.Fatalf("expected mixed selection error, got %v", err)
	}
}

func TestBuildMonitorRejectsBadCoreSpec(t *testing.T) {
	_, err := buildMonitor(monitorOptions{
		cores:    []string{"cache:0"},
		interval: 10,
		monTime:  "inf",
	})
	if err == nil || !strings.Contains(err.Error(), "unrecognized monitoring event type") {
		t.Fatalf("expected event type error, got %v", err)
	}
}

func TestMonRunESurfacesSelectionErrors(t *testing.T) {
	oldCores, oldTime := monCores, monTime
	monCores = []string{"llc:[1,2"}
	monTime = "inf"
	t.Cleanup(func() {
		monCores, monTime = oldCores, oldTime
	})

	if err := cmdMon.RunE(cmdMon, nil); err == nil {
		t.Fatal("expected unterminated group error")
	}
}
