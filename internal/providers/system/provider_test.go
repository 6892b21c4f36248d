package system

import (
	"context"
	"testing"

	"github.com/GriffinCanCode/Forkspace/backend/internal/shared/types"
)

func newTestProvider() *Provider {
	return NewProvider(Info{Version: "test", Home: "/home/u", Temp: "/tmp", DefaultShell: "/bin/zsh"}, nil)
}

func TestSystemInfo(t *testing.T) {
	sys := newTestProvider()

	result, err := sys.Execute(context.Background(), "system.info", nil, nil)
	if err != nil || !result.Success {
		t.Fatalf("system info failed: %v", err)
	}

	if result.Data["home"] != "/home/u" {
		t.Errorf("expected home /home/u, got %v", result.Data["home"])
	}
	if result.Data["default_shell"] != "/bin/zsh" {
		t.Errorf("expected default shell, got %v", result.Data["default_shell"])
	}
	if result.Data["go_version"] == nil {
		t.Error("expected go_version in response")
	}
}

func TestSystemPing(t *testing.T) {
	result, err := newTestProvider().Execute(context.Background(), "system.ping", nil, nil)
	if err != nil || !result.Success {
		t.Fatalf("ping failed: %v", err)
	}
	if result.Data["pong"] != true {
		t.Error("expected pong=true")
	}
}

func TestSystemLog(t *testing.T) {
	sys := newTestProvider()
	ctx := context.Background()
	clientID := "client-1"

	result, err := sys.Execute(ctx, "system.log", map[string]interface{}{
		"message": "terminal mounted",
		"source":  "XTerminal",
	}, &types.Context{ClientID: &clientID})
	if err != nil || !result.Success {
		t.Fatalf("log failed: %v", err)
	}

	result, err = sys.Execute(ctx, "system.get_logs", map[string]interface{}{"limit": 10.0}, nil)
	if err != nil || !result.Success {
		t.Fatalf("get logs failed: %v", err)
	}

	logs := result.Data["logs"].([]LogEntry)
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if logs[0].Level != "info" || logs[0].ClientID != "client-1" || logs[0].Source != "XTerminal" {
		t.Errorf("unexpected entry: %+v", logs[0])
	}
}

func TestSystemLogValidation(t *testing.T) {
	sys := newTestProvider()
	ctx := context.Background()

	tests := []struct {
		name   string
		toolID string
		params map[string]interface{}
	}{
		{"missing message", "system.log", map[string]interface{}{}},
		{"bad level", "system.log", map[string]interface{}{"message": "x", "level": "loud"}},
		{"zero limit", "system.get_logs", map[string]interface{}{"limit": 0.0}},
		{"fractional limit", "system.get_logs", map[string]interface{}{"limit": 1.5}},
		{"unknown tool", "system.time", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := sys.Execute(ctx, tt.toolID, tt.params, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Success {
				t.Error("expected failure")
			}
		})
	}
}

func TestLogBufferFilterAndOrder(t *testing.T) {
	buf := NewLogBuffer(10)
	buf.Add(LogEntry{Level: "info", Message: "a"})
	buf.Add(LogEntry{Level: "error", Message: "b"})
	buf.Add(LogEntry{Level: "info", Message: "c"})

	recent := buf.Recent(10, "info")
	if len(recent) != 2 || recent[0].Message != "c" || recent[1].Message != "a" {
		t.Errorf("unexpected filtered entries: %+v", recent)
	}

	if got := buf.Recent(1, ""); len(got) != 1 || got[0].Message != "c" {
		t.Errorf("expected newest entry, got %+v", got)
	}
}

func TestLogBufferRotation(t *testing.T) {
	buf := NewLogBuffer(3)
	for _, msg := range []string{"1", "2", "3", "4", "5"} {
		buf.Add(LogEntry{Level: "info", Message: msg})
	}

	recent := buf.Recent(10, "")
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	for i, want := range []string{"5", "4", "3"} {
		if recent[i].Message != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, recent[i].Message)
		}
	}
}
