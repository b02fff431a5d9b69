package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
)

func captureSlog(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsResolveReply(t *testing.T) {
	entry := captureSlog(t, Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Operation: OperationResolve,
		Category:  CategoryReply,
		Reply: &ReplyEvent{
			Fullname: "myecho._echo._tcp.local.",
			Host:     "station.local.",
			Port:     8000,
			TXT:      map[string]string{"client_id": "station-1"},
		},
	})

	checks := map[string]any{
		"msg":      "discovery",
		"level":    "DEBUG",
		"session":  "session-1",
		"op":       "RESOLVE",
		"category": "REPLY",
		"host":     "station.local.",
		"port":     float64(8000),
		"txt":      "client_id=station-1",
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s: got %v, want %v", k, entry[k], want)
		}
	}
}

func TestSlogAdapterLogsBrowseFlags(t *testing.T) {
	entry := captureSlog(t, Event{
		SessionID: "session-2",
		Operation: OperationBrowse,
		Reply:     &ReplyEvent{Flags: dnssd.FlagsAdd, Name: "peer", Regtype: "_echo._tcp", Domain: "local"},
	})
	if entry["flags"] != "Add" {
		t.Errorf("flags: got %v, want Add", entry["flags"])
	}
	if entry["name"] != "peer" {
		t.Errorf("name: got %v, want peer", entry["name"])
	}
}

func TestSlogAdapterErrorsAtWarn(t *testing.T) {
	entry := captureSlog(t, Event{
		SessionID: "session-3",
		Operation: OperationRegister,
		Category:  CategoryError,
		Error:     &ErrorEventData{Message: "boom", Code: dnssd.ErrNameConflict, Context: "registration reply"},
	})
	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
	if entry["error_code"] != float64(dnssd.ErrNameConflict) {
		t.Errorf("error_code: got %v", entry["error_code"])
	}
}

func TestSlogAdapterLogsState(t *testing.T) {
	entry := captureSlog(t, Event{
		SessionID: "session-4",
		Category:  CategoryState,
		State:     &StateEvent{State: StateStopped, Reason: "stopped"},
	})
	if entry["state"] != "STOPPED" || entry["reason"] != "stopped" {
		t.Errorf("state/reason: got %v/%v", entry["state"], entry["reason"])
	}
}
