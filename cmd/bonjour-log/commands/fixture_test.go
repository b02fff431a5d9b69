package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/log"
)

var fixtureStart = time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)

// fixtureEvents is the trace of one echo run: register, browse that finds
// a peer, a resolve of it and a failed resolve.
func fixtureEvents() []log.Event {
	at := func(sec int) time.Time { return fixtureStart.Add(time.Duration(sec) * time.Second) }
	return []log.Event{
		{Timestamp: at(0), SessionID: "aaaaaaaa-1111", Operation: log.OperationRegister, Category: log.CategoryState, Backend: "memory",
			State: &log.StateEvent{State: log.StateStarted}},
		{Timestamp: at(1), SessionID: "aaaaaaaa-1111", Operation: log.OperationRegister, Category: log.CategoryReply, Backend: "memory",
			Reply: &log.ReplyEvent{Name: "myecho", Regtype: "_echo._tcp", Domain: "local"}},
		{Timestamp: at(2), SessionID: "bbbbbbbb-2222", Operation: log.OperationBrowse, Category: log.CategoryReply, Backend: "memory",
			Reply: &log.ReplyEvent{Flags: dnssd.FlagsAdd, Name: "peer", Regtype: "_echo._tcp.", Domain: "local."}},
		{Timestamp: at(3), SessionID: "cccccccc-3333", Operation: log.OperationResolve, Category: log.CategoryReply, Backend: "memory",
			Reply: &log.ReplyEvent{Name: "peer", Fullname: "peer._echo._tcp.local.", Host: "station.local.", Port: 8001,
				TXT: map[string]string{"client_id": "station-2"}}},
		{Timestamp: at(4), SessionID: "cccccccc-3333", Operation: log.OperationResolve, Category: log.CategoryState, Backend: "memory",
			State: &log.StateEvent{State: log.StateStopped, Reason: "resolved"}},
		{Timestamp: at(5), SessionID: "bbbbbbbb-2222", Operation: log.OperationBrowse, Category: log.CategoryReply, Backend: "memory",
			Reply: &log.ReplyEvent{Name: "peer", Regtype: "_echo._tcp.", Domain: "local."}},
		{Timestamp: at(6), SessionID: "dddddddd-4444", Operation: log.OperationResolve, Category: log.CategoryError, Backend: "memory",
			Error: &log.ErrorEventData{Message: "resolve of \"gone\" failed", Code: dnssd.ErrTimeout, Context: "resolve failed"}},
	}
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "echo.blog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	for _, e := range fixtureEvents() {
		logger.Log(e)
	}
	logger.Close()
	return path
}
