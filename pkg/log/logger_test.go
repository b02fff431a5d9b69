package log

import (
	"testing"
	"time"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
)

func TestNoopLoggerAcceptsEveryPayload(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Operation: OperationBrowse,
		Category:  CategoryReply,
	}
	logger.Log(event)

	event.Reply = &ReplyEvent{Flags: dnssd.FlagsAdd, Name: "myecho"}
	logger.Log(event)

	event.Reply = nil
	event.Category = CategoryState
	event.State = &StateEvent{State: StateStopped, Reason: "stopped"}
	logger.Log(event)

	event.State = nil
	event.Category = CategoryError
	event.Error = &ErrorEventData{Message: "boom", Code: dnssd.ErrUnknown}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	m := NewMultiLogger()
	if OrNoop(m) != Logger(m) {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
}
