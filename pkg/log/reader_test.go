package log

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()
	return path
}

func sampleEvents(base time.Time) []Event {
	return []Event{
		{
			Timestamp: base, SessionID: "adv", Operation: OperationRegister, Category: CategoryState,
			State: &StateEvent{State: StateStarted},
		},
		{
			Timestamp: base.Add(time.Second), SessionID: "adv", Operation: OperationRegister, Category: CategoryReply,
			Reply: &ReplyEvent{Name: "myecho", Regtype: "_echo._tcp", Domain: "local"},
		},
		{
			Timestamp: base.Add(2 * time.Second), SessionID: "brw", Operation: OperationBrowse, Category: CategoryReply,
			Reply: &ReplyEvent{Flags: dnssd.FlagsAdd, Name: "peer", Regtype: "_echo._tcp", Domain: "local"},
		},
		{
			Timestamp: base.Add(3 * time.Second), SessionID: "res", Operation: OperationResolve, Category: CategoryReply,
			Reply: &ReplyEvent{Fullname: "peer._echo._tcp.local.", Host: "peer.local.", Port: 8000},
		},
		{
			Timestamp: base.Add(4 * time.Second), SessionID: "res2", Operation: OperationResolve, Category: CategoryReply,
			Reply: &ReplyEvent{ErrorCode: dnssd.ErrTimeout, Fullname: "gone._echo._tcp.local."},
		},
		{
			Timestamp: base.Add(5 * time.Second), SessionID: "adv", Operation: OperationRegister, Category: CategoryError,
			Error: &ErrorEventData{Message: "boom"},
		},
	}
}

func sessionIDs(events []Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.SessionID
	}
	return ids
}

func TestReaderIteratesEvents(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(time.Now()))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
	if len(read) != 6 {
		t.Fatalf("got %d events, want 6", len(read))
	}
	if read[0].State == nil || read[0].State.State != StateStarted {
		t.Errorf("first event State = %+v", read[0].State)
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReaderHandlesTruncatedFile(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(time.Now())[:1])

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Append a partial copy of the event.
	if err := os.WriteFile(path, append(data, data[:len(data)/2]...), 0644); err != nil {
		t.Fatal(err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	if _, err := reader.Next(); err == nil || err == io.EOF {
		t.Errorf("expected decode error for truncated tail, got %v", err)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "nope.blog")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFilterMatches(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sampleEvents(base))

	browse := OperationBrowse
	reply := CategoryReply
	start := base.Add(2 * time.Second)
	end := base.Add(4 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"All", Filter{}, []string{"adv", "adv", "brw", "res", "res2", "adv"}},
		{"Session", Filter{SessionID: "adv"}, []string{"adv", "adv", "adv"}},
		{"Operation", Filter{Operation: &browse}, []string{"brw"}},
		{"Category", Filter{Category: &reply}, []string{"adv", "brw", "res", "res2"}},
		{"TimeRange", Filter{TimeStart: &start, TimeEnd: &end}, []string{"brw", "res"}},
		{"NameMatchesFullname", Filter{Name: "PEER"}, []string{"brw", "res"}},
		{"Regtype", Filter{Regtype: "_echo._tcp."}, []string{"adv", "brw", "res", "res2"}},
		{"ErrorsOnly", Filter{ErrorsOnly: true}, []string{"res2", "adv"}},
		{"Combined", Filter{Category: &reply, Name: "myecho"}, []string{"adv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := ReadAll(path, tt.filter)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			got := sessionIDs(events)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
