package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
)

// Filter selects events. Zero-valued fields match everything.
type Filter struct {
	// SessionID matches one session exactly.
	SessionID string

	// Operation matches one operation.
	Operation *Operation

	// Category matches one category.
	Category *Category

	// TimeStart matches events at or after this time.
	TimeStart *time.Time

	// TimeEnd matches events before this time.
	TimeEnd *time.Time

	// Name matches replies whose instance name, or full name, contains it
	// (case-insensitive).
	Name string

	// Regtype matches replies for this service type.
	Regtype string

	// ErrorsOnly matches error events and replies with a non-zero code.
	ErrorsOnly bool
}

// Matches reports whether event satisfies every criterion.
func (f *Filter) Matches(event Event) bool {
	if f.SessionID != "" && event.SessionID != f.SessionID {
		return false
	}
	if f.Operation != nil && event.Operation != *f.Operation {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	if f.ErrorsOnly && !event.IsError() {
		return false
	}
	if f.Name != "" {
		if event.Reply == nil {
			return false
		}
		needle := strings.ToLower(f.Name)
		if !strings.Contains(strings.ToLower(event.Reply.Name), needle) &&
			!strings.Contains(strings.ToLower(event.Reply.Fullname), needle) {
			return false
		}
	}
	if f.Regtype != "" {
		if event.Reply == nil {
			return false
		}
		want := dnssd.NormalizeRegtype(f.Regtype)
		if !strings.EqualFold(dnssd.NormalizeRegtype(event.Reply.Regtype), want) &&
			!strings.Contains(strings.ToLower(event.Reply.Fullname), "."+strings.ToLower(want)+".") {
			return false
		}
	}
	return true
}

// Reader streams events from a log file.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader opens path and reads every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and reads the events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next matching event, or io.EOF at the end of the file.
// A partially written trailing event is reported as io.ErrUnexpectedEOF.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Close closes the file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadAll returns every matching event of the file at path.
func ReadAll(path string, filter Filter) ([]Event, error) {
	r, err := NewFilteredReader(path, filter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}

// TXTStrings renders a TXT map as sorted "key=value" strings.
func TXTStrings(txt map[string]string) []string {
	out := dnssd.TXTRecord(txt).Strings()
	sort.Strings(out)
	return out
}
