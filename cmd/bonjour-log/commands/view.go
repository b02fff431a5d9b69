// Package commands implements the bonjour-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/mash-protocol/bonjour-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Operation  *log.Operation
	Category   *log.Category
	ErrorsOnly bool
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Operation:  f.Operation,
		Category:   f.Category,
		ErrorsOnly: f.ErrorsOnly,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] OPERATION Label
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	label := eventLabel(event)

	fmt.Fprintf(w, "%s [session:%s] %-8s %s", ts, shortenID(event.SessionID), event.Operation.String(), label)
	if event.Backend != "" {
		fmt.Fprintf(w, " (%s)", event.Backend)
	}
	fmt.Fprintln(w)

	switch {
	case event.Reply != nil:
		formatReplyDetails(w, event.Operation, event.Reply)
	case event.State != nil:
		formatStateDetails(w, event.State)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// eventLabel names the event for the header line.
func eventLabel(event log.Event) string {
	switch {
	case event.Reply != nil:
		if event.Operation == log.OperationBrowse {
			if event.Reply.Added() {
				return "Add"
			}
			return "Remove"
		}
		return "Reply"
	case event.State != nil:
		return event.State.State.String()
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatReplyDetails writes reply-specific details.
func formatReplyDetails(w io.Writer, op log.Operation, r *log.ReplyEvent) {
	fmt.Fprintf(w, "  Flags: %s\n", r.Flags.String())
	if r.ErrorCode != 0 {
		fmt.Fprintf(w, "  Error: %s (%d)\n", r.ErrorCode.String(), int32(r.ErrorCode))
	}
	if r.InterfaceIndex != 0 {
		fmt.Fprintf(w, "  Interface: %d\n", r.InterfaceIndex)
	}

	if op == log.OperationResolve {
		if r.Fullname != "" {
			fmt.Fprintf(w, "  Instance: %s\n", r.Fullname)
		} else if r.Name != "" {
			fmt.Fprintf(w, "  Instance: %s\n", r.Name)
		}
		if r.Host != "" || r.Port != 0 {
			fmt.Fprintf(w, "  Target: %s:%d\n", r.Host, r.Port)
		}
		if len(r.TXT) > 0 {
			fmt.Fprintf(w, "  TXT: %s\n", strings.Join(log.TXTStrings(r.TXT), " "))
		}
		return
	}

	if r.Name != "" || r.Regtype != "" {
		fmt.Fprintf(w, "  Instance: %s.%s.%s\n", r.Name, r.Regtype, r.Domain)
	}
}

// formatStateDetails writes session lifecycle details.
func formatStateDetails(w io.Writer, s *log.StateEvent) {
	if s.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", s.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != 0 {
		fmt.Fprintf(w, "  Code: %s (%d)\n", err.Code.String(), int32(err.Code))
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseOperationFlag parses an operation from a command-line flag
// (case-insensitive).
func ParseOperationFlag(s string) (log.Operation, error) {
	op, ok := log.ParseOperation(s)
	if !ok {
		return 0, fmt.Errorf("invalid operation: %s (must be register, browse, or resolve)", s)
	}
	return op, nil
}

// ParseCategoryFlag parses a category from a command-line flag
// (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(s)
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be reply, state, or error)", s)
	}
	return c, nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
