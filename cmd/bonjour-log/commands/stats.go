package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByOperation map[log.Operation]int
	EventsByCategory  map[log.Category]int
	Sessions          map[string]*SessionStats
	Instances         map[string]*InstanceStats
	ErrorCodes        map[dnssd.ErrorCode]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single discovery session.
type SessionStats struct {
	Operation log.Operation
	Backend   string
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Replies   int
	Stopped   string
}

// InstanceStats holds what the log shows about one service instance.
type InstanceStats struct {
	Added    int
	Removed  int
	Resolved int
	Target   string
}

func newStats() *Stats {
	return &Stats{
		EventsByOperation: make(map[log.Operation]int),
		EventsByCategory:  make(map[log.Category]int),
		Sessions:          make(map[string]*SessionStats),
		Instances:         make(map[string]*InstanceStats),
		ErrorCodes:        make(map[dnssd.ErrorCode]int),
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByOperation[event.Operation]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{
			Operation: event.Operation,
			Backend:   event.Backend,
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Sessions[event.SessionID] = sess
	}
	sess.Events++
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}

	if event.State != nil && event.State.State == log.StateStopped {
		sess.Stopped = event.State.Reason
		if sess.Stopped == "" {
			sess.Stopped = "stopped"
		}
	}

	if event.Error != nil {
		s.Errors++
		if event.Error.Code != 0 {
			s.ErrorCodes[event.Error.Code]++
		}
	}

	if r := event.Reply; r != nil {
		sess.Replies++
		if r.ErrorCode != 0 {
			s.ErrorCodes[r.ErrorCode]++
			return
		}
		s.addInstance(event.Operation, r)
	}
}

func (s *Stats) addInstance(op log.Operation, r *log.ReplyEvent) {
	var key string
	switch op {
	case log.OperationBrowse:
		key = dnssd.ConstructFullName(r.Name, dnssd.NormalizeRegtype(r.Regtype), dnssd.NormalizeDomain(r.Domain))
	case log.OperationResolve:
		key = r.Fullname
	default:
		return
	}
	if key == "" {
		return
	}
	key = strings.ToLower(key)

	inst, ok := s.Instances[key]
	if !ok {
		inst = &InstanceStats{}
		s.Instances[key] = inst
	}
	switch {
	case op == log.OperationResolve:
		inst.Resolved++
		inst.Target = fmt.Sprintf("%s:%d", r.Host, r.Port)
	case r.Added():
		inst.Added++
	default:
		inst.Removed++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== DNS-SD Discovery Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Operation:")
	for _, op := range []log.Operation{log.OperationRegister, log.OperationBrowse, log.OperationResolve} {
		if count := stats.EventsByOperation[op]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryReply, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, si := range sessions {
			duration := si.stats.LastSeen.Sub(si.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s %d events, %d replies, duration %s\n",
				shortenID(si.id), si.stats.Operation, si.stats.Events, si.stats.Replies, duration)
			if si.stats.Backend != "" {
				fmt.Fprintf(w, "           Backend: %s\n", si.stats.Backend)
			}
			if si.stats.Stopped != "" {
				fmt.Fprintf(w, "           Stopped: %s\n", si.stats.Stopped)
			}
		}
	}

	if len(stats.Instances) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Instances: %d\n", len(stats.Instances))
		names := make([]string, 0, len(stats.Instances))
		for name := range stats.Instances {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			inst := stats.Instances[name]
			fmt.Fprintf(w, "  %s added=%d removed=%d resolved=%d", name, inst.Added, inst.Removed, inst.Resolved)
			if inst.Target != "" {
				fmt.Fprintf(w, " target=%s", inst.Target)
			}
			fmt.Fprintln(w)
		}
	}

	if stats.Errors > 0 || len(stats.ErrorCodes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
		codes := make([]dnssd.ErrorCode, 0, len(stats.ErrorCodes))
		for code := range stats.ErrorCodes {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] > codes[j] })
		for _, code := range codes {
			fmt.Fprintf(w, "  %-20s %d\n", code.String()+":", stats.ErrorCodes[code])
		}
	}
}
