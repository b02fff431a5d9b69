package bonjour

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mash-protocol/bonjour-go/pkg/dnssd"
	"github.com/mash-protocol/bonjour-go/pkg/log"
)

// session tracks the descriptor of one running operation and records its
// lifecycle in the event log.
type session struct {
	op      log.Operation
	loop    Loop
	logger  *slog.Logger
	events  log.Logger
	backend string

	id   string
	desc *Descriptor

	// lost runs when the loop dropped the descriptor.
	lost func(reason error)
}

func newSession(op log.Operation, loop Loop, logger *slog.Logger, events log.Logger, backend string) *session {
	if logger == nil {
		logger = slog.Default()
	}
	return &session{
		op:      op,
		loop:    loop,
		logger:  logger,
		events:  log.OrNoop(events),
		backend: backend,
	}
}

func (s *session) running() bool {
	return s.desc != nil
}

// start runs open and hooks the returned ref into the loop.
func (s *session) start(open func() (dnssd.ServiceRef, error)) error {
	if s.desc != nil {
		return ErrAlreadyStarted
	}

	ref, err := open()
	if err != nil {
		return err
	}

	s.id = uuid.NewString()
	d := NewDescriptor(ref, s.logger)
	d.session = s.id
	d.onLost = func(reason error) {
		if s.desc != d {
			return
		}
		s.desc = nil
		s.logger.Debug("bonjour session lost", "session", s.id, "op", s.op, "reason", reason)
		s.logState(log.StateStopped, fmt.Sprintf("connection lost: %v", reason))
		if s.lost != nil {
			s.lost(reason)
		}
	}

	if err := s.loop.AddReader(d); err != nil {
		d.Close()
		return fmt.Errorf("failed to add descriptor to loop: %w", err)
	}
	s.desc = d
	s.logState(log.StateStarted, "")
	return nil
}

// stop removes the descriptor from the loop and closes the ref. It is a
// no-op when nothing is running.
func (s *session) stop(reason string) {
	d := s.desc
	if d == nil {
		return
	}
	s.desc = nil

	s.logger.Debug("stopping bonjour session", "session", s.id, "op", s.op, "reason", reason)
	s.loop.RemoveReader(d)
	d.Close()
	s.logState(log.StateStopped, reason)
}

// ref returns the running ServiceRef, or nil.
func (s *session) ref() dnssd.ServiceRef {
	if s.desc == nil {
		return nil
	}
	return s.desc.Ref()
}

func (s *session) event(category log.Category) log.Event {
	return log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Operation: s.op,
		Category:  category,
		Backend:   s.backend,
	}
}

func (s *session) logState(state log.SessionState, reason string) {
	e := s.event(log.CategoryState)
	e.State = &log.StateEvent{State: state, Reason: reason}
	s.events.Log(e)
}

func (s *session) logReply(ev Event) {
	e := s.event(log.CategoryReply)
	e.Reply = &log.ReplyEvent{
		Flags:          ev.Flags,
		InterfaceIndex: ev.InterfaceIndex,
		ErrorCode:      ev.ErrorCode,
		Name:           ev.Name,
		Regtype:        ev.Regtype,
		Domain:         ev.Domain,
		Fullname:       ev.Fullname,
		Host:           ev.Host,
		Port:           ev.Port,
		TXT:            ev.TXT,
	}
	s.events.Log(e)
}

// logError records err at detection, both operationally and in the event
// log.
func (s *session) logError(err error, context string) {
	s.logger.Warn(context, "session", s.id, "op", s.op, "error", err)

	e := s.event(log.CategoryError)
	e.Error = &log.ErrorEventData{
		Message: err.Error(),
		Code:    dnssd.CodeOf(err),
		Context: context,
	}
	s.events.Log(e)
}
