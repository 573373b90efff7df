// Package ticket records handoff requests and mirrors them to the
// spreadsheet webhook the front desk watches.
package ticket

import (
	"context"
	"regexp"
	"strings"

	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/store"
)

// Labeled lines in the handoff message ("Nombre: Ana") populate ticket
// fields; anything else stays in the free-text message. English labels are
// accepted since the prompt goes out localized.
var (
	nameRe     = regexp.MustCompile(`(?im)^\s*(?:nombre|name)\s*[:\-]\s*(.+)$`)
	topicRe    = regexp.MustCompile(`(?im)^\s*(?:tema|topic|asunto|subject)\s*[:\-]\s*(.+)$`)
	contactRe  = regexp.MustCompile(`(?im)^\s*(?:contacto|contact|tel[eé]fono|phone)\s*[:\-]\s*(.+)$`)
	scheduleRe = regexp.MustCompile(`(?im)^\s*(?:horario|schedule|hora|time)\s*[:\-]\s*(.+)$`)
)

// Service creates tickets and mirrors them to the sheet sink.
type Service struct {
	db      *store.DB
	sink    *SheetSink
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewService creates a ticket service. sink may be nil when mirroring is
// disabled.
func NewService(db *store.DB, sink *SheetSink, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{db: db, sink: sink, metrics: m, log: log}
}

// CreateFromMessage builds a ticket from the handoff reply text, persists
// it, and mirrors it best-effort. The mirror never fails the ticket: the
// user still gets a confirmation when the spreadsheet is down.
func (s *Service) CreateFromMessage(ctx context.Context, sender, text string) (*store.Ticket, error) {
	t := &store.Ticket{
		Sender:   sender,
		Name:     extractField(nameRe, text),
		Topic:    extractField(topicRe, text),
		Contact:  extractField(contactRe, text),
		Schedule: extractField(scheduleRe, text),
		Message:  text,
	}
	if t.Contact == "" {
		t.Contact = sender
	}

	if err := s.db.SaveTicket(ctx, t); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordTicketCreated()
	}

	if s.sink != nil {
		if err := s.sink.Post(ctx, t); err != nil && s.log != nil {
			s.log.WithError(err).WithField("ticket_id", t.ID).Warn("sheet mirror failed")
		}
	}
	return t, nil
}

// List returns stored tickets newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*store.Ticket, error) {
	return s.db.ListTickets(ctx, limit)
}

func extractField(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
