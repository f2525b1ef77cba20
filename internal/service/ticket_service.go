package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-router/internal/config"
	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/events"
	"github.com/spec-kit/ticket-router/internal/observability"
	"github.com/spec-kit/ticket-router/internal/persistence"
	"github.com/spec-kit/ticket-router/internal/repository"
	apperrors "github.com/spec-kit/ticket-router/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows across department stores.
type TicketService struct {
	resolver   *persistence.ConnectionResolver
	tickets    repository.TicketRepository
	compiler   *repository.CrossStoreQueryCompiler
	lister     *repository.ListingAdapter
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	listing    config.ListingConfig
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	Resolver   *persistence.ConnectionResolver
	TicketRepo repository.TicketRepository
	Lister     *repository.ListingAdapter
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Listing    config.ListingConfig
}

// SubmitTicketInput describes a public ticket submission. Field validation happens
// at the transport edge.
type SubmitTicketInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	Department    string
	Subject       string
	Message       string
}

// ListFilter describes the admin listing request. Department, when set, must
// already be a registered name.
type ListFilter struct {
	Department string
	Status     *domain.TicketStatus
	Search     string
	OrderBy    string
	OrderDir   repository.SortDirection
	Offset     int
	Limit      int
}

// ListResult is one page of the unified listing.
type ListResult struct {
	Rows                []domain.CrossDepartmentRow
	FilteredCount       int64
	TotalCount          int64
	ExcludedDepartments []string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lister := deps.Lister
	if lister == nil {
		lister = repository.NewListingAdapter(deps.Listing.DefaultLength, deps.Listing.MaxLength)
	}
	return &TicketService{
		resolver:   deps.Resolver,
		tickets:    deps.TicketRepo,
		compiler:   repository.NewCrossStoreQueryCompiler(deps.Resolver),
		lister:     lister,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		listing:    deps.Listing,
	}
}

// Departments returns the registered department names in registry order.
func (s *TicketService) Departments() []string {
	return s.resolver.Registry().Names()
}

// SubmitTicket stores a new ticket in its department's store with status new.
func (s *TicketService) SubmitTicket(ctx context.Context, input SubmitTicketInput) (*domain.Ticket, error) {
	h, err := s.resolver.Resolve(input.Department)
	if err != nil {
		return nil, s.mapError("submit", input.Department, http.StatusUnprocessableEntity, err)
	}

	ticket := &domain.Ticket{
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		CustomerPhone: trimOptional(input.CustomerPhone),
		Subject:       strings.TrimSpace(input.Subject),
		Message:       strings.TrimSpace(input.Message),
	}
	err = s.tickets.Create(ctx, h, ticket)
	s.metrics.RecordStoreOp(h.Department().Store, "create", err)
	if err != nil {
		return nil, s.mapError("submit", input.Department, http.StatusUnprocessableEntity, err)
	}

	s.logger.Info("ticket submitted",
		zap.String("department", input.Department),
		zap.String("store", h.Department().Store),
		zap.Int64("ticket_id", ticket.ID))
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketCreated,
		Department: input.Department,
		TicketID:   ticket.ID,
		Actor:      events.Actor{Type: "customer", Email: ticket.CustomerEmail},
		Payload: events.TicketCreatedPayload{
			Subject:       ticket.Subject,
			CustomerEmail: ticket.CustomerEmail,
		},
	})
	return ticket, nil
}

// ListTickets returns one page of the unified listing across departments.
func (s *TicketService) ListTickets(ctx context.Context, filter ListFilter) (*ListResult, error) {
	rel, excluded, err := s.relation(ctx, filter.Department)
	if err != nil {
		return nil, s.mapError("list", filter.Department, http.StatusUnprocessableEntity, err)
	}

	page, err := s.lister.List(ctx, rel, repository.ListParams{
		Status:   filter.Status,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	})
	s.metrics.RecordStoreOp(rel.Exec.Department().Store, "list", err)
	if err != nil {
		return nil, s.mapError("list", filter.Department, http.StatusUnprocessableEntity, err)
	}

	return &ListResult{
		Rows:                page.Rows,
		FilteredCount:       page.FilteredCount,
		TotalCount:          page.TotalCount,
		ExcludedDepartments: excluded,
	}, nil
}

// relation compiles the listing source. With partial results enabled, unreachable
// stores are left out of an unfiltered listing instead of failing it.
func (s *TicketService) relation(ctx context.Context, department string) (repository.Relation, []string, error) {
	if department != "" || !s.listing.PartialResults {
		rel, err := s.compiler.Compile(department)
		return rel, nil, err
	}
	if s.resolver.Registry().Len() == 0 {
		return repository.Relation{}, nil, repository.ErrNoDepartmentsConfigured
	}

	handles, err := s.resolver.ResolveAll()
	if err != nil {
		return repository.Relation{}, nil, err
	}
	reachable := make([]persistence.StoreHandle, 0, len(handles))
	var (
		excluded []string
		lastErr  error
	)
	for _, h := range handles {
		probeCtx, cancel := context.WithTimeout(ctx, s.listing.StoreTimeout())
		err := h.Ping(probeCtx)
		cancel()
		if err != nil {
			s.logger.Warn("excluding unreachable department from listing",
				zap.String("department", h.Department().Name),
				zap.String("store", h.Department().Store),
				zap.Error(err))
			excluded = append(excluded, h.Department().Name)
			lastErr = err
			continue
		}
		reachable = append(reachable, h)
	}
	if len(reachable) == 0 {
		return repository.Relation{}, excluded, lastErr
	}
	rel, err := repository.CompileHandles(reachable)
	return rel, excluded, err
}

// GetTicket returns a ticket with its notes, newest first.
func (s *TicketService) GetTicket(ctx context.Context, department string, id int64) (*domain.TicketDetail, error) {
	h, err := s.resolver.Resolve(department)
	if err != nil {
		return nil, s.mapError("get", department, http.StatusNotFound, err)
	}

	ticket, err := s.tickets.FindByID(ctx, h, id)
	s.metrics.RecordStoreOp(h.Department().Store, "find", err)
	if err != nil {
		return nil, s.mapError("get", department, http.StatusNotFound, err)
	}
	if ticket == nil {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"department": department, "id": id})
	}

	notes, err := s.tickets.ListNotes(ctx, h, ticket.ID)
	s.metrics.RecordStoreOp(h.Department().Store, "list_notes", err)
	if err != nil {
		return nil, s.mapError("get", department, http.StatusNotFound, err)
	}
	return &domain.TicketDetail{Department: department, Ticket: *ticket, Notes: notes}, nil
}

// AddNoteAndClose records an admin note and moves the ticket to noted in one
// transaction of the owning store.
func (s *TicketService) AddNoteAndClose(ctx context.Context, department string, id int64, note, adminEmail string) (*domain.Ticket, error) {
	h, err := s.resolver.Resolve(department)
	if err != nil {
		return nil, s.mapError("note", department, http.StatusNotFound, err)
	}

	ticket, err := s.tickets.UpdateWithNote(ctx, h, id, strings.TrimSpace(note), domain.TicketStatusNoted)
	s.metrics.RecordStoreOp(h.Department().Store, "update_with_note", err)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"department": department, "id": id})
		}
		return nil, s.mapError("note", department, http.StatusNotFound, err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketNoted,
		Department: department,
		TicketID:   ticket.ID,
		Actor:      events.Actor{Type: "admin", Email: adminEmail},
		Payload: events.TicketNotedPayload{
			NewStatus:   ticket.Status,
			NotePreview: stringPreview(note, 120),
		},
	})
	return ticket, nil
}

// mapError logs a failure with its store context and converts it to a DomainError.
// unknownStatus is the HTTP status reported for an unregistered department.
func (s *TicketService) mapError(op, department string, unknownStatus int, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.String("department", department), zap.Error(err)}
	var storeErr *persistence.StoreError
	if errors.As(err, &storeErr) {
		fields = append(fields, zap.String("store", storeErr.Store), zap.String("store_op", storeErr.Op))
	}

	switch {
	case errors.Is(err, persistence.ErrUnknownDepartment):
		s.logger.Warn("unknown department", fields...)
		return apperrors.NewUnknownDepartment(department, unknownStatus, err)
	case errors.Is(err, repository.ErrNoDepartmentsConfigured):
		s.logger.Error("no departments configured", fields...)
		return apperrors.NewNoDepartmentsConfigured(err)
	case errors.Is(err, persistence.ErrStoreUnavailable):
		s.logger.Error("department store unavailable", fields...)
		return apperrors.NewStoreUnavailable(department, err)
	default:
		s.logger.Error("ticket operation failed", fields...)
		return apperrors.NewInternalError(err)
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
