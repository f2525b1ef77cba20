package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-router/internal/api/dto"
	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/service"
	apperrors "github.com/spec-kit/ticket-router/pkg/util/errorutil"
)

// TicketService is the part of service.TicketService the handlers use.
type TicketService interface {
	Departments() []string
	SubmitTicket(ctx context.Context, input service.SubmitTicketInput) (*domain.Ticket, error)
	ListTickets(ctx context.Context, filter service.ListFilter) (*service.ListResult, error)
	GetTicket(ctx context.Context, department string, id int64) (*domain.TicketDetail, error)
	AddNoteAndClose(ctx context.Context, department string, id int64, note, adminEmail string) (*domain.Ticket, error)
}

// TicketsHandler manages the public ticket endpoints.
type TicketsHandler struct {
	service TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Departments GET /departments.
func (h *TicketsHandler) Departments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.Departments()})
}

// SubmitTicket POST /tickets.
func (h *TicketsHandler) SubmitTicket(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := validateSubmit(req); len(errs) > 0 {
		return apperrors.NewValidationError("the given data was invalid", errs.details())
	}

	ticket, err := h.service.SubmitTicket(c.UserContext(), service.SubmitTicketInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Department:    req.Department,
		Subject:       req.Subject,
		Message:       req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "ticket submitted successfully",
		"data":    ticketResponse(req.Department, ticket),
	})
}

func ticketResponse(department string, ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:            ticket.ID,
		Department:    department,
		CustomerName:  ticket.CustomerName,
		CustomerEmail: ticket.CustomerEmail,
		CustomerPhone: ticket.CustomerPhone,
		Subject:       ticket.Subject,
		Message:       ticket.Message,
		Status:        ticket.Status,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}
