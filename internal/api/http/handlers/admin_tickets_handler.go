package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-router/internal/api/dto"
	"github.com/spec-kit/ticket-router/internal/auth"
	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/repository"
	"github.com/spec-kit/ticket-router/internal/service"
	apperrors "github.com/spec-kit/ticket-router/pkg/util/errorutil"
)

// AdminTicketsHandler exposes the admin dashboard endpoints.
type AdminTicketsHandler struct {
	service TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// ListTickets GET /admin/tickets. Accepts DataTables server-side parameters.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	department := strings.TrimSpace(c.Query("department"))
	status := strings.TrimSpace(c.Query("status"))
	search := c.Query("search[value]", c.Query("search"))

	errs := validateListing(status, search)
	if department != "" && !h.knownDepartment(department) {
		errs.add("department", "is not a registered department")
	}
	if len(errs) > 0 {
		return apperrors.NewValidationError("the given data was invalid", errs.details())
	}

	filter := service.ListFilter{
		Department: department,
		Search:     search,
		Offset:     parseInt(c.Query("start"), 0),
		Limit:      parseLength(c.Query("length")),
	}
	if status != "" {
		st := domain.TicketStatus(status)
		filter.Status = &st
	}
	filter.OrderBy, filter.OrderDir = parseOrder(c)

	result, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}

	rows := make([]dto.TicketListRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, dto.TicketListRow{
			ID:            row.ID,
			Department:    row.Department,
			Subject:       row.Subject,
			CustomerName:  row.CustomerName,
			CustomerEmail: row.CustomerEmail,
			CustomerPhone: row.CustomerPhone,
			Status:        row.Status,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return c.JSON(dto.TicketListResponse{
		Draw:                parseInt(c.Query("draw"), 0),
		RecordsTotal:        result.TotalCount,
		RecordsFiltered:     result.FilteredCount,
		Data:                rows,
		ExcludedDepartments: result.ExcludedDepartments,
	})
}

// GetTicket GET /admin/tickets/:department/:id.
func (h *AdminTicketsHandler) GetTicket(c *fiber.Ctx) error {
	department, id, err := ticketParams(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), department, id)
	if err != nil {
		return err
	}

	notes := make([]dto.AdminNoteResponse, 0, len(detail.Notes))
	for _, note := range detail.Notes {
		notes = append(notes, dto.AdminNoteResponse{
			ID:        note.ID,
			Note:      note.Note,
			CreatedAt: note.CreatedAt,
			UpdatedAt: note.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": dto.TicketDetailResponse{
		TicketResponse: ticketResponse(detail.Department, &detail.Ticket),
		Notes:          notes,
	}})
}

// AddNote PUT /admin/tickets/:department/:id.
func (h *AdminTicketsHandler) AddNote(c *fiber.Ctx) error {
	department, id, err := ticketParams(c)
	if err != nil {
		return err
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := validateNote(req.Note); len(errs) > 0 {
		return apperrors.NewValidationError("the given data was invalid", errs.details())
	}

	var adminEmail string
	if principal, ok := auth.PrincipalFromContext(c); ok {
		adminEmail = principal.Email
	}
	ticket, err := h.service.AddNoteAndClose(c.UserContext(), department, id, req.Note, adminEmail)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "ticket status updated successfully",
		"data":    ticketResponse(department, ticket),
	})
}

func (h *AdminTicketsHandler) knownDepartment(name string) bool {
	for _, dept := range h.service.Departments() {
		if dept == name {
			return true
		}
	}
	return false
}

// ticketParams reads the route's department and id. Ids are only unique within a
// department, so both are always required.
func ticketParams(c *fiber.Ctx) (string, int64, error) {
	department, err := urlParam(c, "department")
	if err != nil || department == "" {
		return "", 0, apperrors.NewNotFound("ticket", nil)
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, apperrors.NewNotFound("ticket", map[string]any{"department": department})
	}
	return department, id, nil
}

// urlParam decodes a route parameter; department names contain spaces and "&".
func urlParam(c *fiber.Ctx, key string) (string, error) {
	return url.PathUnescape(c.Params(key))
}

// parseOrder accepts order_by/order_dir or the DataTables order[0][column] index
// resolved through columns[i][data].
func parseOrder(c *fiber.Ctx) (string, repository.SortDirection) {
	column := c.Query("order_by")
	dir := c.Query("order_dir")
	if column == "" {
		if idx := c.Query("order[0][column]"); idx != "" {
			column = c.Query("columns[" + idx + "][data]")
			dir = c.Query("order[0][dir]")
		}
	}
	if strings.EqualFold(dir, string(repository.SortAsc)) {
		return column, repository.SortAsc
	}
	return column, repository.SortDesc
}

// parseLength maps the DataTables length, where -1 means every row.
func parseLength(val string) int {
	if strings.TrimSpace(val) == "-1" {
		return repository.NoLimit
	}
	return parseInt(val, 0)
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
