package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/ticket-router/internal/api/dto"
	"github.com/spec-kit/ticket-router/internal/domain"
)

const (
	maxNameLength    = 255
	maxEmailLength   = 255
	maxPhoneLength   = 20
	maxSubjectLength = 255
	maxSearchLength  = 255
	minNoteLength    = 3
)

// fieldErrors collects messages per request field.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) details() map[string]any {
	if len(f) == 0 {
		return nil
	}
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func validateSubmit(req dto.SubmitTicketRequest) fieldErrors {
	errs := fieldErrors{}
	requiredMax(errs, "customer_name", req.CustomerName, maxNameLength)
	requiredMax(errs, "customer_email", req.CustomerEmail, maxEmailLength)
	if email := strings.TrimSpace(req.CustomerEmail); email != "" && !validEmail(email) {
		errs.add("customer_email", "must be a valid email address")
	}
	if req.CustomerPhone != nil && utf8.RuneCountInString(strings.TrimSpace(*req.CustomerPhone)) > maxPhoneLength {
		errs.add("customer_phone", "may not be greater than 20 characters")
	}
	if strings.TrimSpace(req.Department) == "" {
		errs.add("department", "is required")
	}
	requiredMax(errs, "subject", req.Subject, maxSubjectLength)
	if strings.TrimSpace(req.Message) == "" {
		errs.add("message", "is required")
	}
	return errs
}

func validateNote(note string) fieldErrors {
	errs := fieldErrors{}
	if utf8.RuneCountInString(strings.TrimSpace(note)) < minNoteLength {
		errs.add("note", "must be at least 3 characters")
	}
	return errs
}

func validateListing(status, search string) fieldErrors {
	errs := fieldErrors{}
	if status != "" && !domain.TicketStatus(status).Valid() {
		errs.add("status", "must be one of new, noted, closed")
	}
	if utf8.RuneCountInString(search) > maxSearchLength {
		errs.add("search", "may not be greater than 255 characters")
	}
	return errs
}

func requiredMax(errs fieldErrors, field, value string, max int) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		errs.add(field, "is required")
	case utf8.RuneCountInString(value) > max:
		errs.add(field, "is too long")
	}
}

// validEmail accepts a bare address only, not "Name <addr>".
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
