package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/persistence"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// BulkHandler implements the bulk-import contract: validate, process,
// template.
type BulkHandler struct {
	tasks  persistence.TaskRegistry
	logger *zap.Logger
}

// NewBulkHandler constructs the handler.
func NewBulkHandler(tasks persistence.TaskRegistry, logger *zap.Logger) *BulkHandler {
	return &BulkHandler{tasks: tasks, logger: logger}
}

// Validate POST /tickets/bulk-validate.
func (h *BulkHandler) Validate(c *fiber.Ctx) error {
	var req dto.BulkValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result := ValidateCSV(req.CSVContent, req.HasHeaders, parseDelimiter(req.Delimiter))
	return c.JSON(result)
}

// Process POST /tickets/bulk-process.
func (h *BulkHandler) Process(c *fiber.Ctx) error {
	var req dto.BulkProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Tickets) == 0 {
		return apperrors.NewValidationError("tickets must contain at least one item", nil)
	}

	taskID := "bulk_" + time.Now().UTC().Format("20060102_150405")
	record := persistence.NewTaskRecord(taskID, req.Tickets)
	if err := h.tasks.Save(c.Context(), record); err != nil {
		h.logger.Warn("failed to persist task record", zap.Error(err))
	}

	return c.JSON(domain.ProcessingResult{
		TaskID:  taskID,
		Status:  "processing",
		Message: fmt.Sprintf("Started processing %d tickets", len(req.Tickets)),
	})
}

// TaskStatus GET /tickets/bulk-tasks/:id. Stub extension for inspecting
// submitted jobs; the client core deliberately never polls it.
func (h *BulkHandler) TaskStatus(c *fiber.Ctx) error {
	record, err := h.tasks.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(record)
}

// Template GET /tickets/bulk-template.
func (h *BulkHandler) Template(c *fiber.Ctx) error {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"title", "description", "requester_name", "requester_email", "requester_department"})
	_ = writer.Write([]string{
		"Cannot connect to corporate WiFi",
		"User reports WiFi authentication failure on office network.",
		"Jane Doe", "jane@example.com", "Engineering",
	})
	_ = writer.Write([]string{
		"Outlook crashes when opening attachments",
		"Outlook app closes unexpectedly whenever user opens PDF attachments.",
		"John Smith", "john@example.com", "Finance",
	})
	writer.Flush()

	return c.JSON(domain.CSVTemplate{
		Filename: "ticketflow_bulk_template.csv",
		Content:  buf.String(),
	})
}

// parseDelimiter decodes the requested delimiter, defaulting to a comma.
// Multi-byte delimiters are decoded as a single rune.
func parseDelimiter(s string) rune {
	if s == "" || s == "auto" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// ValidateCSV parses CSV content and reports row-level errors. Parsing is
// deterministic: the same content always yields identical errors and
// tickets.
func ValidateCSV(content string, hasHeaders bool, delimiter rune) domain.BulkValidationResult {
	required := domain.RequiredCSVHeaders

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil || len(rows) == 0 {
		result := domain.BulkValidationResult{
			MissingHeaders: required,
			Errors:         []domain.RowError{{RowIndex: 0, Errors: []string{"Empty CSV content"}}},
			Tickets:        []domain.BulkTicket{},
		}
		if err != nil {
			result.Errors = []domain.RowError{{RowIndex: 0, Errors: []string{"Malformed CSV: " + err.Error()}}}
			result.MissingHeaders = []string{}
		}
		return result
	}

	var header []string
	dataStart := 0
	if hasHeaders {
		header = rows[0]
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
		dataStart = 1
	} else {
		// without headers, assume the required column order
		header = append(append([]string{}, required...), "requester_department", "additional_context_json")
	}

	missing := []string{}
	for _, req := range required {
		if columnIndex(header, req) == -1 {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 && hasHeaders {
		return domain.BulkValidationResult{
			MissingHeaders: missing,
			Errors: []domain.RowError{{
				RowIndex: 0,
				Errors:   []string{"Missing headers: " + strings.Join(missing, ", ")},
			}},
			Tickets: []domain.BulkTicket{},
		}
	}

	idxTitle := columnIndex(header, "title")
	idxDesc := columnIndex(header, "description")
	idxName := columnIndex(header, "requester_name")
	idxEmail := columnIndex(header, "requester_email")
	idxDept := columnIndex(header, "requester_department")
	idxCtx := columnIndex(header, "additional_context_json")

	result := domain.BulkValidationResult{
		MissingHeaders: missing,
		Errors:         []domain.RowError{},
		Tickets:        []domain.BulkTicket{},
	}

	for i, row := range rows[dataStart:] {
		result.TotalRows++
		rowIndex := i + 1

		title := cell(row, idxTitle)
		description := cell(row, idxDesc)
		name := cell(row, idxName)
		email := cell(row, idxEmail)
		department := cell(row, idxDept)
		contextJSON := cell(row, idxCtx)

		var rowErrors []string
		if title == "" {
			rowErrors = append(rowErrors, "title is required")
		}
		if len(description) < 10 {
			rowErrors = append(rowErrors, "description must be at least 10 characters")
		}
		if name == "" {
			rowErrors = append(rowErrors, "requester_name is required")
		}
		if email == "" {
			rowErrors = append(rowErrors, "requester_email is required")
		} else if !strings.Contains(email, "@") {
			rowErrors = append(rowErrors, "requester_email must be a valid email address")
		}
		var additionalContext map[string]any
		if contextJSON != "" {
			if err := json.Unmarshal([]byte(contextJSON), &additionalContext); err != nil {
				rowErrors = append(rowErrors, "additional_context_json must be valid JSON")
			}
		}

		if len(rowErrors) > 0 {
			result.InvalidRows++
			result.Errors = append(result.Errors, domain.RowError{RowIndex: rowIndex, Errors: rowErrors})
			continue
		}

		result.ValidRows++
		result.Tickets = append(result.Tickets, domain.BulkTicket{
			Title:       title,
			Description: description,
			RequesterInfo: &domain.RequesterInfo{
				Name:       name,
				Email:      email,
				Department: department,
			},
			AdditionalContext: additionalContext,
		})
	}

	result.IsValid = result.InvalidRows == 0 && result.ValidRows > 0 && len(missing) == 0
	return result
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
