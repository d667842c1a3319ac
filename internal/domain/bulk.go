package domain

// RequiredCSVHeaders are the columns a bulk-import file must carry.
// requester_department is accepted but optional.
var RequiredCSVHeaders = []string{"title", "description", "requester_name", "requester_email"}

// BulkTicket is one valid CSV row, ready for batch submission.
type BulkTicket struct {
	TicketID          string         `json:"ticket_id,omitempty"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	RequesterInfo     *RequesterInfo `json:"requester_info,omitempty"`
	AdditionalContext map[string]any `json:"additional_context,omitempty"`
}

// RowError reports validation failures for a single CSV row.
type RowError struct {
	RowIndex int      `json:"row_index"`
	Errors   []string `json:"errors"`
}

// BulkValidationResult is the server's verdict on an uploaded CSV.
type BulkValidationResult struct {
	IsValid        bool         `json:"is_valid"`
	TotalRows      int          `json:"total_rows"`
	ValidRows      int          `json:"valid_rows"`
	InvalidRows    int          `json:"invalid_rows"`
	MissingHeaders []string     `json:"missing_headers"`
	Errors         []RowError   `json:"errors"`
	Tickets        []BulkTicket `json:"tickets"`
}

// ProcessingOptions control what the batch job computes per ticket.
type ProcessingOptions struct {
	IncludeClassification bool `json:"include_classification"`
	IncludePriority       bool `json:"include_priority"`
	IncludeSolutions      bool `json:"include_solutions"`
	MaxConcurrent         int  `json:"max_concurrent,omitempty"`
	SaveResults           bool `json:"save_results"`
}

// DefaultProcessingOptions enables every enrichment, matching the backend
// defaults.
func DefaultProcessingOptions() ProcessingOptions {
	return ProcessingOptions{
		IncludeClassification: true,
		IncludePriority:       true,
		IncludeSolutions:      true,
		MaxConcurrent:         5,
		SaveResults:           true,
	}
}

// ProcessingResult is the asynchronous job handle returned by bulk-process.
// The client does not poll it to completion.
type ProcessingResult struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CSVTemplate is the downloadable bulk-import template.
type CSVTemplate struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
