package domain

// Classification is the predicted category for a ticket.
type Classification struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// PriorityPrediction is the predicted urgency and resolution estimate.
type PriorityPrediction struct {
	Priority                 TicketPriority `json:"priority"`
	Confidence               float64        `json:"confidence"`
	EstimatedResolutionHours float64        `json:"estimated_resolution_hours,omitempty"`
	Reasoning                string         `json:"reasoning,omitempty"`
	Factors                  []string       `json:"factors,omitempty"`
}

// SolutionRecommendation is one ranked fix from the knowledge base.
type SolutionRecommendation struct {
	SolutionID      string   `json:"solution_id,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Steps           []string `json:"steps,omitempty"`
	SimilarityScore float64  `json:"similarity_score"`
	Source          string   `json:"source,omitempty"`
}

// SuggestedSolution is a recommendation mapped for form preview, with the
// similarity re-scored into a whole percentage.
type SuggestedSolution struct {
	Title      string
	Steps      []string
	Similarity int
}

// AnalysisResult is the merged pre-submission analysis for a ticket draft.
// It lives only for the current form session.
type AnalysisResult struct {
	Classification Classification
	Priority       PriorityPrediction
	Solutions      []SuggestedSolution
}

// AnalysisRequest is the payload for the blocking analyze call.
type AnalysisRequest struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	RequesterInfo     *RequesterInfo `json:"requester_info,omitempty"`
	AdditionalContext map[string]any `json:"additional_context,omitempty"`
}

// TicketAnalysis is the full backend response for a submitted ticket.
type TicketAnalysis struct {
	TicketID             string                   `json:"ticket_id"`
	Classification       Classification           `json:"classification"`
	PriorityPrediction   PriorityPrediction       `json:"priority_prediction"`
	RecommendedSolutions []SolutionRecommendation `json:"recommended_solutions"`
	Summary              string                   `json:"summary,omitempty"`
	ActionItems          []string                 `json:"action_items,omitempty"`
	Warnings             []string                 `json:"warnings,omitempty"`
	Tags                 []string                 `json:"tags,omitempty"`
	SuggestedAssignee    string                   `json:"suggested_assignee,omitempty"`
	ProcessingTimeMS     float64                  `json:"processing_time_ms,omitempty"`
}

// SolutionSearchResult is one hit from the knowledge-base search endpoint.
type SolutionSearchResult struct {
	DocID          string  `json:"doc_id,omitempty"`
	SolutionID     string  `json:"solution_id,omitempty"`
	Title          string  `json:"title"`
	ContentSnippet string  `json:"content_snippet,omitempty"`
	Description    string  `json:"description,omitempty"`
	Category       string  `json:"category,omitempty"`
	Score          float64 `json:"score,omitempty"`
	Similarity     float64 `json:"similarity_score,omitempty"`
	Source         string  `json:"source,omitempty"`
}

// BestScore returns whichever score field the backend populated.
func (r SolutionSearchResult) BestScore() float64 {
	if r.Similarity > 0 {
		return r.Similarity
	}
	return r.Score
}
