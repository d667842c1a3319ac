package domain

// DashboardMetrics is the remote metrics payload passed through into Stats.
type DashboardMetrics struct {
	TotalTicketsAnalyzed int     `json:"total_tickets_analyzed"`
	AvgProcessingTimeMS  float64 `json:"avg_processing_time_ms"`
	AccuracyRate         float64 `json:"accuracy_rate,omitempty"`
	KnowledgeBaseSize    int     `json:"knowledge_base_size"`
	ActiveSolutions      int     `json:"active_solutions"`
}

// Stats is the aggregate view derived from the current ticket ledger, plus
// the remote metrics slice when available.
type Stats struct {
	TotalTickets   int
	OpenTickets    int
	HighPriority   int
	ResolvedCount  int
	ResolutionRate int
	Remote         *DashboardMetrics
}

// HealthStatus is the backend health report.
type HealthStatus struct {
	Status    string          `json:"status"`
	Version   string          `json:"version,omitempty"`
	Timestamp string          `json:"timestamp"`
	Services  map[string]bool `json:"services,omitempty"`
}
