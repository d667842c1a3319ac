package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/domain"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// TaskRecord is the stub's view of a submitted bulk job.
type TaskRecord struct {
	TaskID      string    `json:"task_id"`
	Status      string    `json:"status"`
	TicketCount int       `json:"ticket_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TaskRegistry stores bulk-processing job handles so repeated submissions
// can be inspected during development.
type TaskRegistry interface {
	Save(ctx context.Context, record TaskRecord) error
	Get(ctx context.Context, taskID string) (*TaskRecord, error)
}

const taskKeyPrefix = "ticketflow:task:"
const taskTTL = 24 * time.Hour

type redisTaskRegistry struct {
	redis *Redis
}

// NewRedisTaskRegistry stores task records in Redis with a 24h TTL.
func NewRedisTaskRegistry(r *Redis) TaskRegistry {
	return &redisTaskRegistry{redis: r}
}

func (t *redisTaskRegistry) Save(ctx context.Context, record TaskRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return t.redis.Client.Set(ctx, taskKeyPrefix+record.TaskID, payload, taskTTL).Err()
}

func (t *redisTaskRegistry) Get(ctx context.Context, taskID string) (*TaskRecord, error) {
	payload, err := t.redis.Client.Get(ctx, taskKeyPrefix+taskID).Bytes()
	if err != nil {
		return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
	}
	var record TaskRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

type memoryTaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]TaskRecord
}

// NewMemoryTaskRegistry keeps task records in process memory.
func NewMemoryTaskRegistry() TaskRegistry {
	return &memoryTaskRegistry{tasks: map[string]TaskRecord{}}
}

func (t *memoryTaskRegistry) Save(_ context.Context, record TaskRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[record.TaskID] = record
	return nil
}

func (t *memoryTaskRegistry) Get(_ context.Context, taskID string) (*TaskRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	record, ok := t.tasks[taskID]
	if !ok {
		return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
	}
	return &record, nil
}

// NewTaskRegistry picks Redis when reachable and memory otherwise.
func NewTaskRegistry(ctx context.Context, r *Redis, logger *zap.Logger) TaskRegistry {
	if r != nil && r.Ping(ctx) == nil {
		return NewRedisTaskRegistry(r)
	}
	logger.Warn("task registry falling back to in-memory storage")
	return NewMemoryTaskRegistry()
}

// NewTaskRecord builds a record for a freshly submitted batch.
func NewTaskRecord(taskID string, tickets []domain.BulkTicket) TaskRecord {
	return TaskRecord{
		TaskID:      taskID,
		Status:      "processing",
		TicketCount: len(tickets),
		SubmittedAt: time.Now(),
	}
}
