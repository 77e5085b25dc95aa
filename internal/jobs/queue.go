package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TaskEnrichTitle = "enrich:title"

	QueueDefault = "default"
)

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	Concurrency   int
}

type Queue struct {
	client    taskClient
	inspector taskInspector
	server    *asynq.Server
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

func NewQueue(cfg QueueConfig, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueDefault: 1,
			},
			Logger: logger.Named("asynq").Sugar(),
		},
	)

	return &Queue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		server:    server,
		mux:       asynq.NewServeMux(),
		logger:    logger.Named("queue"),
	}
}

// isTaskConflict checks whether the error indicates a task ID conflict,
// using errors.Is for unwrapped sentinel values and a string fallback.
func isTaskConflict(err error) bool {
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "task ID conflicts") || strings.Contains(msg, "duplicate task")
}

// EnqueueUnique enqueues a task under a deterministic id. It reports false
// without error when a task with that id is still pending, scheduled,
// retrying or running. A completed or archived leftover is deleted and the
// enqueue retried.
func (q *Queue) EnqueueUnique(ctx context.Context, taskType string, payload interface{}, uniqueID string, opts ...asynq.Option) (bool, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}
	opts = append(opts, asynq.TaskID(uniqueID), asynq.Queue(QueueDefault))
	task := asynq.NewTask(taskType, data)

	_, err = q.client.EnqueueContext(ctx, task, opts...)
	if err == nil {
		return true, nil
	}
	if !isTaskConflict(err) {
		return false, fmt.Errorf("enqueue: %w", err)
	}

	info, err := q.inspector.GetTaskInfo(QueueDefault, uniqueID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) {
			// gone between the two calls; one more try
			return q.retryEnqueue(ctx, task, taskType, uniqueID, opts)
		}
		return false, fmt.Errorf("inspect task %s: %w", uniqueID, err)
	}

	switch info.State {
	case asynq.TaskStateCompleted, asynq.TaskStateArchived:
		if err := q.inspector.DeleteTask(QueueDefault, uniqueID); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return false, fmt.Errorf("clear task %s: %w", uniqueID, err)
		}
		q.logger.Debug("cleared finished task", zap.String("task_id", uniqueID), zap.String("state", info.State.String()))
		return q.retryEnqueue(ctx, task, taskType, uniqueID, opts)
	default:
		q.logger.Debug("task already queued",
			zap.String("task_type", taskType),
			zap.String("task_id", uniqueID),
			zap.String("state", info.State.String()),
		)
		return false, nil
	}
}

func (q *Queue) retryEnqueue(ctx context.Context, task *asynq.Task, taskType, uniqueID string, opts []asynq.Option) (bool, error) {
	_, err := q.client.EnqueueContext(ctx, task, opts...)
	if err == nil {
		return true, nil
	}
	// someone else enqueued it in the meantime
	if isTaskConflict(err) {
		q.logger.Debug("task already queued", zap.String("task_type", taskType), zap.String("task_id", uniqueID))
		return false, nil
	}
	return false, fmt.Errorf("enqueue: %w", err)
}

func (q *Queue) RegisterHandler(taskType string, handler asynq.Handler) {
	q.mux.Handle(taskType, handler)
}

// Run processes tasks until the server receives a termination signal.
func (q *Queue) Run() error {
	q.logger.Info("job queue worker starting")
	return q.server.Run(q.mux)
}

func (q *Queue) Close() {
	if err := q.client.Close(); err != nil {
		q.logger.Warn("close asynq client", zap.Error(err))
	}
	if err := q.inspector.Close(); err != nil {
		q.logger.Warn("close asynq inspector", zap.Error(err))
	}
}
