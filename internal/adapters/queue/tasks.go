package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"guestbook/internal/domain"
)

// Task type names.
const (
	TypeLoginCodeEmail        = "email:login_code"
	TypeWelcomeEmail          = "email:welcome"
	TypeRSVPConfirmationEmail = "email:rsvp_confirmation"
	TypeInvitationEmail       = "email:invitation"
	TypeDeleteObject          = "storage:delete_object"
)

// Queue names and their worker priorities.
const (
	QueueEmails  = "emails"
	QueueDefault = "default"
)

// Queues is the weighted queue set the worker serves.
var Queues = map[string]int{
	QueueEmails:  6,
	QueueDefault: 3,
}

type deleteObjectPayload struct {
	Key string `json:"key"`
}

// enqueuer is the part of *asynq.Client the job queue uses.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type jobQueue struct {
	client enqueuer
}

// NewJobQueue returns a domain.JobQueue that enqueues asynq tasks.
func NewJobQueue(client enqueuer) domain.JobQueue {
	return &jobQueue{client: client}
}

func (q *jobQueue) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	if _, err := q.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

func emailOpts() []asynq.Option {
	return []asynq.Option{asynq.Queue(QueueEmails), asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}
}

func (q *jobQueue) EnqueueLoginCode(ctx context.Context, data *domain.LoginCodeEmailData) error {
	opts := append(emailOpts(), asynq.MaxRetry(2))
	if data.ExpiresInMinutes > 0 {
		// No point delivering a code after it expired.
		opts = append(opts, asynq.Deadline(time.Now().Add(time.Duration(data.ExpiresInMinutes)*time.Minute)))
	}
	return q.enqueue(ctx, TypeLoginCodeEmail, data, opts...)
}

func (q *jobQueue) EnqueueWelcome(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	return q.enqueue(ctx, TypeWelcomeEmail, data, emailOpts()...)
}

func (q *jobQueue) EnqueueRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	return q.enqueue(ctx, TypeRSVPConfirmationEmail, data, emailOpts()...)
}

func (q *jobQueue) EnqueueInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	return q.enqueue(ctx, TypeInvitationEmail, data, emailOpts()...)
}

func (q *jobQueue) EnqueueObjectDeletion(ctx context.Context, key string) error {
	return q.enqueue(ctx, TypeDeleteObject, deleteObjectPayload{Key: key},
		asynq.Queue(QueueDefault), asynq.MaxRetry(10), asynq.Timeout(time.Minute))
}
