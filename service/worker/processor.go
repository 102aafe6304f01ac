package worker

import (
	"context"
	"encoding/json"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/mail"
	"github.com/hibiken/asynq"
)

// Queue levels. Notification fan-out rides the low queue so it never starves
// the request path.
const (
	CRITICAL = "critical"
	DEFAULT  = "default"
	LOW      = "low"
)

// Task processor interface
type TaskProcessor interface {
	Start() error
}

// Redis task processor
type RedisTaskProcessor struct {
	// Asynq server
	server *asynq.Server

	// Dependencies
	queries     *db.Queries
	mailService mail.MailService
}

// Constructor method for Redis task processor
func NewRedisTaskProcessor(
	redisOpts asynq.RedisClientOpt,
	queries *db.Queries,
	mailService mail.MailService,
) TaskProcessor {
	server := asynq.NewServer(redisOpts, asynq.Config{
		Queues: map[string]int{
			CRITICAL: 6,
			DEFAULT:  3,
			LOW:      1,
		},
	})

	return &RedisTaskProcessor{
		server:      server,
		queries:     queries,
		mailService: mailService,
	}
}

// Method to start the worker server
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(SendEmailNotification, func(ctx context.Context, task *asynq.Task) error {
		var payload SendEmailNotificationPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return err
		}
		return processor.SendEmailNotification(payload)
	})

	return processor.server.Start(mux)
}
