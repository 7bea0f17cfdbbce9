package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const popRetryDelay = time.Second

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// auditConsumer records every books event it receives into the logs.
type auditConsumer struct {
	logger *zap.Logger
	queue  Queuer
}

func NewAuditConsumer(logger *zap.Logger, q Queuer) Consumer {
	return &auditConsumer{logger, q}
}

func (ac *auditConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, event, err := ac.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			ac.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			ac.logger.Error("consumer: error on queue pop call", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(popRetryDelay):
			}
			continue
		}

		var action string
		switch qid {
		case CreateQueue:
			action = "created"
		case UpdateQueue:
			action = "updated"
		case DeleteQueue:
			action = "deleted"
		default:
			ac.logger.Warn("consumer: received event on unknow queue id", zap.String("qid", qid), zap.Any("book", event.Book))
			continue
		}

		ac.logger.Info("consumer: book "+action,
			zap.Int64("book.id", event.Book.ID),
			zap.String("book.name", event.Book.Name),
			zap.String("book.author", event.Book.Author),
			zap.Time("event.at", event.At),
		)
	}
}
