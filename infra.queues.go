package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	CreateQueue = "books:creation"
	UpdateQueue = "books:updating"
	DeleteQueue = "books:deletion"
)

var (
	_ Queuer = (*redisQueue)(nil) // ensure redisQueue implements Queuer.
	_ Queuer = (*noopQueue)(nil)  // ensure noopQueue implements Queuer.
)

// BookEvent describes a books collection change which was saved.
type BookEvent struct {
	Book Book      `json:"book"`
	At   time.Time `json:"at"`
}

// Queuer describes a queue of books events.
type Queuer interface {
	Push(ctx context.Context, qid string, event BookEvent) error
	Pop(ctx context.Context, qids ...string) (string, BookEvent, error)
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// redisQueue represents a redis list based queue.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues an event onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, event BookEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, eventBytes).Err()
}

// Pop blocks until an event is available on one of the queues and returns it.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, BookEvent, error) {
	var event BookEvent
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, event, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &event); err != nil {
		return qid, event, err
	}
	qid = infos[0]
	return qid, event, nil
}

// noopQueue drops every pushed event. It is used when redis is disabled.
type noopQueue struct{}

func NewNoopQueue() Queuer {
	return noopQueue{}
}

func (noopQueue) Push(context.Context, string, BookEvent) error {
	return nil
}

// Pop waits for the context to be done.
func (noopQueue) Pop(ctx context.Context, _ ...string) (string, BookEvent, error) {
	<-ctx.Done()
	return "", BookEvent{}, ctx.Err()
}
