package queue

import (
	"context"
	"testing"
	"time"

	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/domain/task"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testGroup = "pokedex_consumer"

func newTestQueue(t *testing.T) (*RedisQueue, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	q, err := NewRedisQueue(context.Background(), rdb, config.RedisConfig{ConsumerGroup: testGroup})
	if err != nil {
		t.Fatalf("NewRedisQueue: %v", err)
	}
	q.readBlock = 20 * time.Millisecond
	return q, rdb
}

func TestNewRedisQueueReadsMessagesAddedBeforeGroup(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	stream := StreamName(task.SpeciesTaskType)
	if err := rdb.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: map[string]interface{}{"task_type": task.SpeciesTaskType}}).Err(); err != nil {
		t.Fatalf("XAdd: %v", err)
	}

	q, err := NewRedisQueue(ctx, rdb, config.RedisConfig{ConsumerGroup: testGroup})
	if err != nil {
		t.Fatalf("NewRedisQueue: %v", err)
	}
	q.readBlock = 20 * time.Millisecond

	msg, err := q.GetTask(ctx, testGroup, "worker-1", stream)
	if err != nil || msg == nil {
		t.Fatalf("expected the earlier message, got %v, %v", msg, err)
	}
}

func TestNewRedisQueueToleratesExistingGroup(t *testing.T) {
	q, rdb := newTestQueue(t)

	if _, err := NewRedisQueue(context.Background(), rdb, config.RedisConfig{ConsumerGroup: q.groupName}); err != nil {
		t.Fatalf("second NewRedisQueue: %v", err)
	}
}

func TestGetTaskReturnsNilWhenStreamIsEmpty(t *testing.T) {
	q, _ := newTestQueue(t)

	msg, err := q.GetTask(context.Background(), testGroup, "worker-1", StreamName(task.SpeciesTaskType))
	if err != nil || msg != nil {
		t.Fatalf("expected nil message and no error, got %v, %v", msg, err)
	}
}

func TestAddGetAckTask(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)
	stream := StreamName(task.SpeciesTaskType)

	id, err := q.AddTask(ctx, &task.SpeciesTask{ID: 1, Name: "bulbasaur", URL: "https://pokeapi.co/api/v2/pokemon/1/"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	msg, err := q.GetTask(ctx, testGroup, "worker-1", stream)
	if err != nil || msg == nil || msg.ID != id {
		t.Fatalf("expected message %s, got %v, %v", id, msg, err)
	}

	speciesTask, err := task.UnmarshalTask[task.SpeciesTask]([]byte(msg.Values["task_data"].(string)))
	if err != nil || speciesTask.Name != "bulbasaur" {
		t.Fatalf("unexpected task %+v, %v", speciesTask, err)
	}

	if pending, err := q.Pending(ctx, testGroup, stream); err != nil || pending != 1 {
		t.Fatalf("expected 1 pending, got %d, %v", pending, err)
	}

	if err := q.AckTask(ctx, stream, testGroup, msg.ID); err != nil {
		t.Fatalf("AckTask: %v", err)
	}

	if pending, err := q.Pending(ctx, testGroup, stream); err != nil || pending != 0 {
		t.Fatalf("expected nothing pending, got %d, %v", pending, err)
	}
}

func TestAutoClaimTakesOverUnackedMessage(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)
	stream := StreamName(task.SpeciesTaskType)

	id, err := q.AddTask(ctx, &task.SpeciesTask{ID: 4, Name: "charmander"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if _, err := q.GetTask(ctx, testGroup, "crashed-worker", stream); err != nil {
		t.Fatalf("GetTask: %v", err)
	}

	claimed, err := q.AutoClaim(ctx, testGroup, "autoclaimer", stream, 0)
	if err != nil {
		t.Fatalf("AutoClaim: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != id {
		t.Fatalf("expected to claim %s, got %+v", id, claimed)
	}
}
