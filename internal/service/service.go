package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"pokedex/catalog/internal/client"
	"pokedex/catalog/internal/domain"
	"pokedex/catalog/internal/domain/task"
	"pokedex/catalog/internal/export"
	"pokedex/catalog/internal/queue"
	"pokedex/catalog/internal/repository"
	"pokedex/catalog/internal/state"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrNotConfigured = errors.New("component not configured")

// maxReadErrors is how many stream read failures in a row a worker accepts
// before the sync is aborted
const maxReadErrors = 5

type SnapshotExporter interface {
	Export(ctx context.Context, species []domain.Species) (*export.Result, error)
}

type Options struct {
	Limit       int
	Workers     int
	GroupName   string
	MinIdleTime time.Duration
}

type Service struct {
	client       client.PokeAPIClient
	repository   repository.SpeciesRepository
	queue        queue.Queue
	stateManager state.StateManager
	exporter     SnapshotExporter
	options      Options
	now          func() time.Time

	readRetryDelay time.Duration
}

// NewService builds a service. Only the client is required: list and
// describe work without storage, sync and export report ErrNotConfigured.
func NewService(
	client client.PokeAPIClient,
	repository repository.SpeciesRepository,
	queue queue.Queue,
	stateManager state.StateManager,
	exporter SnapshotExporter,
	options Options,
) *Service {
	if options.Workers <= 0 {
		options.Workers = 1
	}
	if options.MinIdleTime <= 0 {
		options.MinIdleTime = time.Minute
	}
	return &Service{
		client:       client,
		repository:   repository,
		queue:        queue,
		stateManager: stateManager,
		exporter:     exporter,
		options:      options,
		now:          time.Now,

		readRetryDelay: time.Second,
	}
}

type SyncResult struct {
	RunID    string `json:"runId"`
	Catalog  int    `json:"catalog"`
	Enqueued int    `json:"enqueued"`
	Saved    int64  `json:"saved"`
	Failed   int64  `json:"failed"`
}

func (s *Service) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	entries, err := s.client.FetchCatalog(ctx, s.options.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	return entries, nil
}

func (s *Service) Describe(ctx context.Context, id int) (string, bool, error) {
	description, found, err := s.client.FetchDetail(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch species %d: %w", id, err)
	}
	return description, found, nil
}

// Entry looks a species up in the catalog. It returns nil when the id is
// beyond the configured limit.
func (s *Service) Entry(ctx context.Context, id int) (*domain.CatalogEntry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	entry, found := lo.Find(entries, func(e domain.CatalogEntry) bool { return e.ID() == id })
	if !found {
		return nil, nil
	}
	return &entry, nil
}

// Stored returns a species saved by an earlier sync
func (s *Service) Stored(ctx context.Context, id int) (*domain.Species, error) {
	if s.repository == nil {
		return nil, fmt.Errorf("stored: %w", ErrNotConfigured)
	}
	return s.repository.GetSpecies(ctx, id)
}

// Sync enqueues every catalog entry not enqueued by a previous run, then
// works the species stream until it is drained
func (s *Service) Sync(ctx context.Context) (*SyncResult, error) {
	if s.queue == nil || s.repository == nil || s.stateManager == nil {
		return nil, fmt.Errorf("sync: %w", ErrNotConfigured)
	}

	result := &SyncResult{RunID: uuid.NewString()}

	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	result.Catalog = len(entries)

	synced, err := s.stateManager.GetSyncedCount(ctx)
	if err != nil {
		return nil, err
	}
	synced = min(synced, len(entries))
	if synced > 0 {
		log.Infof("🔄 Continuing after %d already enqueued entries", synced)
	}

	for _, entry := range entries[synced:] {
		_, err := s.queue.AddTask(ctx, &task.SpeciesTask{
			ID:   entry.ID(),
			Name: entry.Name,
			URL:  entry.ResourceURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue %s: %w", entry.Name, err)
		}
		result.Enqueued++
	}

	if err := s.stateManager.SetSyncedCount(ctx, len(entries)); err != nil {
		return nil, err
	}

	log.Infof("🚀 Run %s: enqueued %d of %d catalog entries", result.RunID, result.Enqueued, result.Catalog)

	if err := s.runWorkers(ctx, result); err != nil {
		return nil, err
	}

	log.Infof("✅ Run %s finished: %d saved, %d failed", result.RunID, result.Saved, result.Failed)
	return result, nil
}

func (s *Service) runWorkers(ctx context.Context, result *SyncResult) error {
	streamName := queue.StreamName(task.SpeciesTaskType)

	var saved, failed atomic.Int64

	handle := func(ctx context.Context, msg *redis.XMessage) {
		if err := s.processMessage(ctx, streamName, msg); err != nil {
			failed.Add(1)
			log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
			return
		}
		saved.Add(1)
	}

	claimer := fmt.Sprintf("autoclaimer-%s", result.RunID)
	reclaim := func(ctx context.Context) error {
		for {
			claimed, err := s.queue.AutoClaim(ctx, s.options.GroupName, claimer, streamName, s.options.MinIdleTime)
			if err != nil {
				return err
			}
			if len(claimed) == 0 {
				return nil
			}
			log.Infof("🔄 Auto-claimed %d stale messages from %s", len(claimed), streamName)
			for i := range claimed {
				handle(ctx, &claimed[i])
			}
		}
	}

	// Messages a crashed run left unacked are no longer counted as new work,
	// so they are picked up before reading the stream.
	if err := reclaim(ctx); err != nil {
		log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
	}

	workersCtx, stopClaimer := context.WithCancel(ctx)
	defer stopClaimer()

	g, gctx := errgroup.WithContext(workersCtx)

	g.Go(func() error {
		ticker := time.NewTicker(s.options.MinIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := reclaim(gctx); err != nil && gctx.Err() == nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
				}
			}
		}
	})

	workers, wctx := errgroup.WithContext(gctx)
	for i := 1; i <= s.options.Workers; i++ {
		consumer := fmt.Sprintf("worker-%s-%d", result.RunID, i)
		workers.Go(func() error {
			return s.work(wctx, consumer, streamName, handle)
		})
	}

	g.Go(func() error {
		defer stopClaimer()
		return workers.Wait()
	})

	err := g.Wait()
	result.Saved = saved.Load()
	result.Failed = failed.Load()
	return err
}

// work reads the stream until it is drained for the whole group: nothing
// new to read and no message still pending on any consumer.
func (s *Service) work(ctx context.Context, consumer, streamName string, handle func(context.Context, *redis.XMessage)) error {
	errorsInRow := 0
	backoff := func(err error) error {
		errorsInRow++
		if errorsInRow >= maxReadErrors {
			return fmt.Errorf("consumer %s giving up on %s: %w", consumer, streamName, err)
		}
		log.Errorf("❌ Failed to read %s: %v", streamName, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.readRetryDelay):
			return nil
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := s.queue.GetTask(ctx, s.options.GroupName, consumer, streamName)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := backoff(err); err != nil {
				return err
			}
			continue
		}

		if msg != nil {
			errorsInRow = 0
			handle(ctx, msg)
			continue
		}

		pending, err := s.queue.Pending(ctx, s.options.GroupName, streamName)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := backoff(err); err != nil {
				return err
			}
			continue
		}
		errorsInRow = 0
		if pending == 0 {
			log.Debugf("🛑 Consumer %s stopping, %s is drained", consumer, streamName)
			return nil
		}
	}
}

// processMessage stores the species for one task. The message is acked
// whether or not the fetch succeeded: failures are reported, not retried.
func (s *Service) processMessage(ctx context.Context, streamName string, msg *redis.XMessage) error {
	defer func() {
		if err := s.queue.AckTask(ctx, streamName, s.options.GroupName, msg.ID); err != nil {
			log.Errorf("❌ Failed to ack message %s: %v", msg.ID, err)
		}
	}()

	taskType, ok := msg.Values["task_type"].(string)
	if !ok || taskType != task.SpeciesTaskType {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	speciesTask, err := task.UnmarshalTask[task.SpeciesTask]([]byte(taskData))
	if err != nil {
		return fmt.Errorf("failed to unmarshal species task: %w", err)
	}

	description, found, err := s.client.FetchDetail(ctx, speciesTask.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch species %d (%s): %w", speciesTask.ID, speciesTask.Name, err)
	}

	species := &domain.Species{
		ID:             speciesTask.ID,
		Name:           speciesTask.Name,
		ImageURL:       domain.DeriveImageURL(speciesTask.ID),
		Description:    description,
		HasDescription: found,
		SyncedAt:       s.now().UTC(),
	}
	if err := s.repository.SaveSpecies(ctx, species); err != nil {
		return err
	}

	log.Debugf("Saved species %d (%s)", species.ID, species.Name)
	return nil
}

func (s *Service) Export(ctx context.Context) (*export.Result, error) {
	if s.repository == nil || s.exporter == nil {
		return nil, fmt.Errorf("export: %w", ErrNotConfigured)
	}

	species, err := s.repository.ListSpecies(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.exporter.Export(ctx, species)
	if err != nil {
		return nil, fmt.Errorf("failed to export %d species: %w", len(species), err)
	}
	return result, nil
}
