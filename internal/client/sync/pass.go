package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/tracker/internal/client/api"
	"github.com/iudanet/tracker/internal/client/storage"
	"github.com/iudanet/tracker/internal/models"
)

// pass performs push then pull. The caller holds the in-flight guard.
func (e *Engine) pass(ctx context.Context) (*Result, error) {
	start := e.now()
	e.publishAsync(StatusSyncing, e.pendingCount(ctx))
	e.logger.Info("Starting synchronization")

	result := &Result{}
	err := e.push(ctx, result)
	if err == nil {
		err = e.pull(ctx, result)
	}

	pending := e.pendingCount(ctx)
	status := StatusIdle
	switch {
	case !e.conn.Online():
		status = StatusOffline
	case err != nil:
		status = StatusError
	}
	e.metrics.observePass(status, pending, e.now().Sub(start))

	if err != nil {
		e.logger.Error("Synchronization failed",
			"error", err,
			"pushed", result.Pushed,
			"retried", result.Retried,
			"pending", pending)
	} else {
		e.logger.Info("Synchronization completed",
			"pushed", result.Pushed,
			"rejected", result.Rejected,
			"exhausted", result.Exhausted,
			"pulled", result.Pulled,
			"replaced", result.Replaced,
			"removed", result.Removed,
			"protected", result.Protected,
			"pending", pending)
	}

	e.publishAsync(status, pending)
	return result, err
}

// push replays the queue oldest-first and re-checks it until it is empty.
func (e *Engine) push(ctx context.Context, result *Result) error {
	for {
		var items []*models.QueueItem
		err := e.store.View(ctx, func(tx storage.Tx) error {
			var err error
			items, err = tx.ListQueue()
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to read queue: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		for _, item := range items {
			if err := e.pushItem(ctx, item, result); err != nil {
				return err
			}
		}
	}
}

// pushItem replays one item and settles it in the queue.
// A returned error stops the push phase.
func (e *Engine) pushItem(ctx context.Context, item *models.QueueItem, result *Result) error {
	log := e.logger.With(
		"seq", item.Seq,
		"entity_type", item.EntityType,
		"entity_id", item.EntityID,
		"action", item.Action)

	err := e.replay(ctx, item)
	switch {
	case err == nil:
		if err := e.dequeue(ctx, item.Seq); err != nil {
			return err
		}
		result.Pushed++
		e.metrics.observeItem(outcomePushed)
		log.Debug("Queue item pushed")
		return nil

	case api.IsUnauthorized(err):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)

	case ctx.Err() != nil:
		return ctx.Err()

	case api.IsDefinite(err), errors.Is(err, ErrUnknownAction):
		if err := e.dequeue(ctx, item.Seq); err != nil {
			return err
		}
		result.Rejected++
		e.metrics.observeItem(outcomeRejected)
		log.Warn("Queue item rejected by server, dropped", "error", err)
		return nil
	}

	item.Retries++
	if item.Retries >= e.maxRetries {
		if err := e.dequeue(ctx, item.Seq); err != nil {
			return err
		}
		result.Exhausted++
		e.metrics.observeItem(outcomeExhausted)
		log.Error("Queue item dropped after retries, local change lost", "retries", item.Retries, "error", err)
		if e.loss != nil {
			e.loss.ReportLoss(QueueLoss{Item: *item, Err: err})
		}
		return nil
	}

	updateErr := e.store.Update(ctx, func(tx storage.Tx) error {
		return tx.UpdateQueueItem(item)
	})
	if updateErr != nil {
		return fmt.Errorf("failed to record retry: %w", updateErr)
	}
	result.Retried++
	e.metrics.observeItem(outcomeRetried)
	log.Warn("Queue item push failed, will retry", "retries", item.Retries, "error", err)

	return fmt.Errorf("%w: %w", ErrPushInterrupted, err)
}

// replay calls the remote operation matching the item's action
func (e *Engine) replay(ctx context.Context, item *models.QueueItem) error {
	switch item.Action {
	case models.ActionCreate:
		return e.remote.Create(ctx, item.EntityType, item.EntityID, item.Payload)
	case models.ActionUpdate:
		return e.remote.Update(ctx, item.EntityType, item.EntityID, item.Payload)
	case models.ActionDelete:
		return e.remote.Delete(ctx, item.EntityType, item.EntityID, item.Payload)
	case models.ActionToggle, models.ActionToggleDate:
		return e.remote.Toggle(ctx, item.EntityType, item.EntityID, item.Payload)
	case models.ActionRestore:
		return e.remote.Restore(ctx, item.EntityType, item.EntityID)
	case models.ActionPurge:
		return e.remote.Purge(ctx, item.EntityType, item.EntityID)
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, item.Action)
	}
}

func (e *Engine) dequeue(ctx context.Context, seq uint64) error {
	err := e.store.Update(ctx, func(tx storage.Tx) error {
		return tx.Dequeue(seq)
	})
	if err != nil && !errors.Is(err, storage.ErrQueueItemNotFound) {
		return fmt.Errorf("failed to dequeue item %d: %w", seq, err)
	}
	return nil
}

// pull fetches every collection and reconciles it under server-wins,
// skipping entities with outstanding queue items.
func (e *Engine) pull(ctx context.Context, result *Result) error {
	types := models.EntityTypes()
	remote := make([][]json.RawMessage, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, entityType := range types {
		g.Go(func() error {
			items, err := e.remote.List(gctx, entityType)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", entityType.Collection(), err)
			}
			remote[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if api.IsUnauthorized(err) {
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return err
	}

	err := e.store.Update(ctx, func(tx storage.Tx) error {
		// Множество ожидающих сущностей считается один раз внутри той же транзакции
		pending, err := tx.PendingEntityIDs()
		if err != nil {
			return err
		}
		for i, entityType := range types {
			if err := e.reconcile(tx, entityType, remote[i], pending, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reconcile server state: %w", err)
	}

	if err := e.store.SaveLastSyncTimestamp(ctx, e.now().Unix()); err != nil {
		// Не прерываем синхронизацию из-за ошибки сохранения timestamp
		e.logger.Warn("Failed to save last sync timestamp", "error", err)
	}
	return nil
}

// reconcile applies one collection of server state to the local store
func (e *Engine) reconcile(tx storage.Tx, entityType models.EntityType, items []json.RawMessage, pending storage.PendingSet, result *Result) error {
	seen := make(map[string]struct{}, len(items))

	for _, raw := range items {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || head.ID == "" {
			e.logger.Warn("Skipping malformed server entity", "entity_type", entityType, "error", err)
			continue
		}
		seen[head.ID] = struct{}{}
		result.Pulled++

		if pending.Has(entityType, head.ID) {
			result.Protected++
			continue
		}
		if err := tx.Put(entityType, head.ID, raw); err != nil {
			return err
		}
		result.Replaced++
	}

	var stale []string
	err := tx.ForEach(entityType, func(id string, _ []byte) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		if pending.Has(entityType, id) {
			result.Protected++
			return nil
		}
		stale = append(stale, id)
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range stale {
		if err := tx.Delete(entityType, id); err != nil {
			return err
		}
		result.Removed++
	}
	return nil
}
