package canvas

import (
	"context"
	"errors"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
)

// scheduleSave hands a copy of d to the persistence service on a goroutine.
func (c *Controller) scheduleSave(d document.Draft, seq uint64) {
	if c.service == nil {
		return
	}
	c.setStatus(persist.StatusSaving)
	snapshot := d.Clone()
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		err := c.service.Save(c.ctx, c.key, snapshot, seq)
		c.finishSave(seq, err)
	}()
}

// finishSave reconciles a save completion with the save status. Failures
// superseded by a newer successful save change nothing. A stale completion
// only matters when it drops the latest mutation: another writer has moved
// the page past this editor and the edit did not land.
func (c *Controller) finishSave(seq uint64, err error) {
	c.mu.Lock()
	if errors.Is(err, persist.ErrStaleSave) && seq < c.seq {
		c.mu.Unlock()
		return
	}
	if err != nil {
		if seq <= c.savedSeq {
			c.mu.Unlock()
			return
		}
		c.status = persist.StatusError
		c.saveErr = err
		c.mu.Unlock()
		c.logger.Error().Err(err).Uint64("seq", seq).Str("page", c.key.String()).Msg("canvas: save failed")
		c.notify(c.ctx, Notice{Level: LevelError, Message: "Changes could not be saved. They are kept in this editor."})
		c.emit(c.ctx, EventSaveStatus, persist.StatusError)
		return
	}
	if seq > c.savedSeq {
		c.savedSeq = seq
	}
	status := c.status
	if c.savedSeq >= c.seq {
		c.status = persist.StatusSaved
		c.saveErr = nil
		status = c.status
	}
	c.mu.Unlock()
	c.emit(c.ctx, EventSaveStatus, status)
}

func (c *Controller) setStatus(status persist.Status) {
	c.mu.Lock()
	changed := c.status != status
	c.status = status
	c.mu.Unlock()
	if changed {
		c.emit(c.ctx, EventSaveStatus, status)
	}
}

// SaveStatus reports the current save state and the last save error.
func (c *Controller) SaveStatus() (persist.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.saveErr
}

// Wait blocks until every scheduled save has completed.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Flush waits for pending saves and then saves the working draft
// synchronously unless its sequence number is already stored. It retries a
// save that failed in the background.
func (c *Controller) Flush(ctx context.Context) error {
	c.Wait()
	if c.service == nil {
		return nil
	}
	c.mu.Lock()
	seq, saved := c.seq, c.savedSeq
	c.mu.Unlock()
	if saved >= seq && seq > 0 {
		return nil
	}
	if seq == 0 {
		if _, _, ok := c.service.LastApplied(c.key); ok {
			return nil
		}
	}
	c.setStatus(persist.StatusSaving)
	err := c.service.Save(ctx, c.key, c.draft.Clone(), seq)
	c.finishSave(seq, err)
	return err
}
