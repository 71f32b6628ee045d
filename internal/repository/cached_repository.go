package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/domain"
)

const (
	ticketsSnapshotKey    = "vex:snapshot:tickets"
	usersSnapshotKey      = "vex:snapshot:users"
	snapshotGenerationKey = "vex:snapshot:generation"
)

var errStaleSnapshot = errors.New("snapshot invalidated during fetch")

// CachedSource keeps short-lived snapshots of a Source in redis. Redis
// failures are logged and the wrapped source is used instead.
//
// Every Invalidate bumps a generation, locally and in redis. A fetch that
// started before the bump does not write its result back.
type CachedSource struct {
	next       Source
	client     *redis.Client
	ttl        time.Duration
	logger     *zap.Logger
	generation atomic.Uint64
}

// generationMark is the generation observed when a fetch started.
type generationMark struct {
	local  uint64
	remote int64
}

// NewCachedSource wraps next. A nil client or non-positive ttl disables
// caching.
func NewCachedSource(next Source, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, client: client, ttl: ttl, logger: logger}
}

// cachedTicket keeps the decode diagnostic, which RawTicket does not encode.
type cachedTicket struct {
	Ticket      *domain.RawTicket `json:"ticket"`
	DecodeError string            `json:"decode_error,omitempty"`
}

// FetchAllTickets implements TicketRepository.
func (c *CachedSource) FetchAllTickets(ctx context.Context) ([]*domain.RawTicket, error) {
	var cached []cachedTicket
	if c.load(ctx, ticketsSnapshotKey, &cached) {
		return unwrapTickets(cached), nil
	}
	mark := c.mark(ctx)
	tickets, err := c.next.FetchAllTickets(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, ticketsSnapshotKey, wrapTickets(tickets), mark)
	return tickets, nil
}

// FetchAllUsers implements UserRepository.
func (c *CachedSource) FetchAllUsers(ctx context.Context) ([]*domain.RawUser, error) {
	var cached []*domain.RawUser
	if c.load(ctx, usersSnapshotKey, &cached) {
		return cached, nil
	}
	mark := c.mark(ctx)
	users, err := c.next.FetchAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, usersSnapshotKey, users, mark)
	return users, nil
}

// Invalidate drops both snapshots and bumps the generation.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	c.generation.Add(1)
	if !c.enabled() {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, snapshotGenerationKey)
		pipe.Del(ctx, ticketsSnapshotKey, usersSnapshotKey)
		return nil
	})
	return err
}

// Unwrap returns the wrapped source.
func (c *CachedSource) Unwrap() Source {
	return c.next
}

func (c *CachedSource) enabled() bool {
	return c.client != nil && c.ttl > 0
}

func (c *CachedSource) load(ctx context.Context, key string, dst any) bool {
	if !c.enabled() {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("snapshot cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := decodeSnapshot(data, dst); err != nil {
		c.logger.Warn("snapshot cache entry unreadable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedSource) mark(ctx context.Context) generationMark {
	mark := generationMark{local: c.generation.Load()}
	if c.enabled() {
		mark.remote = c.remoteGeneration(ctx, c.client)
	}
	return mark
}

// fresh reports whether no local Invalidate happened since mark was taken.
func (c *CachedSource) fresh(mark generationMark) bool {
	return c.generation.Load() == mark.local
}

func (c *CachedSource) remoteGeneration(ctx context.Context, cmd redis.Cmdable) int64 {
	n, err := cmd.Get(ctx, snapshotGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Debug("snapshot generation read failed", zap.Error(err))
	}
	return n
}

// store writes value unless the snapshot was invalidated after mark. The
// redis generation is watched so an Invalidate from another process also
// aborts the write.
func (c *CachedSource) store(ctx context.Context, key string, value any, mark generationMark) {
	if !c.enabled() {
		return
	}
	if !c.fresh(mark) {
		c.logger.Debug("snapshot cache write skipped", zap.String("key", key), zap.Error(errStaleSnapshot))
		return
	}
	data, err := encodeSnapshot(value)
	if err != nil {
		c.logger.Warn("snapshot cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		if c.remoteGeneration(ctx, tx) != mark.remote || !c.fresh(mark) {
			return errStaleSnapshot
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, snapshotGenerationKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleSnapshot), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("snapshot cache write skipped", zap.String("key", key), zap.Error(err))
	default:
		c.logger.Warn("snapshot cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func wrapTickets(tickets []*domain.RawTicket) []cachedTicket {
	out := make([]cachedTicket, 0, len(tickets))
	for _, ticket := range tickets {
		entry := cachedTicket{Ticket: ticket}
		if ticket != nil {
			entry.DecodeError = ticket.DecodeError
		}
		out = append(out, entry)
	}
	return out
}

func unwrapTickets(entries []cachedTicket) []*domain.RawTicket {
	out := make([]*domain.RawTicket, 0, len(entries))
	for _, entry := range entries {
		if entry.Ticket != nil {
			entry.Ticket.DecodeError = entry.DecodeError
		}
		out = append(out, entry.Ticket)
	}
	return out
}
