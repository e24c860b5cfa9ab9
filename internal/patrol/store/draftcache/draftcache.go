// Package draftcache keeps dirty rosters in Redis between saves so a
// crashed editing session can pick up where it left off. Entries expire on
// their own; a draft older than the TTL is assumed abandoned.
package draftcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"patrolboard/internal/patrol/models"
	id "patrolboard/pkg/domain"
	"patrolboard/pkg/platform/sentinel"
)

const keyPrefix = "patrolboard:draft:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func draftKey(tournamentID id.TournamentID) string {
	return keyPrefix + tournamentID.String()
}

func (c *Cache) Put(ctx context.Context, tournamentID id.TournamentID, roster *models.Roster) error {
	payload, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := c.client.Set(ctx, draftKey(tournamentID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, error) {
	payload, err := c.client.Get(ctx, draftKey(tournamentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch draft: %w", err)
	}
	var roster models.Roster
	if err := json.Unmarshal(payload, &roster); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &roster, nil
}

func (c *Cache) Delete(ctx context.Context, tournamentID id.TournamentID) error {
	if err := c.client.Del(ctx, draftKey(tournamentID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
