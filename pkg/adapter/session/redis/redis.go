// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package redis implements the session.Provider interface on the
// Redis keys which are written by the back-office identity service.
// Each session is kept as a JSON document under the "session:" prefix
// and its key expires along with the session.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/session"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key prefix of the session documents.
const DefaultPrefix = "session:"

// Store reads and writes sessions in Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// New instantiates a Store with the DefaultPrefix key prefix.
// An empty prefix argument keeps the default.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, now: time.Now}
}

func notFound(id string) error {
	return fmt.Errorf("session %q: %w", id, model.ErrNotFound)
}

// Session finds the id session. Missing and expired sessions are
// reported by errors wrapping model.ErrNotFound.
func (s *Store) Session(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return nil, notFound(id)
	}
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, notFound(id)
	case err != nil:
		return nil, fmt.Errorf("redis get: %w", err)
	}
	sess := &session.Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if !s.now().Before(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("cleanup expired session: %w", err)
		}
		return nil, notFound(id)
	}
	return sess, nil
}

// Save stores sess until its expiration time. It is used by the
// command line interface for issuing back-office sessions in the
// development environments.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

// Delete removes the id session, if it exists.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}
