// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package actormw provides the middlewares which authenticate the
// caller of a request and keep the resolved model.Actor in the gin
// context. Back-office staff are identified by a session id and the
// drivers by a bearer token.
package actormw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

// SessionHeader is checked when the session cookie is missing.
const SessionHeader = "X-Admin-Session"

const actorKey = "dispatch.actor"

// AdminResolver finds the back-office actor of a session.
type AdminResolver interface {
	ResolveAdmin(ctx context.Context, sessionID string) (model.Actor, error)
}

// DriverVerifier finds the driver actor of a token.
type DriverVerifier interface {
	VerifyDriverToken(tok string) (model.Actor, bool)
}

// Admin authenticates requests by the session id which is taken from
// the cookie named cookie or the SessionHeader header.
func Admin(r AdminResolver, cookie string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookie)
		if err != nil || sid == "" {
			sid = c.GetHeader(SessionHeader)
		}
		a, err := r.ResolveAdmin(c, sid)
		if err != nil {
			serdser.SerErr(c, err)
			c.Abort()
			return
		}
		c.Set(actorKey, a)
		c.Next()
	}
}

// Driver authenticates requests by the token which is taken from the
// cookie named cookie or the Authorization bearer header.
func Driver(v DriverVerifier, cookie string) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := v.VerifyDriverToken(Token(c, cookie))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "driver token is missing or invalid",
			})
			return
		}
		c.Set(actorKey, a)
		c.Next()
	}
}

// Token returns the bearer token of c, preferring the cookie.
func Token(c *gin.Context, cookie string) string {
	if tok, err := c.Cookie(cookie); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	return ""
}

// ErrNoActor indicates a handler which was registered without any
// of the Admin or Driver middlewares.
var ErrNoActor = errors.New("no authenticated actor in context")

// Actor returns the actor which was resolved by a middleware.
func Actor(c *gin.Context) (model.Actor, error) {
	v, ok := c.Get(actorKey)
	if !ok {
		return model.Actor{}, ErrNoActor
	}
	a, ok := v.(model.Actor)
	if !ok {
		return model.Actor{}, ErrNoActor
	}
	return a, nil
}
