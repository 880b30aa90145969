// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine construction and provides
// the middlewares which are shared by all resources. Requests and
// recovered panics are logged with slog through the ginslog module.
package gin

import (
	"log/slog"
	"time"

	"github.com/FabienMht/ginslog/logger"
	"github.com/FabienMht/ginslog/recovery"
	"github.com/gin-gonic/gin"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// Logger logs each request with l, skipping the skip paths which are
// polled frequently (e.g., health and metrics endpoints).
func Logger(l *slog.Logger, skip ...string) HandlerFunc {
	return logger.New(l, logger.WithBlacklistPath(skip))
}

func Recovery(l *slog.Logger) HandlerFunc {
	return recovery.New(l)
}

// RequestObserver records the duration of the served requests.
type RequestObserver interface {
	ObserveRequest(method, route string, code int, d time.Duration)
}

// Metrics measures each request and reports it to o by its matched
// route pattern.
func Metrics(o RequestObserver) HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		o.ObserveRequest(
			c.Request.Method, c.FullPath(), c.Writer.Status(),
			time.Since(start),
		)
	}
}
