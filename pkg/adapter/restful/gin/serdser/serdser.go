// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the (de)serialization helpers which are
// shared by the resource packages. Requests are bound and validated
// with the gin binding validator and errors are rendered as a JSON
// body with a detail message or a field to messages map.
package serdser

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/log"
)

func Bind(c *gin.Context, req any, b binding.Binding) bool {
	switch err := c.ShouldBindWith(req, b).(type) {
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": err.Error(),
		})
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		if err == nil {
			return true
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

// BindURI binds the path parameters of c into req.
func BindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var nameToErrs map[string][]string
			for _, ferr := range verrs {
				AddErr(&nameToErrs, ferr.Field(), ferr.Error())
			}
			c.JSON(http.StatusBadRequest, nameToErrs)
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return false
	}
	return true
}

func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	if elist, ok := (*errs)[name]; !ok {
		(*errs)[name] = msgs
	} else {
		(*errs)[name] = append(elist, msgs...)
	}
}

func Assert(errs *map[string][]string, ok bool, name string, msgs ...string) bool {
	if ok {
		return true
	}
	AddErr(errs, name, msgs...)
	return false
}

// SerErr renders err. A cerr.Error carries its own status code and
// message. Other errors are logged and hidden behind a generic 500.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"detail": ce.Err.Error(),
		})
		return
	}
	log.Error(c, "request failed",
		slog.String("path", c.FullPath()), log.Err("err", err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": "internal server error",
	})
}
