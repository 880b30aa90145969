// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package companiesrs realizes the companies resource of the
// back-office namespace.
package companiesrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/actormw"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/companiesuc"
)

type resource struct {
	companies *companiesuc.UseCase
}

// Register instantiates a resource adapting the companies use case
// instance with the relevant REST APIs including:
//  1. POST request to companies in order to add a company, and
//  2. GET request to companies, optionally filtered by kind.
func Register(r *gin.RouterGroup, companies *companiesuc.UseCase) {
	rs := &resource{companies: companies}
	r.POST("companies", rs.CreateCompany)
	r.GET("companies", rs.ListCompanies)
}

type createCompanyReq struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind" binding:"required,companykind"`
}

type listCompaniesReq struct {
	Kind string `form:"kind" binding:"omitempty,companykind"`
}

func (rs *resource) CreateCompany(c *gin.Context) {
	a, err := actormw.Actor(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	req := &createCompanyReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return
	}
	kind, err := model.ParseCompanyKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": []string{err.Error()}})
		return
	}
	co, err := rs.companies.Create(c, a, req.Name, kind)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, co)
}

func (rs *resource) ListCompanies(c *gin.Context) {
	req := &listCompaniesReq{}
	if !serdser.Bind(c, req, binding.Query) {
		return
	}
	var kind *model.CompanyKind
	if req.Kind != "" {
		k, err := model.ParseCompanyKind(req.Kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": []string{err.Error()}})
			return
		}
		kind = &k
	}
	cs, err := rs.companies.List(c, kind)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	if cs == nil {
		cs = []model.Company{}
	}
	c.JSON(http.StatusOK, gin.H{"companies": cs})
}
