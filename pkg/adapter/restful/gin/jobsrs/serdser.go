// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsrs

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/jobsuc"
)

type jobURI struct {
	JobID string `uri:"jid" binding:"required,uuid"`
}

func dserJobID(c *gin.Context) (uuid.UUID, bool) {
	req := &jobURI{}
	if !serdser.BindURI(c, req) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.JobID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"jid": []string{"Path param jid is not UUID."},
		})
		return uuid.Nil, false
	}
	return id, true
}

type createJobReq struct {
	ClientID       uuid.UUID  `json:"client_id"`
	GuestName      string     `json:"guest_name" binding:"required"`
	GuestContact   string     `json:"guest_contact"`
	PickupLocation string     `json:"pickup_location" binding:"required"`
	DropLocation   string     `json:"drop_location" binding:"required"`
	Flight         string     `json:"flight"`
	PickupTime     time.Time  `json:"pickup_time" binding:"required"`
	Adults         int        `json:"adults" binding:"required,min=1"`
	Category       string     `json:"category"`
	VehicleModel   string     `json:"vehicle_model"`
	SupplierID     *uuid.UUID `json:"supplier_id"`
	DriverID       *uuid.UUID `json:"driver_id"`
	Price          float64    `json:"price" binding:"min=0"`
	TaxAmount      float64    `json:"tax_amount" binding:"min=0"`
	TotalAmount    float64    `json:"total_amount" binding:"min=0"`
}

func (rs *resource) DserCreateJobReq(c *gin.Context) *jobsuc.Draft {
	req := &createJobReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return nil
	}
	return &jobsuc.Draft{
		ClientID:       req.ClientID,
		GuestName:      req.GuestName,
		GuestContact:   req.GuestContact,
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		Flight:         req.Flight,
		PickupTime:     req.PickupTime,
		Adults:         req.Adults,
		Category:       req.Category,
		VehicleModel:   req.VehicleModel,
		SupplierID:     req.SupplierID,
		DriverID:       req.DriverID,
		Price:          req.Price,
		TaxAmount:      req.TaxAmount,
		TotalAmount:    req.TotalAmount,
	}
}

type assignReq struct {
	SupplierID *uuid.UUID `json:"supplier_id"`
	DriverID   *uuid.UUID `json:"driver_id"`
}

type updateJobReq struct {
	ClientID       *uuid.UUID `json:"client_id"`
	GuestName      *string    `json:"guest_name"`
	GuestContact   *string    `json:"guest_contact"`
	PickupLocation *string    `json:"pickup_location"`
	DropLocation   *string    `json:"drop_location"`
	Flight         *string    `json:"flight"`
	PickupTime     *time.Time `json:"pickup_time"`
	Adults         *int       `json:"adults" binding:"omitempty,min=1"`
	Category       *string    `json:"category"`
	VehicleModel   *string    `json:"vehicle_model"`
	Assign         *assignReq `json:"assign"`
	Price          *float64   `json:"price" binding:"omitempty,min=0"`
	TaxAmount      *float64   `json:"tax_amount" binding:"omitempty,min=0"`
	TotalAmount    *float64   `json:"total_amount" binding:"omitempty,min=0"`
}

func (rs *resource) DserUpdateJobReq(c *gin.Context) *jobsuc.Patch {
	req := &updateJobReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return nil
	}
	p := &jobsuc.Patch{
		ClientID:       req.ClientID,
		GuestName:      req.GuestName,
		GuestContact:   req.GuestContact,
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		Flight:         req.Flight,
		PickupTime:     req.PickupTime,
		Adults:         req.Adults,
		Category:       req.Category,
		VehicleModel:   req.VehicleModel,
		Price:          req.Price,
		TaxAmount:      req.TaxAmount,
		TotalAmount:    req.TotalAmount,
	}
	if req.Assign != nil {
		p.Assign = &jobsuc.Assign{
			SupplierID: req.Assign.SupplierID,
			DriverID:   req.Assign.DriverID,
		}
	}
	return p
}

type listJobsReq struct {
	Status     string `form:"status" binding:"omitempty,jobstatus"`
	ClientID   string `form:"client_id" binding:"omitempty,uuid"`
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
	DriverID   string `form:"driver_id" binding:"omitempty,uuid"`
	Limit      int    `form:"limit" binding:"omitempty,min=1"`
	Offset     int    `form:"offset" binding:"omitempty,min=0"`
}

func (rs *resource) DserListJobsReq(c *gin.Context) *model.JobFilter {
	req := &listJobsReq{}
	if !serdser.Bind(c, req, binding.Query) {
		return nil
	}
	var errs map[string][]string
	f := &model.JobFilter{Limit: req.Limit, Offset: req.Offset}
	if req.Status != "" {
		s, err := model.ParseJobStatus(req.Status)
		if serdser.Assert(&errs, err == nil, "status", "Unknown status.") {
			f.Status = &s
		}
	}
	for _, p := range []struct {
		raw  string
		dst  **uuid.UUID
		name string
	}{
		{req.ClientID, &f.ClientID, "client_id"},
		{req.SupplierID, &f.SupplierID, "supplier_id"},
		{req.DriverID, &f.DriverID, "driver_id"},
	} {
		if p.raw == "" {
			continue
		}
		id, err := uuid.Parse(p.raw)
		if serdser.Assert(&errs, err == nil, p.name, "Not a UUID.") {
			*p.dst = &id
		}
	}
	if errs != nil {
		c.JSON(http.StatusBadRequest, errs)
		return nil
	}
	return f
}

type rawTransitionReq struct {
	Status        string `json:"status" binding:"required,jobstatus"`
	Notes         string `json:"notes"`
	FailureReason string `json:"failure_reason"`
}

type transitionReq struct {
	Status        model.JobStatus
	Notes         string
	FailureReason string
}

func (r *rawTransitionReq) parse(c *gin.Context) *transitionReq {
	s, err := model.ParseJobStatus(r.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": []string{"Unknown status."},
		})
		return nil
	}
	return &transitionReq{
		Status: s, Notes: r.Notes, FailureReason: r.FailureReason,
	}
}

func (rs *resource) DserTransitionReq(c *gin.Context) *transitionReq {
	req := &rawTransitionReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return nil
	}
	return req.parse(c)
}

type rawBulkTransitionReq struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
	rawTransitionReq
}

type bulkTransitionReq struct {
	IDs []uuid.UUID
	transitionReq
}

func (rs *resource) DserBulkTransitionReq(c *gin.Context) *bulkTransitionReq {
	req := &rawBulkTransitionReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return nil
	}
	tr := req.rawTransitionReq.parse(c)
	if tr == nil {
		return nil
	}
	return &bulkTransitionReq{IDs: req.IDs, transitionReq: *tr}
}

type skipResp struct {
	JobID  uuid.UUID `json:"job_id"`
	Detail string    `json:"detail"`
}

type bulkResultResp struct {
	Updated []model.Job `json:"updated"`
	Skipped []skipResp  `json:"skipped"`
}

// SerBulkResult converts res to its response body. The skip reasons
// are rendered like the error bodies, so internal errors stay hidden.
func SerBulkResult(res *jobsuc.BulkResult) *bulkResultResp {
	resp := &bulkResultResp{
		Updated: res.Updated,
		Skipped: make([]skipResp, 0, len(res.Skipped)),
	}
	if resp.Updated == nil {
		resp.Updated = []model.Job{}
	}
	for _, s := range res.Skipped {
		detail := "internal server error"
		var ce *cerr.Error
		if errors.As(s.Err, &ce) {
			detail = ce.Err.Error()
		}
		resp.Skipped = append(resp.Skipped, skipResp{
			JobID: s.JobID, Detail: detail,
		})
	}
	return resp
}
