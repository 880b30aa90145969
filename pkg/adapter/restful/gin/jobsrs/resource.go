// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jobsrs realizes the jobs resource, allowing the jobs REST
// APIs of the back-office and driver namespaces to be accepted and
// delegated to the jobs use cases respectively.
package jobsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/actormw"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/jobsuc"
)

type resource struct {
	jobs *jobsuc.UseCase
}

// RegisterAdmin instantiates a resource adapting the jobs use case
// instance with the back-office REST APIs including:
//  1. POST and GET requests to jobs for creating and listing jobs,
//  2. GET, PATCH, and DELETE requests to jobs/:jid,
//  3. GET request to jobs/:jid/logs for reading the job history,
//  4. POST request to jobs/:jid/transitions for moving one job, and
//  5. POST request to jobs/transitions for moving several jobs.
//
// The r router group must authenticate the admin actors.
func RegisterAdmin(r *gin.RouterGroup, jobs *jobsuc.UseCase) {
	rs := &resource{jobs: jobs}
	r.POST("jobs", rs.CreateJob)
	r.GET("jobs", rs.ListJobs)
	r.GET("jobs/:jid", rs.GetJob)
	r.PATCH("jobs/:jid", rs.UpdateJob)
	r.DELETE("jobs/:jid", rs.DeleteJob)
	r.GET("jobs/:jid/logs", rs.JobLogs)
	r.POST("jobs/:jid/transitions", rs.TransitionJob)
	r.POST("jobs/transitions", rs.BulkTransition)
}

// RegisterDriver registers the read and transition APIs of the jobs
// which are in custody of the driver actor. The r router group must
// authenticate the driver actors.
func RegisterDriver(r *gin.RouterGroup, jobs *jobsuc.UseCase) {
	rs := &resource{jobs: jobs}
	r.GET("jobs", rs.ListJobs)
	r.GET("jobs/:jid", rs.GetJob)
	r.POST("jobs/:jid/transitions", rs.TransitionJob)
}

func actor(c *gin.Context) (model.Actor, bool) {
	a, err := actormw.Actor(c)
	if err != nil {
		serdser.SerErr(c, err)
		return a, false
	}
	return a, true
}

func (rs *resource) CreateJob(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	d := rs.DserCreateJobReq(c)
	if d == nil {
		return
	}
	job, err := rs.jobs.Create(c, a, *d)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (rs *resource) ListJobs(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	f := rs.DserListJobsReq(c)
	if f == nil {
		return
	}
	jobs, err := rs.jobs.List(c, a, *f)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (rs *resource) GetJob(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := dserJobID(c)
	if !ok {
		return
	}
	job, err := rs.jobs.Get(c, a, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (rs *resource) UpdateJob(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := dserJobID(c)
	if !ok {
		return
	}
	p := rs.DserUpdateJobReq(c)
	if p == nil {
		return
	}
	job, err := rs.jobs.Update(c, a, id, *p)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (rs *resource) DeleteJob(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := dserJobID(c)
	if !ok {
		return
	}
	if err := rs.jobs.Delete(c, a, id); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rs *resource) JobLogs(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := dserJobID(c)
	if !ok {
		return
	}
	logs, err := rs.jobs.Logs(c, a, id)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (rs *resource) TransitionJob(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := dserJobID(c)
	if !ok {
		return
	}
	req := rs.DserTransitionReq(c)
	if req == nil {
		return
	}
	job, err := rs.jobs.RequestTransition(
		c, a, id, req.Status, req.Notes, req.FailureReason,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (rs *resource) BulkTransition(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	req := rs.DserBulkTransitionReq(c)
	if req == nil {
		return
	}
	res, err := rs.jobs.BulkTransition(
		c, a, req.IDs, req.Status, req.Notes, req.FailureReason,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerBulkResult(res))
}
