// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package authrs realizes the driver login and PIN management APIs
// and the back-office drivers roster APIs.
package authrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/actormw"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/authuc"
)

// Cookie describes the cookie which carries the driver token.
type Cookie struct {
	Name   string
	Secure bool
}

type resource struct {
	auth   *authuc.UseCase
	cookie Cookie
}

// RegisterDriver registers the public driver APIs including:
//  1. POST request to login which sets the token cookie,
//  2. POST request to pin in order to change a PIN, and
//  3. POST request to logout which expires the token cookie.
func RegisterDriver(r *gin.RouterGroup, auth *authuc.UseCase, cookie Cookie) {
	rs := &resource{auth: auth, cookie: cookie}
	r.POST("login", rs.Login)
	r.POST("pin", rs.ChangePin)
	r.POST("logout", rs.Logout)
}

// RegisterAdmin registers the drivers roster APIs of the back-office
// namespace, including listing, adding, and PIN reset of drivers.
func RegisterAdmin(r *gin.RouterGroup, auth *authuc.UseCase) {
	rs := &resource{auth: auth}
	r.GET("drivers", rs.ListDrivers)
	r.POST("drivers", rs.AddDriver)
	r.POST("drivers/:did/pin-reset", rs.ResetPin)
}

type loginReq struct {
	Phone string `json:"phone" binding:"required,phone"`
	Pin   string `json:"pin" binding:"required"`
}

type changePinReq struct {
	Phone      string `json:"phone" binding:"required,phone"`
	CurrentPin string `json:"current_pin" binding:"required"`
	NewPin     string `json:"new_pin" binding:"required,pin"`
}

type addDriverReq struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required,phone"`
	VehiclePlate string `json:"vehicle_plate"`
	Pin          string `json:"pin" binding:"omitempty,pin"`
}

type resetPinReq struct {
	Pin string `json:"pin" binding:"omitempty,pin"`
}

type driverURI struct {
	DriverID string `uri:"did" binding:"required,uuid"`
}

func (rs *resource) Login(c *gin.Context) {
	req := &loginReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return
	}
	tok, u, err := rs.auth.LoginDriver(c, req.Phone, req.Pin)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	maxAge := int(rs.auth.TokenTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(rs.cookie.Name, tok, maxAge, "/", "", rs.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"token": tok, "user": u})
}

func (rs *resource) ChangePin(c *gin.Context) {
	req := &changePinReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return
	}
	err := rs.auth.ChangePin(c, req.Phone, req.CurrentPin, req.NewPin)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rs *resource) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(rs.cookie.Name, "", -1, "/", "", rs.cookie.Secure, true)
	c.Status(http.StatusNoContent)
}

func (rs *resource) ListDrivers(c *gin.Context) {
	a, err := actormw.Actor(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	ds, err := rs.auth.Drivers(c, a)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	if ds == nil {
		ds = []model.User{}
	}
	c.JSON(http.StatusOK, gin.H{"drivers": ds})
}

func (rs *resource) AddDriver(c *gin.Context) {
	a, err := actormw.Actor(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	req := &addDriverReq{}
	if !serdser.Bind(c, req, binding.JSON) {
		return
	}
	u, pin, err := rs.auth.ProvisionDriver(c, &a, authuc.DriverDraft{
		Name:         req.Name,
		Phone:        req.Phone,
		VehiclePlate: req.VehiclePlate,
		Pin:          req.Pin,
	})
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"driver": u, "pin": pin})
}

func (rs *resource) ResetPin(c *gin.Context) {
	a, err := actormw.Actor(c)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	uri := &driverURI{}
	if !serdser.BindURI(c, uri) {
		return
	}
	id, err := uuid.Parse(uri.DriverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"did": []string{"Path param did is not UUID."},
		})
		return
	}
	req := &resetPinReq{}
	if c.Request.ContentLength != 0 && !serdser.Bind(c, req, binding.JSON) {
		return
	}
	pin, err := rs.auth.ResetPin(c, a, id, req.Pin)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pin": pin})
}
