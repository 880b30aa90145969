// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/internal/test/testdb"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/companiesrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/jobsrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/hash/scram"
	"github.com/momeni/dispatch-pool/pkg/adapter/metrics/prom"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/actormw"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/authrs"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/routes"
	"github.com/momeni/dispatch-pool/pkg/adapter/token/jwt"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/session"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/assignuc"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/authuc"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/companiesuc"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/jobsuc"
	"github.com/stretchr/testify/suite"
)

const (
	rootSID = "root-sid"
	accSID  = "acc-sid"
)

type sessions map[string]string

func (ss sessions) Session(_ context.Context, id string) (*session.Session, error) {
	email, ok := ss[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, model.ErrNotFound)
	}
	return &session.Session{
		ID: id, Email: email, ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type GinTestSuite struct {
	suite.Suite

	Pool *postgres.Pool
	F    *testdb.Fixture
	Gin  *gin.Engine
}

func TestGinTestSuite(t *testing.T) {
	suite.Run(t, new(GinTestSuite))
}

func (gts *GinTestSuite) SetupTest() {
	gts.Pool = testdb.New(gts.T())
	gts.F = testdb.Seed(gts.T(), gts.Pool)
	m := prom.New()
	jobsUC, err := jobsuc.New(
		gts.Pool, jobsrp.New(), companiesrp.New(), usersrp.New(),
		assignuc.New(), jobsuc.WithObserver(m),
	)
	gts.Require().NoError(err)
	companiesUC, err := companiesuc.New(gts.Pool, companiesrp.New())
	gts.Require().NoError(err)
	h, err := scram.NewHasher(scram.SHA256(), scram.WithIters(4096))
	gts.Require().NoError(err)
	signer, err := jwt.New("0123456789abcdef0123456789abcdef")
	gts.Require().NoError(err)
	authUC, err := authuc.New(
		gts.Pool, usersrp.New(), h, signer, sessions{
			rootSID: gts.F.SuperAdmin.Email,
			accSID:  gts.F.Accountant.Email,
		},
	)
	gts.Require().NoError(err)

	gts.Gin = gin.New(gin.Recovery(slog.Default()), gin.Metrics(m))
	gts.Require().NotNil(gts.Gin, "cannot instantiate Gin engine")
	err = routes.Mount(gts.Gin, routes.UseCases{
		Jobs: jobsUC, Companies: companiesUC, Auth: authUC, Metrics: m,
	}, routes.Cookies{
		Session: "admin_session",
		Driver:  authrs.Cookie{Name: "driver_token"},
	})
	gts.Require().NoError(err, "failed to mount Gin routes")
}

type reqOpt func(r *http.Request)

func asAdmin(sid string) reqOpt {
	return func(r *http.Request) {
		r.Header.Set(actormw.SessionHeader, sid)
	}
}

func withCookie(c *http.Cookie) reqOpt {
	return func(r *http.Request) {
		r.AddCookie(c)
	}
}

func withBearer(tok string) reqOpt {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
}

// do sends a request with the JSON encoded body (if not nil) and
// decodes the response body into res (if not nil).
func (gts *GinTestSuite) do(
	method, path string, body, res any, opts ...reqOpt,
) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		gts.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, routes.BasePath+path, r)
	gts.Require().NoError(err, "cannot create %s request", method)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	if res != nil {
		gts.NoError(json.Unmarshal(w.Body.Bytes(), res), "body is not json")
	}
	return w
}

type detail struct {
	Detail string
}

type jobResp struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	DriverName    string    `json:"driver_name"`
	AssignedPlate string    `json:"assigned_plate"`
}

func (gts *GinTestSuite) newJob(supplier, driver *uuid.UUID) jobResp {
	body := map[string]any{
		"client_id":       gts.F.Client.ID,
		"guest_name":      "John Doe",
		"pickup_location": "Airport T2",
		"drop_location":   "Grand Hotel",
		"pickup_time":     time.Now().Add(24 * time.Hour).UTC(),
		"adults":          2,
		"price":           40,
		"total_amount":    44,
	}
	if supplier != nil {
		body["supplier_id"] = supplier
	}
	if driver != nil {
		body["driver_id"] = driver
	}
	job := jobResp{}
	w := gts.do(http.MethodPost, "/admin/jobs", body, &job, asAdmin(rootSID))
	gts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return job
}

func (gts *GinTestSuite) TestHealthAndMetrics() {
	for _, path := range []string{"/healthz", "/metrics"} {
		req, err := http.NewRequest(http.MethodGet, path, nil)
		gts.Require().NoError(err)
		w := httptest.NewRecorder()
		gts.Gin.ServeHTTP(w, req)
		gts.Equal(http.StatusOK, w.Code, path)
	}
}

func (gts *GinTestSuite) TestAdminAuthentication() {
	res := &detail{}
	w := gts.do(http.MethodGet, "/admin/companies", nil, res)
	gts.Equal(http.StatusUnauthorized, w.Code)
	gts.Contains(res.Detail, "no session")

	w = gts.do(http.MethodGet, "/admin/companies", nil, res, asAdmin("bogus"))
	gts.Equal(http.StatusUnauthorized, w.Code)

	companies := &struct{ Companies []model.Company }{}
	w = gts.do(http.MethodGet, "/admin/companies", nil, companies,
		withCookie(&http.Cookie{Name: "admin_session", Value: accSID}),
	)
	gts.Equal(http.StatusOK, w.Code)
	gts.Len(companies.Companies, 4)

	w = gts.do(http.MethodGet, "/admin/companies?kind=SUPPLIER", nil,
		companies, asAdmin(accSID),
	)
	gts.Equal(http.StatusOK, w.Code)
	gts.Len(companies.Companies, 1)
}

func (gts *GinTestSuite) TestBadRequest() {
	fields := map[string][]string{}
	w := gts.do(http.MethodPost, "/admin/jobs", map[string]any{}, &fields,
		asAdmin(rootSID),
	)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(fields["GuestName"][0], "failed on the 'required' tag")
	gts.Contains(fields["Adults"][0], "failed on the 'required' tag")

	fields = map[string][]string{}
	w = gts.do(http.MethodGet, "/admin/jobs/not-a-uuid", nil, &fields,
		asAdmin(rootSID),
	)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(fields["JobID"][0], "failed on the 'uuid' tag")

	fields = map[string][]string{}
	w = gts.do(http.MethodPost,
		"/admin/jobs/"+uuid.NewString()+"/transitions",
		map[string]string{"status": "FLYING"}, &fields, asAdmin(rootSID),
	)
	gts.Equal(http.StatusBadRequest, w.Code)
	gts.Contains(fields["Status"][0], "failed on the 'jobstatus' tag")

	res := &detail{}
	w = gts.do(http.MethodGet, "/admin/jobs/"+uuid.NewString(), nil, res,
		asAdmin(rootSID),
	)
	gts.Equal(http.StatusNotFound, w.Code)
	gts.NotEmpty(res.Detail)
}

func (gts *GinTestSuite) TestOwnFleetDriverFlow() {
	job := gts.newJob(&gts.F.OwnFleet.ID, &gts.F.Driver.ID)
	gts.Equal("ASSIGNED", job.Status)
	gts.Equal("Ali", job.DriverName)
	gts.Equal("12-ABC", job.AssignedPlate)

	pin := &struct{ Pin string }{}
	w := gts.do(http.MethodPost,
		"/admin/drivers/"+gts.F.Driver.ID.String()+"/pin-reset",
		map[string]string{"pin": "1234"}, pin, asAdmin(rootSID),
	)
	gts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	gts.Equal("1234", pin.Pin)

	login := map[string]string{"phone": gts.F.Driver.Phone, "pin": "1234"}
	res := &detail{}
	w = gts.do(http.MethodPost, "/driver/login", login, res)
	gts.Equal(http.StatusPreconditionRequired, w.Code)

	w = gts.do(http.MethodPost, "/driver/pin", map[string]string{
		"phone": gts.F.Driver.Phone, "current_pin": "1234", "new_pin": "2580",
	}, nil)
	gts.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())

	login["pin"] = "2580"
	logged := &struct{ Token string }{}
	w = gts.do(http.MethodPost, "/driver/login", login, logged)
	gts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "driver_token" {
			cookie = c
		}
	}
	gts.Require().NotNil(cookie)
	gts.True(cookie.HttpOnly)
	gts.Equal("/", cookie.Path)
	gts.Equal(30*24*3600, cookie.MaxAge)
	gts.Equal(logged.Token, cookie.Value)

	mine := &struct{ Jobs []jobResp }{}
	w = gts.do(http.MethodGet, "/driver/jobs", nil, mine, withCookie(cookie))
	gts.Equal(http.StatusOK, w.Code)
	gts.Require().Len(mine.Jobs, 1)
	gts.Equal(job.ID, mine.Jobs[0].ID)

	move := func(status string) (*httptest.ResponseRecorder, jobResp) {
		j := jobResp{}
		w := gts.do(http.MethodPost,
			"/driver/jobs/"+job.ID.String()+"/transitions",
			map[string]string{"status": status}, &j,
			withBearer(logged.Token),
		)
		return w, j
	}
	w, moved := move("STARTED")
	gts.Equal(http.StatusOK, w.Code, w.Body.String())
	gts.Equal("STARTED", moved.Status)
	w, _ = move("COMPLETED")
	gts.Equal(http.StatusBadRequest, w.Code, "PICKED may not be skipped")
	w, _ = move("PICKED")
	gts.Equal(http.StatusOK, w.Code)
	w, moved = move("COMPLETED")
	gts.Equal(http.StatusOK, w.Code)
	gts.Equal("COMPLETED", moved.Status)

	logs := &struct{ Logs []model.JobLog }{}
	w = gts.do(http.MethodGet, "/admin/jobs/"+job.ID.String()+"/logs", nil,
		logs, asAdmin(accSID),
	)
	gts.Equal(http.StatusOK, w.Code)
	gts.Require().Len(logs.Logs, 5)
	gts.Equal(model.LogActionCreated, logs.Logs[0].Action)
	gts.Equal(
		"Status changed from PICKED to COMPLETED", logs.Logs[4].Notes,
	)

	w = gts.do(http.MethodPost, "/driver/logout", nil, nil)
	gts.Equal(http.StatusNoContent, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == "driver_token" {
			gts.Empty(c.Value)
			gts.Less(c.MaxAge, 0)
		}
	}
}

func (gts *GinTestSuite) TestDriverBoundaries() {
	job := gts.newJob(&gts.F.OwnFleet.ID, &gts.F.Driver.ID)
	res := &detail{}
	w := gts.do(http.MethodGet, "/driver/jobs", nil, res)
	gts.Equal(http.StatusUnauthorized, w.Code)
	w = gts.do(http.MethodGet, "/driver/jobs", nil, res, withBearer("junk"))
	gts.Equal(http.StatusUnauthorized, w.Code)

	pin := &struct{ Pin string }{}
	w = gts.do(http.MethodPost, "/admin/drivers", map[string]string{
		"name": "Reza", "phone": "+989120000009", "pin": "5555",
	}, pin, asAdmin(rootSID))
	gts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	gts.Equal("5555", pin.Pin)
	w = gts.do(http.MethodPost, "/driver/pin", map[string]string{
		"phone": "+989120000009", "current_pin": "5555", "new_pin": "6666",
	}, nil)
	gts.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())
	logged := &struct{ Token string }{}
	w = gts.do(http.MethodPost, "/driver/login", map[string]string{
		"phone": "+989120000009", "pin": "6666",
	}, logged)
	gts.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = gts.do(http.MethodGet, "/driver/jobs/"+job.ID.String(), nil, res,
		withBearer(logged.Token),
	)
	gts.Equal(http.StatusForbidden, w.Code)

	w = gts.do(http.MethodPost, "/driver/login", map[string]string{
		"phone": "+989120000009", "pin": "0000",
	}, res)
	gts.Equal(http.StatusUnauthorized, w.Code)
}

func (gts *GinTestSuite) TestBulkTransition() {
	a := gts.newJob(nil, nil)
	b := gts.newJob(&gts.F.Supplier.ID, nil)
	missing := uuid.New()
	res := &struct {
		Updated []jobResp
		Skipped []struct {
			JobID  uuid.UUID `json:"job_id"`
			Detail string
		}
	}{}
	w := gts.do(http.MethodPost, "/admin/jobs/transitions", map[string]any{
		"ids":    []uuid.UUID{a.ID, b.ID, a.ID, missing},
		"status": "CANCELLED",
		"notes":  "storm",
	}, res, asAdmin(rootSID))
	gts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	gts.Len(res.Updated, 2)
	gts.Require().Len(res.Skipped, 1)
	gts.Equal(missing, res.Skipped[0].JobID)

	w = gts.do(http.MethodPost, "/admin/jobs/transitions", map[string]any{
		"ids": []uuid.UUID{a.ID}, "status": "CANCELLED",
	}, &detail{}, asAdmin(accSID))
	gts.Equal(http.StatusForbidden, w.Code)
}

func (gts *GinTestSuite) TestUpdateAndDelete() {
	job := gts.newJob(nil, nil)
	updated := jobResp{}
	w := gts.do(http.MethodPatch, "/admin/jobs/"+job.ID.String(),
		map[string]any{
			"guest_name": "Jane Doe",
			"assign":     map[string]any{"supplier_id": gts.F.Supplier.ID},
		}, &updated, asAdmin(rootSID),
	)
	gts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	gts.Equal("ASSIGNED", updated.Status)

	w = gts.do(http.MethodDelete, "/admin/jobs/"+job.ID.String(), nil, nil,
		asAdmin(accSID),
	)
	gts.Equal(http.StatusForbidden, w.Code)
	w = gts.do(http.MethodDelete, "/admin/jobs/"+job.ID.String(), nil, nil,
		asAdmin(rootSID),
	)
	gts.Equal(http.StatusNoContent, w.Code)
	w = gts.do(http.MethodGet, "/admin/jobs/"+job.ID.String(), nil,
		&detail{}, asAdmin(rootSID),
	)
	gts.Equal(http.StatusNotFound, w.Code)

	list := &struct{ Jobs []jobResp }{}
	w = gts.do(http.MethodGet, "/admin/jobs?status=ASSIGNED", nil, list,
		asAdmin(accSID),
	)
	gts.Equal(http.StatusOK, w.Code)
	gts.Empty(list.Jobs)
}

func (gts *GinTestSuite) TestCompanies() {
	co := &model.Company{}
	w := gts.do(http.MethodPost, "/admin/companies", map[string]string{
		"name": "Metro Taxi", "kind": "SUPPLIER",
	}, co, asAdmin(rootSID))
	gts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	gts.Equal(model.CompanyKindSupplier, co.Kind)

	w = gts.do(http.MethodPost, "/admin/companies", map[string]string{
		"name": "Second Fleet", "kind": "OWN_FLEET",
	}, &detail{}, asAdmin(rootSID))
	gts.Equal(http.StatusConflict, w.Code)

	w = gts.do(http.MethodPost, "/admin/companies", map[string]string{
		"name": "Nope", "kind": "CLIENT",
	}, &detail{}, asAdmin(accSID))
	gts.Equal(http.StatusForbidden, w.Code)
}
