// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

type gJob struct {
	ID         uuid.UUID  `gorm:"primaryKey;type:uuid"`
	ClientID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`
	DriverID   *uuid.UUID `gorm:"type:uuid;index"`

	GuestName      string `gorm:"not null"`
	GuestContact   string
	PickupLocation string    `gorm:"not null"`
	DropLocation   string    `gorm:"not null"`
	Flight         string
	PickupTime     time.Time `gorm:"not null;index"`
	Adults         int       `gorm:"not null"`

	Category      string
	VehicleModel  string
	DriverName    string
	AssignedPlate string

	Price       float64 `gorm:"not null"`
	TaxAmount   float64 `gorm:"not null"`
	TotalAmount float64 `gorm:"not null"`

	Status        string `gorm:"type:varchar(16);not null;index"`
	FailureReason string

	EnteredBy uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime:false"`
	DeletedAt *time.Time `gorm:"index"`
	Version   int64      `gorm:"not null;default:0"`
}

func (gj *gJob) TableName() string {
	return "jobs"
}

func fromModel(j *model.Job) *gJob {
	gj := &gJob{
		ID:             j.ID,
		ClientID:       j.ClientID,
		SupplierID:     j.SupplierID,
		DriverID:       j.DriverID,
		GuestName:      j.GuestName,
		GuestContact:   j.GuestContact,
		PickupLocation: j.PickupLocation,
		DropLocation:   j.DropLocation,
		Flight:         j.Flight,
		PickupTime:     j.PickupTime,
		Adults:         j.Adults,
		Category:       j.Category,
		VehicleModel:   j.VehicleModel,
		DriverName:     j.DriverName,
		AssignedPlate:  j.AssignedPlate,
		Price:          j.Price,
		TaxAmount:      j.TaxAmount,
		TotalAmount:    j.TotalAmount,
		Status:         j.Status.String(),
		FailureReason:  j.FailureReason,
		EnteredBy:      j.EnteredBy,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
		Version:        j.Version,
	}
	if at, ok := j.Deletion.At(); ok {
		gj.DeletedAt = &at
	}
	return gj
}

func (gj *gJob) Model() (*model.Job, error) {
	s, err := model.ParseJobStatus(gj.Status)
	if err != nil {
		return nil, fmt.Errorf("job %s has status %q: %w", gj.ID, gj.Status, err)
	}
	d := model.Active()
	if gj.DeletedAt != nil {
		d = model.DeletedAt(*gj.DeletedAt)
	}
	return &model.Job{
		ID:             gj.ID,
		ClientID:       gj.ClientID,
		GuestName:      gj.GuestName,
		GuestContact:   gj.GuestContact,
		PickupLocation: gj.PickupLocation,
		DropLocation:   gj.DropLocation,
		Flight:         gj.Flight,
		PickupTime:     gj.PickupTime,
		Adults:         gj.Adults,
		Category:       gj.Category,
		VehicleModel:   gj.VehicleModel,
		Assignment: model.Assignment{
			SupplierID:    gj.SupplierID,
			DriverID:      gj.DriverID,
			DriverName:    gj.DriverName,
			AssignedPlate: gj.AssignedPlate,
		},
		Price:         gj.Price,
		TaxAmount:     gj.TaxAmount,
		TotalAmount:   gj.TotalAmount,
		Status:        s,
		FailureReason: gj.FailureReason,
		EnteredBy:     gj.EnteredBy,
		CreatedAt:     gj.CreatedAt,
		UpdatedAt:     gj.UpdatedAt,
		Deletion:      d,
		Version:       gj.Version,
	}, nil
}

// mutable lists the columns which Update writes. Identity, creation,
// and deletion columns are never touched by it.
func mutable(gj *gJob) map[string]any {
	return map[string]any{
		"client_id":       gj.ClientID,
		"supplier_id":     gj.SupplierID,
		"driver_id":       gj.DriverID,
		"guest_name":      gj.GuestName,
		"guest_contact":   gj.GuestContact,
		"pickup_location": gj.PickupLocation,
		"drop_location":   gj.DropLocation,
		"flight":          gj.Flight,
		"pickup_time":     gj.PickupTime,
		"adults":          gj.Adults,
		"category":        gj.Category,
		"vehicle_model":   gj.VehicleModel,
		"driver_name":     gj.DriverName,
		"assigned_plate":  gj.AssignedPlate,
		"price":           gj.Price,
		"tax_amount":      gj.TaxAmount,
		"total_amount":    gj.TotalAmount,
		"status":          gj.Status,
		"failure_reason":  gj.FailureReason,
		"updated_at":      gj.UpdatedAt,
		"version":         gj.Version + 1,
	}
}

type gJobLog struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	Action    string    `gorm:"type:varchar(16);not null"`
	Notes     string
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (gl *gJobLog) TableName() string {
	return "job_logs"
}

func (gl *gJobLog) Model() model.JobLog {
	return model.JobLog{
		ID:        gl.ID,
		JobID:     gl.JobID,
		ActorID:   gl.ActorID,
		Action:    model.LogAction(gl.Action),
		Notes:     gl.Notes,
		CreatedAt: gl.CreatedAt,
	}
}

// Tables returns the GORM models of this repository, so the schema
// repository may create their tables.
func Tables() []any {
	return []any{&gJob{}, &gJobLog{}}
}

func Get[Q postgres.Queryer](ctx context.Context, q Q, id uuid.UUID) (*model.Job, error) {
	gj := &gJob{}
	err := q.GORM(ctx).Scopes(postgres.Active).Where("id = ?", id).Take(gj).Error
	switch {
	case postgres.IsNotFound(err):
		return nil, cerr.Missing("job %s", id)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gj.Model()
}

func List[Q postgres.Queryer](ctx context.Context, q Q, f model.JobFilter) ([]model.Job, error) {
	gdb := q.GORM(ctx).Scopes(postgres.Active)
	if f.Status != nil {
		gdb = gdb.Where("status = ?", f.Status.String())
	}
	if f.ClientID != nil {
		gdb = gdb.Where("client_id = ?", *f.ClientID)
	}
	if f.SupplierID != nil {
		gdb = gdb.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.DriverID != nil {
		gdb = gdb.Where("driver_id = ?", *f.DriverID)
	}
	if f.Limit > 0 {
		gdb = gdb.Limit(f.Limit)
	}
	if f.Offset > 0 {
		gdb = gdb.Offset(f.Offset)
	}
	var gjs []gJob
	err := gdb.Order("pickup_time, created_at, id").Find(&gjs).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	jobs := make([]model.Job, 0, len(gjs))
	for i := range gjs {
		j, err := gjs[i].Model()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

func Logs[Q postgres.Queryer](ctx context.Context, q Q, jobID uuid.UUID) ([]model.JobLog, error) {
	var gls []gJobLog
	err := q.GORM(ctx).Where("job_id = ?", jobID).Order("created_at, id").Find(&gls).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	logs := make([]model.JobLog, 0, len(gls))
	for i := range gls {
		logs = append(logs, gls[i].Model())
	}
	return logs, nil
}

func Create(ctx context.Context, tx *postgres.Tx, j *model.Job) error {
	if err := tx.GORM(ctx).Create(fromModel(j)).Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// Update writes j if the stored row is active, has the observed
// status, and still has the j.Version which was read. PostgreSQL
// re-checks this guard against a row which a concurrent transaction
// committed meanwhile, so a stale copy of the job (e.g., with a
// replaced driver) is never written back. On success, j.Version is
// incremented to match the stored row.
func Update(ctx context.Context, tx *postgres.Tx, j *model.Job, observed model.JobStatus) (bool, error) {
	res := tx.GORM(ctx).Model(&gJob{}).Scopes(postgres.Active).Where(
		"id = ? AND status = ? AND version = ?",
		j.ID, observed.String(), j.Version,
	).Updates(mutable(fromModel(j)))
	if err := res.Error; err != nil {
		return false, fmt.Errorf("update: %w", err)
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	j.Version++
	return true, nil
}

func SoftDelete(ctx context.Context, tx *postgres.Tx, id uuid.UUID, at time.Time) (bool, error) {
	res := tx.GORM(ctx).Model(&gJob{}).Scopes(postgres.Active).Where(
		"id = ?", id,
	).Updates(map[string]any{"deleted_at": at, "updated_at": at})
	if err := res.Error; err != nil {
		return false, fmt.Errorf("update: %w", err)
	}
	return res.RowsAffected == 1, nil
}

func AppendLog(ctx context.Context, tx *postgres.Tx, l *model.JobLog) error {
	gl := &gJobLog{
		ID:        l.ID,
		JobID:     l.JobID,
		ActorID:   l.ActorID,
		Action:    string(l.Action),
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
	}
	if err := tx.GORM(ctx).Create(gl).Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}
