// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package serdser

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/authuc"
)

var registerOnce sync.Once

// RegisterValidators adds the pin, phone, jobstatus, and companykind
// tags to the validator of the gin default binding. It may be called
// several times.
func RegisterValidators() (err error) {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf(
				"unexpected validator engine: %T",
				binding.Validator.Engine(),
			)
			return
		}
		for tag, f := range map[string]validator.Func{
			"pin": func(fl validator.FieldLevel) bool {
				return authuc.ValidPin(fl.Field().String())
			},
			"phone": func(fl validator.FieldLevel) bool {
				return authuc.ValidPhone(fl.Field().String())
			},
			"jobstatus": func(fl validator.FieldLevel) bool {
				_, err := model.ParseJobStatus(fl.Field().String())
				return err == nil
			},
			"companykind": func(fl validator.FieldLevel) bool {
				_, err := model.ParseCompanyKind(fl.Field().String())
				return err == nil
			},
		} {
			if err = v.RegisterValidation(tag, f); err != nil {
				return
			}
		}
	})
	return err
}
