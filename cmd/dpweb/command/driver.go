// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/authuc"
	"github.com/spf13/cobra"
)

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Own fleet drivers management actions",
}

var addDriver authuc.DriverDraft

var addDriverCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an own fleet driver",
	Long: `Add an own fleet driver with a temporary PIN. The PIN is
generated randomly unless the --pin flag is given and it is printed
once. The driver has to change it before the first login.`,
	RunE: addOwnFleetDriver,
	Args: cobra.NoArgs,
}

func addOwnFleetDriver(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.Database.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	auth, err := c.Auth.NewUseCase(p, usersrp.New(), nil)
	if err != nil {
		return fmt.Errorf("creating auth use case: %w", err)
	}
	u, pin, err := auth.ProvisionDriver(ctx, nil, addDriver)
	if err != nil {
		return fmt.Errorf("adding driver: %w", err)
	}
	fmt.Printf("driver %s is added with id %s\n", u.Phone, u.ID)
	fmt.Printf("temporary PIN: %s\n", pin)
	return nil
}

func init() {
	rootCmd.AddCommand(driverCmd)
	driverCmd.AddCommand(addDriverCmd)

	f := addDriverCmd.Flags()
	f.StringVar(&addDriver.Name, "name", "", "driver name")
	f.StringVar(&addDriver.Phone, "phone", "", "login phone number")
	f.StringVar(&addDriver.VehiclePlate, "plate", "", "vehicle plate")
	f.StringVar(&addDriver.Pin, "pin", "", "temporary PIN (random if empty)")
	_ = addDriverCmd.MarkFlagRequired("name")
	_ = addDriverCmd.MarkFlagRequired("phone")
}
