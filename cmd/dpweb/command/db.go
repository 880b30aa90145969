// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For a fresh installation, the init action creates the tables and the
seed-admin action adds the first back-office user.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the missing tables and indices",
	Long: `Create the missing tables and indices in the database which
is specified in the configuration file. Existing tables are kept, so
running init on an initialized database is harmless.`,
	RunE: initDB,
	Args: cobra.NoArgs,
}

func initDB(_ *cobra.Command, _ []string) error {
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
	schema := schemarp.New()
	err = p.Conn(ctx, func(ctx context.Context, cn repo.Conn) error {
		return cn.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return schema.Tx(tx).CreateTables(ctx)
		})
	})
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	fmt.Println("database is initialized")
	return nil
}

var seedAdmin struct {
	name  string
	email string
	role  string
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Add a back-office user",
	Long: `Add a SUPER_ADMIN or ACCOUNTANT user. The back-office users
are authenticated by the sessions of an external identity provider, so
only their email addresses are recorded here and they have no PIN.`,
	RunE: seedAdminUser,
	Args: cobra.NoArgs,
}

func seedAdminUser(_ *cobra.Command, _ []string) error {
	role, err := model.ParseRole(seedAdmin.role)
	if err != nil {
		return fmt.Errorf("parsing role: %w", err)
	}
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
	u, err := auth.SeedAdmin(ctx, seedAdmin.name, seedAdmin.email, role)
	if err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	fmt.Printf("%s user %s is added with id %s\n", u.Role, u.Email, u.ID)
	return nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(initCmd)
	dbCmd.AddCommand(seedAdminCmd)

	f := seedAdminCmd.Flags()
	f.StringVar(&seedAdmin.name, "name", "", "display name")
	f.StringVar(&seedAdmin.email, "email", "", "session email address")
	f.StringVar(
		&seedAdmin.role, "role", model.RoleSuperAdmin.String(),
		"SUPER_ADMIN or ACCOUNTANT",
	)
	_ = seedAdminCmd.MarkFlagRequired("name")
	_ = seedAdminCmd.MarkFlagRequired("email")
}
