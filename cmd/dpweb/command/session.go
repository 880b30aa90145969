// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Back-office sessions actions for development setups",
}

var addSession struct {
	email string
	ttl   time.Duration
}

var addSessionCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a back-office session in Redis",
	Long: `Store a back-office session in Redis and print its id.
Sessions are normally written by the identity provider. This action
allows the back-office APIs to be tried out without one, passing the
printed id in the X-Admin-Session header or the session cookie.`,
	RunE: addAdminSession,
	Args: cobra.NoArgs,
}

func addAdminSession(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore := c.Redis.NewSessionStore()
	defer closeStore()
	s := &session.Session{
		ID:        uuid.NewString(),
		Email:     addSession.email,
		ExpiresAt: time.Now().Add(addSession.ttl),
	}
	if err := store.Save(ctx, s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Println(s.ID)
	return nil
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(addSessionCmd)

	f := addSessionCmd.Flags()
	f.StringVar(&addSession.email, "email", "", "back-office user email")
	f.DurationVar(&addSession.ttl, "ttl", 8*time.Hour, "session lifetime")
	_ = addSessionCmd.MarkFlagRequired("email")
}
