// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the dispatch
// pool web service. Commands are organized using the cobra library.
// The root command starts the web server itself while the "db",
// "driver", and "session" sub-commands perform the provisioning
// actions which have no REST API.
//
//	./dpweb [-c /path/of/config.yaml]           # start web server
//	./dpweb db init [-c /path/of/config.yaml]
//	./dpweb db seed-admin --name Root --email root@example.com
//	./dpweb driver add --name Ali --phone +989120000001 --plate 12-ABC
//	./dpweb session add --email root@example.com --ttl 8h
package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/momeni/dispatch-pool/pkg/adapter/config"
	"github.com/momeni/dispatch-pool/pkg/adapter/metrics/prom"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/routes"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "dpweb",
	Short: "Dispatch pool of airport transfer jobs",
	Long: `Dispatch pool of airport transfer jobs which are entered by
the back-office staff, assigned to the supplier companies or the own
fleet drivers, and moved through their lifecycle by the staff and the
drivers.
The back-office APIs are authenticated by the sessions which are kept
in Redis and the driver APIs by the tokens which are issued after a
phone number and PIN login. Jobs, companies, users, and the job logs
are stored in PostgreSQL.`,
	RunE: startWebServer,
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	l := c.Logging.NewLogger(os.Stderr)
	slog.SetDefault(l)
	l.Info("configs are loaded", slog.String("database", c.Database.String()))
	p, err := c.Database.ConnectionPool(ctx)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()

	var m *prom.Metrics
	var mws []gin.HandlerFunc
	if *c.Gin.Logger {
		mws = append(mws, gin.Logger(l, "/healthz", "/metrics"))
	}
	if *c.Gin.Recovery {
		mws = append(mws, gin.Recovery(l))
	}
	if *c.Gin.Metrics {
		m = prom.New()
		mws = append(mws, gin.Metrics(m))
	}
	var e *gin.Engine = gin.New(mws...)

	sessions, closeSessions := c.Redis.NewSessionStore()
	defer closeSessions()
	if err = routes.Register(ctx, e, p, c, sessions, m); err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	l.Info("listening", slog.String("address", c.Gin.Address))
	if err = e.Run(c.Gin.Address); err != nil {
		return fmt.Errorf("running Gin engine: %w", err)
	}
	return nil
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}

// loadConfig loads the configuration file and installs its logger
// as the default slog logger for the provisioning sub-commands.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	slog.SetDefault(c.Logging.NewLogger(os.Stderr))
	return c, nil
}
