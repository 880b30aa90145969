// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
)

// Database contains the database related configuration settings.
// A non-empty URL is used as is. Otherwise, the connection URL is
// built from the other fields and the password is read from the
// .pgpass file in the PassDir directory.
type Database struct {
	URL     string `yaml:"url,omitempty"`
	Host    string // domain name or IP address of the DBMS server
	Port    int    // port number of the DBMS server
	Name    string // database name, like dispatch
	User    string // database role name
	PassDir string `yaml:"pass-dir"` // path of the passwords dir
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `d` settings.
func (d Database) ConnectionPool(ctx context.Context) (*postgres.Pool, error) {
	u, err := d.ConnectionURL()
	if err != nil {
		return nil, err
	}
	p, err := postgres.NewPool(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", d.String(), err)
	}
	return p, nil
}

// ConnectionURL returns the database connection URL. Without an
// explicit URL, the .pgpass file in PassDir is searched for a line
// like this in order to find the password:
//
//	host:port:dbname:role:password
//
// Empty and `#`-commented lines are ignored.
func (d Database) ConnectionURL() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	path := filepath.Join(d.PassDir, ".pgpass")
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, d.User)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line in %q", path)
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(d.User, pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// String describes the target database without its password.
func (d Database) String() string {
	if d.URL != "" {
		u, err := url.Parse(d.URL)
		if err != nil {
			return "database"
		}
		return u.Redacted()
	}
	return fmt.Sprintf("%s@%s:%d/%s", d.User, d.Host, d.Port, d.Name)
}

// ValidateAndNormalize validates the database settings and fills the
// default port.
func (d *Database) ValidateAndNormalize() error {
	if d.URL != "" {
		return nil
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	switch {
	case d.Host == "" || d.Name == "" || d.User == "":
		return errors.New("either url or host, name, and user are required")
	case d.Port < 1 || d.Port > 65535:
		return fmt.Errorf("invalid port number: %d", d.Port)
	}
	return nil
}
