// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/momeni/dispatch-pool/pkg/adapter/config"
	"github.com/momeni/dispatch-pool/pkg/adapter/config/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvDatabaseURL, config.EnvTokenSecret, config.EnvRedisAddr,
	} {
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)
	c, err := config.Parse([]byte(`
database:
  url: postgres://dispatch@localhost/dispatch
auth:
  token-secret: ` + secret + `
`))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Gin.Address)
	assert.True(t, *c.Gin.Logger)
	assert.True(t, *c.Gin.Metrics)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, "session:", c.Redis.Prefix)
	assert.Equal(t, settings.Duration(720*time.Hour), *c.Auth.TokenTTL)
	assert.Equal(t, "scram-sha-256", c.Auth.PinHash)
	assert.Equal(t, "admin_session", c.Auth.SessionCookie)
	assert.Equal(t, "driver_token", c.Auth.DriverCookie)
	assert.Equal(t, "text", c.Logging.Format)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Nil(t, c.Usecases.Jobs.MaxBulkSize)
}

func TestParseSettings(t *testing.T) {
	clearEnv(t)
	c, err := config.Parse([]byte(`
database:
  host: db.local
  name: dispatch
  user: dispatcher
  pass-dir: /tmp
gin:
  address: 127.0.0.1:9000
  metrics: false
auth:
  token-secret: ` + secret + `
  token-ttl: 48h
  token-ttl-maximum: 24h
  pin-hash: bcrypt
  bcrypt-cost: 4
logging:
  format: JSON
  level: debug
usecases:
  jobs:
    max-bulk-size: 50
    default-page-size: 20
    max-page-size: 40
`))
	require.Error(t, err, "token ttl exceeds its maximum")
	assert.Contains(t, err.Error(), "greater than max")

	c, err = config.Parse([]byte(`
database:
  host: db.local
  name: dispatch
  user: dispatcher
auth:
  token-secret: ` + secret + `
  token-ttl: 12h
  pin-hash: bcrypt
  bcrypt-cost: 4
logging:
  format: JSON
  level: debug
usecases:
  jobs:
    max-bulk-size: 50
`))
	require.NoError(t, err)
	assert.Equal(t, 5432, c.Database.Port)
	assert.Equal(t, "dispatcher@db.local:5432/dispatch", c.Database.String())
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, 50, *c.Usecases.Jobs.MaxBulkSize)

	h, err := c.Auth.NewHasher()
	require.NoError(t, err)
	enc, err := h.Hash("1234")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "$2"), enc)
	ok, err := h.Verify("1234", enc)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseErrors(t *testing.T) {
	clearEnv(t)
	for name, doc := range map[string]string{
		"no database":   "auth: {token-secret: " + secret + "}",
		"no secret":     "database: {url: postgres://x}",
		"short secret":  "database: {url: postgres://x}\nauth: {token-secret: abc}",
		"bad pin hash":  "database: {url: postgres://x}\nauth: {token-secret: " + secret + ", pin-hash: md5}",
		"bad log level": "database: {url: postgres://x}\nauth: {token-secret: " + secret + "}\nlogging: {level: loud}",
		"bad bulk":      "database: {url: postgres://x}\nauth: {token-secret: " + secret + "}\nusecases: {jobs: {max-bulk-size: 0}}",
		"half paging":   "database: {url: postgres://x}\nauth: {token-secret: " + secret + "}\nusecases: {jobs: {max-page-size: 10}}",
	} {
		_, err := config.Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvDatabaseURL, "postgres://env@localhost/dispatch")
	t.Setenv(config.EnvTokenSecret, secret)
	t.Setenv(config.EnvRedisAddr, "redis.local:6380")
	c, err := config.Parse([]byte("database: {url: postgres://file}\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env@localhost/dispatch", c.Database.URL)
	assert.Equal(t, secret, c.Auth.TokenSecret)
	assert.Equal(t, "redis.local:6380", c.Redis.Addr)
}

func TestConnectionURLFromPassFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".pgpass"), []byte(
		"# comment\n\ndb:5432:other:dispatcher:nope\n"+
			"db:5432:dispatch:dispatcher:s3cret\n",
	), 0o600)
	require.NoError(t, err)
	d := config.Database{
		Host: "db", Port: 5432, Name: "dispatch", User: "dispatcher",
		PassDir: dir,
	}
	u, err := d.ConnectionURL()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://dispatcher:s3cret@db:5432/dispatch", u)

	d.User = "stranger"
	_, err = d.ConnectionURL()
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"database: {url: postgres://x}\nauth: {token-secret: "+secret+"}\n",
	), 0o600))
	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://x", c.Database.URL)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
