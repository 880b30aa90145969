// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings_test

import (
	"testing"
	"time"

	"github.com/momeni/dispatch-pool/pkg/adapter/config/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		text string
		want time.Duration
		str  string
	}{
		{"30d", 30 * 24 * time.Hour, "30d"},
		{"720h", 30 * 24 * time.Hour, "30d"},
		{"1h30m", 90 * time.Minute, "1h30m"},
		{"2h", 2 * time.Hour, "2h"},
		{"45s", 45 * time.Second, "45s"},
		{"0s", 0, "0s"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			var d settings.Duration
			require.NoError(t, d.UnmarshalText([]byte(tc.text)))
			assert.Equal(t, tc.want, time.Duration(d))
			assert.Equal(t, tc.str, d.String())
		})
	}
	d := settings.Duration(time.Hour)
	for _, bad := range []string{"", "d", "-1d", "1.5d", "10 days"} {
		assert.Error(t, d.UnmarshalText([]byte(bad)), bad)
	}
	assert.Equal(t, settings.Duration(time.Hour), d, "failures keep d")
}

func TestVerifyRange(t *testing.T) {
	ptr := func(v int) *int { return &v }
	assert.NoError(t, settings.VerifyRange[int](nil, ptr(1), ptr(2)))
	assert.NoError(t, settings.VerifyRange(ptr(5), nil, nil))
	assert.NoError(t, settings.VerifyRange(ptr(5), ptr(5), ptr(5)))
	assert.EqualError(t,
		settings.VerifyRange(ptr(0), ptr(1), nil), "0 is less than minimum 1",
	)
	assert.EqualError(t,
		settings.VerifyRange(ptr(9), nil, ptr(8)),
		"9 is greater than maximum 8",
	)
	assert.EqualError(t,
		settings.VerifyRange(ptr(1), ptr(3), ptr(2)),
		"minimum 3 is greater than maximum 2",
	)
}

func TestDefault(t *testing.T) {
	var b *bool
	settings.Default(&b, true)
	require.NotNil(t, b)
	assert.True(t, *b)
	settings.Default(&b, false)
	assert.True(t, *b, "non-nil values are kept")

	var n *int
	settings.Nil2Zero(&n)
	require.NotNil(t, n)
	assert.Zero(t, *n)
}
