// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scram_test

import (
	"strings"
	"testing"

	"github.com/momeni/dispatch-pool/pkg/adapter/hash/scram"
	"github.com/momeni/dispatch-pool/pkg/core/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFormat(t *testing.T) {
	m := scram.SHA256()
	h, err := m.Hash("1234", "c2FsdA==", 4096)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "SCRAM-SHA-256$4096:c2FsdA==$"), h)
	again, err := m.Hash("1234", "c2FsdA==", 4096)
	require.NoError(t, err)
	assert.Equal(t, h, again, "fixed salt must be deterministic")

	_, err = m.Hash("", "", 4096)
	assert.Error(t, err)
	_, err = m.Hash("1234", "", 100)
	assert.Error(t, err)
}

func TestHasherVerify(t *testing.T) {
	for _, m := range []*scram.Mechanism{scram.SHA256(), scram.SHA1()} {
		t.Run(m.Name(), func(t *testing.T) {
			h, err := scram.NewHasher(m, scram.WithIters(4096))
			require.NoError(t, err)
			enc, err := h.Hash("482913")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(enc, h.Prefix()))

			other, err := h.Hash("482913")
			require.NoError(t, err)
			assert.NotEqual(t, enc, other, "salts must be random")

			ok, err := h.Verify("482913", enc)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = h.Verify("482914", enc)
			require.NoError(t, err)
			assert.False(t, ok)
			ok, err = h.Verify("", enc)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := scram.SHA256()
	_, err := m.Verify("1234", "$2a$10$abc")
	assert.ErrorIs(t, err, hash.ErrUnknownScheme)
	for _, enc := range []string{
		"SCRAM-SHA-256$",
		"SCRAM-SHA-256$4096$a:b",
		"SCRAM-SHA-256$12:c2FsdA==$a:b",
		"SCRAM-SHA-256$4096:c2FsdA==$ab",
		"SCRAM-SHA-256$4096:!!$a:b",
	} {
		_, err := m.Verify("1234", enc)
		assert.Error(t, err, enc)
	}
	_, err = scram.NewHasher(m, scram.WithIters(10))
	assert.Error(t, err)
}
