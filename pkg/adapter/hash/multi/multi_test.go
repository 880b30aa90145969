// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package multi_test

import (
	"strings"
	"testing"

	"github.com/momeni/dispatch-pool/pkg/adapter/hash/bcrypt"
	"github.com/momeni/dispatch-pool/pkg/adapter/hash/multi"
	"github.com/momeni/dispatch-pool/pkg/adapter/hash/scram"
	"github.com/momeni/dispatch-pool/pkg/core/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchByPrefix(t *testing.T) {
	sh, err := scram.NewHasher(scram.SHA256(), scram.WithIters(4096))
	require.NoError(t, err)
	bh, err := bcrypt.New(4)
	require.NoError(t, err)
	m := multi.New(sh).
		Register(sh, sh.Prefix()).
		Register(bh, bcrypt.Prefixes()...)

	enc, err := m.Hash("2468")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "SCRAM-SHA-256$"))
	ok, err := m.Verify("2468", enc)
	require.NoError(t, err)
	assert.True(t, ok)

	legacy, err := bh.Hash("1357")
	require.NoError(t, err)
	ok, err = m.Verify("1357", legacy)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.Verify("2468", legacy)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.Verify("2468", "md5$abc")
	assert.ErrorIs(t, err, hash.ErrUnknownScheme)
}
