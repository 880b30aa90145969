// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bcrypt_test

import (
	"testing"

	"github.com/momeni/dispatch-pool/pkg/adapter/hash/bcrypt"
	"github.com/momeni/dispatch-pool/pkg/core/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher(t *testing.T) {
	h, err := bcrypt.New(4)
	require.NoError(t, err)
	enc, err := h.Hash("1234")
	require.NoError(t, err)

	ok, err := h.Verify("1234", enc)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.Verify("4321", enc)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Verify("1234", "short")
	assert.ErrorIs(t, err, hash.ErrUnknownScheme)

	_, err = bcrypt.New(99)
	assert.Error(t, err)
}
