// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram presents an implementation of SCRAM-SHA-256 and
// SCRAM-SHA-1 mechanisms. See the SHA256 and SHA1 functions for their
// instantiation logic. When a mechanism for a specific underlying hash
// function is instantiated, it can be used for generation of hash
// strings in the SCRAM standard format.
// This format is also known as the scram encrypted password format,
// however, it may not be reversed (so no encryption/decryption is
// taking place). The driver PINs are stored in this format.
package scram

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/momeni/dispatch-pool/pkg/core/hash"
	"github.com/xdg-go/scram"
)

// DefaultIters is the iterations count which is recommended by the
// RFC 7677 and is used by Hasher unless configured otherwise.
const DefaultIters = 15000

// Mechanism provides a Salted Challenge Response Authentication
// Mechanism (SCRAM) having a fixed underlying hash algorithm.
//
// This package relies on the github.com/xdg-go/scram module for the
// SCRAM implementation. The Hasher type wraps a Mechanism in order to
// implement the hash.Hasher interface of the use cases layer.
type Mechanism struct {
	hashGenerator scram.HashGeneratorFcn
	outLen        int // bytes
	name          string
}

// SHA1 returns a new Mechanism instance using the SHA1 as its
// underlying hash algorithm.
func SHA1() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA1,
		outLen:        160 / 8,
		name:          "SCRAM-SHA-1",
	}
}

// SHA256 returns a new Mechanism instance using the SHA256 as its
// underlying hash algorithm.
func SHA256() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA256,
		outLen:        256 / 8,
		name:          "SCRAM-SHA-256",
	}
}

// Name returns the mechanism name, such as SCRAM-SHA-256, which is
// used as the prefix of its hash strings.
func (m *Mechanism) Name() string {
	return m.name
}

// Hash computes a hash string following the standard scram hash format,
// so it can be stored and used later for authentication.
//
// The pass argument must be non-empty. The user and authzID params
// are not asked because they are not used in the hash output. The
// given password will be normalized accoriding to the SASLprep
// profile (defined by RFC 4013) of the stringprep algorithm (which
// is defined by RFC 3454) and any failure in that normalization
// returns an error.
//
// The salt must contain a base64 encoding of the desired salt
// bytes, otherwise, if an empty value is passed, a random salt will
// be generated and used instead.
// The iters must be at least equal to 4096. However, the RFC 7677
// recommends to use 15000 or more.
//
// In absence of errors, a hashed string will be returned which
// conforms to the following format.
//
//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
//
// This string consists only of ASCII printable letters and is the
// same format which PostgreSQL accepts for role passwords.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	switch {
	case pass == "":
		return "", errors.New("password must be non-empty")
	case iters < 4096:
		return "", fmt.Errorf("iters (%d) is less than 4096", iters)
	}
	if salt == "" {
		saltBytes := make([]byte, m.outLen)
		if _, err := rand.Read(saltBytes); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		s := make([]byte, base64.StdEncoding.EncodedLen(m.outLen))
		base64.StdEncoding.Encode(s, saltBytes)
		salt = string(s)
	}
	sc, err := m.storedCredentials(pass, salt, iters)
	if err != nil {
		return "", fmt.Errorf("obtaining stored credentials: %w", err)
	}
	h := fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.name,
		iters, salt,
		base64.StdEncoding.EncodeToString(sc.StoredKey),
		base64.StdEncoding.EncodeToString(sc.ServerKey),
	)
	return h, nil
}

func (m *Mechanism) storedCredentials(
	pass, salt string, iters int,
) (*scram.StoredCredentials, error) {
	c, err := m.hashGenerator.NewClient("username", pass, "authzID")
	if err != nil {
		return nil, fmt.Errorf("creating SCRAM client: %w", err)
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 salt: %w", err)
	}
	// These options only matter for NewConversation which is not
	// called here.
	c = c.WithMinIterations(iters).WithNonceGenerator(func() string {
		return salt
	})
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt:  string(saltBytes),
		Iters: iters,
	})
	return &sc, nil
}

// Verify reports if pass matches the encoded hash string which must
// be produced by the same mechanism. The stored and server keys are
// recomputed using the encoded salt and iterations and compared in
// constant time. Malformed strings cause an error.
func (m *Mechanism) Verify(pass, encoded string) (bool, error) {
	rest, ok := strings.CutPrefix(encoded, m.name+"$")
	if !ok {
		return false, fmt.Errorf("%w: want %s", hash.ErrUnknownScheme, m.name)
	}
	params, keys, ok := strings.Cut(rest, "$")
	if !ok {
		return false, errors.New("missing keys section")
	}
	itersStr, salt, ok := strings.Cut(params, ":")
	if !ok {
		return false, errors.New("missing salt")
	}
	iters, err := strconv.Atoi(itersStr)
	if err != nil || iters < 4096 {
		return false, fmt.Errorf("invalid iterations count: %q", itersStr)
	}
	storedKey, serverKey, ok := strings.Cut(keys, ":")
	if !ok {
		return false, errors.New("missing server key")
	}
	if pass == "" {
		return false, nil
	}
	sc, err := m.storedCredentials(pass, salt, iters)
	if err != nil {
		return false, fmt.Errorf("obtaining stored credentials: %w", err)
	}
	a := base64.StdEncoding.EncodeToString(sc.StoredKey) + ":" +
		base64.StdEncoding.EncodeToString(sc.ServerKey)
	b := storedKey + ":" + serverKey
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1, nil
}

// Hasher implements the hash.Hasher interface using a Mechanism with
// a fixed iterations count and random salts.
type Hasher struct {
	m     *Mechanism
	iters int
}

// HasherOption configures a Hasher.
type HasherOption func(h *Hasher) error

// WithIters option configures the iterations count of a Hasher.
func WithIters(iters int) HasherOption {
	return func(h *Hasher) error {
		if iters < 4096 {
			return fmt.Errorf("iters (%d) is less than 4096", iters)
		}
		h.iters = iters
		return nil
	}
}

// NewHasher instantiates a Hasher for the m mechanism.
func NewHasher(m *Mechanism, opts ...HasherOption) (*Hasher, error) {
	h := &Hasher{m: m, iters: DefaultIters}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Hash computes a SCRAM hash string for secret with a random salt.
func (h *Hasher) Hash(secret string) (string, error) {
	return h.m.Hash(secret, "", h.iters)
}

// Verify reports if secret matches the encoded SCRAM hash string.
func (h *Hasher) Verify(secret, encoded string) (bool, error) {
	return h.m.Verify(secret, encoded)
}

// Prefix returns the scheme prefix of the produced hash strings.
func (h *Hasher) Prefix() string {
	return h.m.name + "$"
}
