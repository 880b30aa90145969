// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authuc

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/momeni/dispatch-pool/pkg/core/cerr"
)

// PIN and phone formats. A PIN has 4 to 8 digits. A phone number has
// 7 to 15 digits with an optional leading plus sign.
var (
	pinPattern   = regexp.MustCompile(`^[0-9]{4,8}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// ValidPin reports if pin has the accepted PIN format.
func ValidPin(pin string) bool {
	return pinPattern.MatchString(pin)
}

// ValidPhone reports if phone has the accepted phone number format
// after removal of spaces and dashes.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// NormalizePhone removes the spaces and dashes of a phone number.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(
		strings.TrimSpace(phone),
	)
}

func checkPin(pin string) error {
	if !ValidPin(pin) {
		return cerr.Invalid("PIN must have 4 to 8 digits")
	}
	return nil
}

// randomPin returns a uniformly random 6 digits PIN.
func randomPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
