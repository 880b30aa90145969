// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration which is read from and written to the
// config files in a human-readable format. In addition to the
// time.ParseDuration format, a whole number of days like 30d is
// accepted since token lifetimes are usually expressed in days.
type Duration time.Duration

const day = 24 * time.Hour

// UnmarshalText parses data like 90m, 12h, 1h30m, or 30d. The d
// receiver is only updated in absence of errors.
func (d *Duration) UnmarshalText(data []byte) error {
	s := string(data)
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.ParseUint(n, 10, 16)
		if err != nil {
			return fmt.Errorf("parsing days of %q: %w", s, err)
		}
		*d = Duration(time.Duration(days) * day)
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dd)
	return nil
}

// String formats d without the zero trailing units, e.g., 2h instead
// of 2h0m0s, and whole days as 30d.
func (d Duration) String() string {
	td := time.Duration(d)
	if td != 0 && td%day == 0 {
		return strconv.FormatInt(int64(td/day), 10) + "d"
	}
	s := td.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d Duration) LogValue() slog.Value {
	return slog.StringValue(d.String())
}
