/* Copyright 2025 ResearchOS Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package verification generates one-time email verification codes and
// evaluates their expiry and resend cooldown
package verification

import (
	"crypto/rand"
	"crypto/subtle"
	"io"
	"math"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

const (
	// CodeLength is the number of digits in a verification code
	CodeLength = 6
	// CodeTTL is how long a code stays valid after it is issued
	CodeTTL = 10 * time.Minute
	// ResendCooldown is the minimum interval between two issued codes
	ResendCooldown = 60 * time.Second

	codeMin = 100000
	codeMax = 999999
)

// Code is an issued verification code with its validity window
type Code struct {
	Value    string
	IssuedAt time.Time
	Expiry   time.Time
}

// Generator issues verification codes
type Generator struct {
	// Rand is the source of randomness. It defaults to crypto/rand.
	Rand io.Reader
}

// Generate returns a new 6 digit code in [100000, 999999] issued at now
func (g Generator) Generate(now time.Time) (Code, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}

	n, err := rand.Int(r, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return Code{}, errors.Wrap(err, "reading random number")
	}

	return Code{
		Value:    big.NewInt(0).Add(n, big.NewInt(codeMin)).String(),
		IssuedAt: now,
		Expiry:   ExpiryFor(now),
	}, nil
}

// Generate issues a code with the default generator
func Generate(now time.Time) (Code, error) {
	return Generator{}.Generate(now)
}

// ExpiryFor returns the expiry of a code issued at the given time
func ExpiryFor(issuedAt time.Time) time.Time {
	return issuedAt.Add(CodeTTL)
}

// IsExpired reports whether a code with the given expiry is no longer valid at now.
// A code is still valid at the exact expiry instant.
func IsExpired(expiry, now time.Time) bool {
	return now.After(expiry)
}

// Matches compares the submitted code against the stored one in constant time
func Matches(stored, submitted string) bool {
	if len(stored) != len(submitted) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// IsWellFormed reports whether s is exactly CodeLength ASCII digits
func IsWellFormed(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// IssuedAtFromExpiry reconstructs the issue time of a code from its expiry.
// It is only used for records that do not store the issue time.
func IssuedAtFromExpiry(expiry time.Time) time.Time {
	return expiry.Add(-CodeTTL)
}

// CooldownRemaining returns how long a caller must wait before another code
// can be issued. It is zero once ResendCooldown has elapsed since issuedAt.
func CooldownRemaining(issuedAt, now time.Time) time.Duration {
	elapsed := now.Sub(issuedAt)
	if elapsed >= ResendCooldown {
		return 0
	}

	return ResendCooldown - elapsed
}

// CeilSeconds rounds a positive duration up to whole seconds
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}

	return int(math.Ceil(d.Seconds()))
}
