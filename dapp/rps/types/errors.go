// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "errors"

var (
	ErrInvalidIdentity = errors.New("Invalid address for host or opponent.")
	ErrInvalidMove     = errors.New("Invalid move, must be one of Rock, Paper, Scissors.")
	ErrCallerBlocked   = errors.New("The host address is blacklisted, can't start a match.")
	ErrDuplicateMatch  = errors.New("The host and opponent already have a match.")
	ErrNoSuchMatch     = errors.New("No match found for the host and opponent.")
	ErrUnauthorized    = errors.New("Only the admin can do this.")
	ErrMatchNotFound   = errors.New("Match not found.")
	ErrAlreadyBlocked  = errors.New("The address is already blacklisted.")
	ErrNotBlocked      = errors.New("The address is not blacklisted.")
)
