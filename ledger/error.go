// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-algojig
//
// go-algojig is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algojig is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algojig.  If not, see <https://www.gnu.org/licenses/>.

package ledger

import (
	"errors"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algorand/go-algojig/data/basics"
)

// ErrAssetIDRequired is returned by OptInAsset for asset 0, which every
// account holds implicitly.
var ErrAssetIDRequired = errors.New("opt-in requires an asset id")

// ErrWorkDirBusy is returned when another harness holds the work directory.
var ErrWorkDirBusy = errors.New("work directory is in use by another harness")

// ErrNoEntry is returned when reading state that was never set.
type ErrNoEntry struct {
	What string
}

// Error satisfies builtin interface `error`
func (err ErrNoEntry) Error() string {
	return fmt.Sprintf("ledger does not have %s", err.What)
}

// UnknownAccountError is returned when an operation names an account the
// ledger does not hold.
type UnknownAccountError struct {
	Address types.Address
}

// Error satisfies builtin interface `error`
func (err UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account %s", err.Address)
}

// ErrNegativeBalance is returned when a debit would take a balance below 0.
type ErrNegativeBalance struct {
	Address types.Address
	Asset   basics.AssetIndex
	Balance uint64
	Amount  uint64
}

// Error satisfies builtin interface `error`
func (err ErrNegativeBalance) Error() string {
	return fmt.Sprintf("account %s balance %d of asset %d is less than %d", err.Address, err.Balance, err.Asset, err.Amount)
}

// BalanceOverflowError is returned when a credit would overflow a balance.
type BalanceOverflowError struct {
	Address types.Address
	Asset   basics.AssetIndex
}

// Error satisfies builtin interface `error`
func (err BalanceOverflowError) Error() string {
	return fmt.Sprintf("account %s balance of asset %d overflows", err.Address, err.Asset)
}

// CreatableExistsError is returned when creating an asset or app with an id
// already in use. Assets and apps share the id space.
type CreatableExistsError struct {
	Index basics.CreatableIndex
	Type  basics.CreatableType
}

// Error satisfies builtin interface `error`
func (err CreatableExistsError) Error() string {
	kind := "asset"
	if err.Type == basics.AppCreatable {
		kind = "app"
	}
	return fmt.Sprintf("id %d is already used by %s %d", err.Index, kind, err.Index)
}

// EncodeError is returned when the model cannot be written for the engine
// because it refers to something it does not hold.
type EncodeError struct {
	Address types.Address
	Reason  string
}

// Error satisfies builtin interface `error`
func (err EncodeError) Error() string {
	return fmt.Sprintf("cannot encode account %s: %s", err.Address, err.Reason)
}
