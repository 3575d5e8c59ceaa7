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

package basics

import (
	"maps"
	"slices"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// AssetIndex is the unique integer index of an asset. Asset 0 denotes the
// native currency and is never a created asset.
type AssetIndex uint64

// AppIndex is the unique integer index of an application.
type AppIndex uint64

// CreatableIndex represents either an AssetIndex or AppIndex, which come from
// the same namespace of indices as each other (both assets and apps are
// "creatables")
type CreatableIndex uint64

// CreatableType is an enum representing whether or not a given creatable is an
// application or an asset
type CreatableType uint64

const (
	// AssetCreatable is the CreatableType corresponding to assets
	AssetCreatable CreatableType = 0

	// AppCreatable is the CreatableType corresponds to apps
	AppCreatable CreatableType = 1
)

// Address yields the "app address" of the app
func (app AppIndex) Address() types.Address {
	return crypto.GetApplicationAddress(uint64(app))
}

// AssetHolding describes an asset held by an account.
type AssetHolding struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Amount uint64 `codec:"a"`
	Frozen bool   `codec:"f"`
}

// AssetParams describes the parameters of an asset.
type AssetParams struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// Total specifies the total number of units of this asset
	// created.
	Total uint64 `codec:"t"`

	// Decimals specifies the number of digits to display after the decimal
	// place when displaying this asset.
	Decimals uint32 `codec:"dc"`

	// DefaultFrozen specifies whether slots for this asset
	// in user accounts are frozen by default or not.
	DefaultFrozen bool `codec:"df"`

	UnitName  string `codec:"un"`
	AssetName string `codec:"an"`
	URL       string `codec:"au"`

	// MetadataHash specifies a commitment to some unspecified asset
	// metadata. The format of this metadata is up to the application.
	MetadataHash [32]byte `codec:"am"`

	Manager  types.Address `codec:"m"`
	Reserve  types.Address `codec:"r"`
	Freeze   types.Address `codec:"f"`
	Clawback types.Address `codec:"c"`
}

// AppLocalState stores the LocalState associated with an application. It also
// stores a cached copy of the application's LocalStateSchema.
type AppLocalState struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Schema   StateSchema  `codec:"hsch"`
	KeyValue TealKeyValue `codec:"tkv"`
}

// AppParams stores the global information associated with an application
type AppParams struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	ApprovalProgram   []byte       `codec:"approv,allocbound=-"`
	ClearStateProgram []byte       `codec:"clearp,allocbound=-"`
	GlobalState       TealKeyValue `codec:"gs"`
	StateSchemas
	ExtraProgramPages uint32 `codec:"epp"`
	Version           uint64 `codec:"v"`
}

// Clone returns a copy of some AppParams that may be modified without
// affecting the original
func (ap *AppParams) Clone() (res AppParams) {
	res = *ap
	res.ApprovalProgram = slices.Clone(ap.ApprovalProgram)
	res.ClearStateProgram = slices.Clone(ap.ClearStateProgram)
	res.GlobalState = ap.GlobalState.Clone()
	return
}

// Clone returns a copy of some AppLocalState that may be modified without
// affecting the original
func (al *AppLocalState) Clone() (res AppLocalState) {
	res = *al
	res.KeyValue = al.KeyValue.Clone()
	return
}

// AccountData is the post-evaluation view of an account as reported by the
// engine. Only the fields the harness folds back into its model are
// declared; the decoder skips the rest.
type AccountData struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	MicroAlgos uint64 `codec:"algo"`

	// AssetParams holds the parameters of the assets created by this account.
	AssetParams map[AssetIndex]AssetParams `codec:"apar,allocbound=-"`

	// Assets is the set of assets held by this account, keyed by asset id.
	Assets map[AssetIndex]AssetHolding `codec:"asset,allocbound=-"`

	// AuthAddr is the address against which signatures/multisigs/logicsigs
	// should be checked. Zero means the account's own address.
	AuthAddr types.Address `codec:"spend"`

	// AppLocalStates stores the local states associated with any applications
	// that this account has opted in to.
	AppLocalStates map[AppIndex]AppLocalState `codec:"appl,allocbound=-"`

	// AppParams stores the global parameters and state associated with any
	// applications that this account has created.
	AppParams map[AppIndex]AppParams `codec:"appp,allocbound=-"`

	TotalAppSchema     StateSchema `codec:"tsch"`
	TotalExtraAppPages uint32      `codec:"teap"`
	TotalBoxes         uint64      `codec:"tbx"`
	TotalBoxBytes      uint64      `codec:"tbxb"`
}

// SortedAssets returns the held asset ids in ascending order.
func (u AccountData) SortedAssets() []AssetIndex {
	return slices.Sorted(maps.Keys(u.Assets))
}

// SortedAssetParams returns the created asset ids in ascending order.
func (u AccountData) SortedAssetParams() []AssetIndex {
	return slices.Sorted(maps.Keys(u.AssetParams))
}

// SortedAppLocalStates returns the opted-in app ids in ascending order.
func (u AccountData) SortedAppLocalStates() []AppIndex {
	return slices.Sorted(maps.Keys(u.AppLocalStates))
}

// SortedAppParams returns the created app ids in ascending order.
func (u AccountData) SortedAppParams() []AppIndex {
	return slices.Sorted(maps.Keys(u.AppParams))
}
