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

package encoded

import (
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algorand/go-algojig/data/basics"
)

// ResourceFlags tells the engine which parts of a ResourcesData record are
// meaningful.
type ResourceFlags uint8

const (
	// ResourceFlagsHolding - the resource contains the holding of asset/app.
	ResourceFlagsHolding ResourceFlags = 0
	// ResourceFlagsNotHolding - the account does not hold or is not opted in to the resource.
	ResourceFlagsNotHolding ResourceFlags = 1
	// ResourceFlagsOwnership - the resource contains the asset parameter or application parameters.
	ResourceFlagsOwnership ResourceFlags = 2
	// ResourceFlagsEmptyAsset - this is an asset resource, and it is empty.
	ResourceFlagsEmptyAsset ResourceFlags = 4
	// ResourceFlagsEmptyApp - this is an app resource, and it is empty.
	ResourceFlagsEmptyApp ResourceFlags = 8
)

// ResourcesData is the resources.data record of one (account, creatable)
// pair. Asset and application fields share the record; ResourceFlags says
// which of them are in use.
type ResourcesData struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	// asset parameters ( basics.AssetParams )
	Total         uint64        `codec:"a"`
	Decimals      uint32        `codec:"b"`
	DefaultFrozen bool          `codec:"c"`
	UnitName      string        `codec:"d"`
	AssetName     string        `codec:"e"`
	URL           string        `codec:"f"`
	MetadataHash  [32]byte      `codec:"g"`
	Manager       types.Address `codec:"h"`
	Reserve       types.Address `codec:"i"`
	Freeze        types.Address `codec:"j"`
	Clawback      types.Address `codec:"k"`

	// asset holding ( basics.AssetHolding )
	Amount uint64 `codec:"l"`
	Frozen bool   `codec:"m"`

	// application local state ( basics.AppLocalState )
	SchemaNumUint      uint64              `codec:"n"`
	SchemaNumByteSlice uint64              `codec:"o"`
	KeyValue           basics.TealKeyValue `codec:"p"`

	// application global params ( basics.AppParams )
	ApprovalProgram               []byte              `codec:"q,allocbound=-"`
	ClearStateProgram             []byte              `codec:"r,allocbound=-"`
	GlobalState                   basics.TealKeyValue `codec:"s"`
	LocalStateSchemaNumUint       uint64              `codec:"t"`
	LocalStateSchemaNumByteSlice  uint64              `codec:"u"`
	GlobalStateSchemaNumUint      uint64              `codec:"v"`
	GlobalStateSchemaNumByteSlice uint64              `codec:"w"`
	ExtraProgramPages             uint32              `codec:"x"`

	// ResourceFlags is needed because both the holdings and the parameters
	// are allowed to be all at their default values.
	ResourceFlags ResourceFlags `codec:"y"`

	UpdateRound uint64 `codec:"z"`
}

// MakeResourcesData returns a new empty instance of ResourcesData.
// Using this constructor method is necessary because of the ResourceFlags field.
func MakeResourcesData() ResourcesData {
	return ResourcesData{ResourceFlags: ResourceFlagsNotHolding}
}

// IsHolding reports whether the account holds the asset or is opted in to the app.
func (rd *ResourcesData) IsHolding() bool {
	return (rd.ResourceFlags & ResourceFlagsNotHolding) == ResourceFlagsHolding
}

// IsOwning reports whether the account created the resource.
func (rd *ResourcesData) IsOwning() bool {
	return (rd.ResourceFlags & ResourceFlagsOwnership) == ResourceFlagsOwnership
}

// IsEmpty reports whether the record describes neither an asset nor an app.
func (rd *ResourcesData) IsEmpty() bool {
	return !rd.IsApp() && !rd.IsAsset()
}

// IsEmptyAppFields reports whether every application field is zero.
func (rd *ResourcesData) IsEmptyAppFields() bool {
	return rd.SchemaNumUint == 0 &&
		rd.SchemaNumByteSlice == 0 &&
		len(rd.KeyValue) == 0 &&
		len(rd.ApprovalProgram) == 0 &&
		len(rd.ClearStateProgram) == 0 &&
		len(rd.GlobalState) == 0 &&
		rd.LocalStateSchemaNumUint == 0 &&
		rd.LocalStateSchemaNumByteSlice == 0 &&
		rd.GlobalStateSchemaNumUint == 0 &&
		rd.GlobalStateSchemaNumByteSlice == 0 &&
		rd.ExtraProgramPages == 0
}

// IsApp reports whether the record describes an application.
func (rd *ResourcesData) IsApp() bool {
	if (rd.ResourceFlags & ResourceFlagsEmptyApp) == ResourceFlagsEmptyApp {
		return true
	}
	return !rd.IsEmptyAppFields()
}

// IsEmptyAssetFields reports whether every asset field is zero.
func (rd *ResourcesData) IsEmptyAssetFields() bool {
	return rd.Amount == 0 &&
		!rd.Frozen &&
		rd.Total == 0 &&
		rd.Decimals == 0 &&
		!rd.DefaultFrozen &&
		rd.UnitName == "" &&
		rd.AssetName == "" &&
		rd.URL == "" &&
		rd.MetadataHash == [32]byte{} &&
		rd.Manager.IsZero() &&
		rd.Reserve.IsZero() &&
		rd.Freeze.IsZero() &&
		rd.Clawback.IsZero()
}

// IsAsset reports whether the record describes an asset.
func (rd *ResourcesData) IsAsset() bool {
	if (rd.ResourceFlags & ResourceFlagsEmptyAsset) == ResourceFlagsEmptyAsset {
		return true
	}
	return !rd.IsEmptyAssetFields()
}

// SetAssetParams stores the parameters of an asset the account created.
// haveHoldings tells whether the account also holds the asset.
func (rd *ResourcesData) SetAssetParams(ap basics.AssetParams, haveHoldings bool) {
	rd.Total = ap.Total
	rd.Decimals = ap.Decimals
	rd.DefaultFrozen = ap.DefaultFrozen
	rd.UnitName = ap.UnitName
	rd.AssetName = ap.AssetName
	rd.URL = ap.URL
	rd.MetadataHash = ap.MetadataHash
	rd.Manager = ap.Manager
	rd.Reserve = ap.Reserve
	rd.Freeze = ap.Freeze
	rd.Clawback = ap.Clawback
	rd.ResourceFlags |= ResourceFlagsOwnership
	if !haveHoldings {
		rd.ResourceFlags |= ResourceFlagsNotHolding
	}
	rd.ResourceFlags &= ^ResourceFlagsEmptyAsset
	if rd.IsEmptyAssetFields() {
		rd.ResourceFlags |= ResourceFlagsEmptyAsset
	}
}

// GetAssetParams returns the asset parameters held in the record.
func (rd *ResourcesData) GetAssetParams() basics.AssetParams {
	return basics.AssetParams{
		Total:         rd.Total,
		Decimals:      rd.Decimals,
		DefaultFrozen: rd.DefaultFrozen,
		UnitName:      rd.UnitName,
		AssetName:     rd.AssetName,
		URL:           rd.URL,
		MetadataHash:  rd.MetadataHash,
		Manager:       rd.Manager,
		Reserve:       rd.Reserve,
		Freeze:        rd.Freeze,
		Clawback:      rd.Clawback,
	}
}

// SetAssetHolding stores the account's holding of an asset.
func (rd *ResourcesData) SetAssetHolding(ah basics.AssetHolding) {
	rd.Amount = ah.Amount
	rd.Frozen = ah.Frozen
	rd.ResourceFlags &= ^(ResourceFlagsNotHolding + ResourceFlagsEmptyAsset)
	// ResourceFlagsHolding is set implicitly since it is zero
	if rd.IsEmptyAssetFields() {
		rd.ResourceFlags |= ResourceFlagsEmptyAsset
	}
}

// GetAssetHolding returns the asset holding held in the record.
func (rd *ResourcesData) GetAssetHolding() basics.AssetHolding {
	return basics.AssetHolding{
		Amount: rd.Amount,
		Frozen: rd.Frozen,
	}
}

// SetAppLocalState stores the account's local state for an app it opted in to.
func (rd *ResourcesData) SetAppLocalState(als basics.AppLocalState) {
	rd.SchemaNumUint = als.Schema.NumUint
	rd.SchemaNumByteSlice = als.Schema.NumByteSlice
	rd.KeyValue = als.KeyValue
	rd.ResourceFlags &= ^(ResourceFlagsEmptyApp + ResourceFlagsNotHolding)
	if rd.IsEmptyAppFields() {
		rd.ResourceFlags |= ResourceFlagsEmptyApp
	}
}

// GetAppLocalState returns the local state held in the record.
func (rd *ResourcesData) GetAppLocalState() basics.AppLocalState {
	return basics.AppLocalState{
		Schema: basics.StateSchema{
			NumUint:      rd.SchemaNumUint,
			NumByteSlice: rd.SchemaNumByteSlice,
		},
		KeyValue: rd.KeyValue,
	}
}

// SetAppParams stores the parameters of an app the account created.
// haveHoldings tells whether the account is also opted in to the app.
func (rd *ResourcesData) SetAppParams(ap basics.AppParams, haveHoldings bool) {
	rd.ApprovalProgram = ap.ApprovalProgram
	rd.ClearStateProgram = ap.ClearStateProgram
	rd.GlobalState = ap.GlobalState
	rd.LocalStateSchemaNumUint = ap.LocalStateSchema.NumUint
	rd.LocalStateSchemaNumByteSlice = ap.LocalStateSchema.NumByteSlice
	rd.GlobalStateSchemaNumUint = ap.GlobalStateSchema.NumUint
	rd.GlobalStateSchemaNumByteSlice = ap.GlobalStateSchema.NumByteSlice
	rd.ExtraProgramPages = ap.ExtraProgramPages
	rd.ResourceFlags |= ResourceFlagsOwnership
	if !haveHoldings {
		rd.ResourceFlags |= ResourceFlagsNotHolding
	}
	rd.ResourceFlags &= ^ResourceFlagsEmptyApp
	if rd.IsEmptyAppFields() {
		rd.ResourceFlags |= ResourceFlagsEmptyApp
	}
}

// GetAppParams returns the application parameters held in the record.
func (rd *ResourcesData) GetAppParams() basics.AppParams {
	return basics.AppParams{
		ApprovalProgram:   rd.ApprovalProgram,
		ClearStateProgram: rd.ClearStateProgram,
		GlobalState:       rd.GlobalState,
		StateSchemas: basics.StateSchemas{
			LocalStateSchema: basics.StateSchema{
				NumUint:      rd.LocalStateSchemaNumUint,
				NumByteSlice: rd.LocalStateSchemaNumByteSlice,
			},
			GlobalStateSchema: basics.StateSchema{
				NumUint:      rd.GlobalStateSchemaNumUint,
				NumByteSlice: rd.GlobalStateSchemaNumByteSlice,
			},
		},
		ExtraProgramPages: rd.ExtraProgramPages,
	}
}
