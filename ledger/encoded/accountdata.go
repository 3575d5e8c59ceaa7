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

// Package encoded holds the field-tagged records the engine's account
// tracker stores in its accountbase, resources and kvstore tables.
package encoded

import (
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// BaseAccountData is the accountbase.data record of an account.
type BaseAccountData struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Status                     uint64        `codec:"a"`
	MicroAlgos                 uint64        `codec:"b"`
	RewardsBase                uint64        `codec:"c"`
	RewardedMicroAlgos         uint64        `codec:"d"`
	AuthAddr                   types.Address `codec:"e"`
	TotalAppSchemaNumUint      uint64        `codec:"f"`
	TotalAppSchemaNumByteSlice uint64        `codec:"g"`
	TotalExtraAppPages         uint32        `codec:"h"`
	TotalAssetParams           uint64        `codec:"i"`
	TotalAssets                uint64        `codec:"j"`
	TotalAppParams             uint64        `codec:"k"`
	TotalAppLocalStates        uint64        `codec:"l"`
	TotalBoxes                 uint64        `codec:"m"`
	TotalBoxBytes              uint64        `codec:"n"`

	// UpdateRound is the round that modified this account data last.
	UpdateRound uint64 `codec:"z"`
}

// IsEmpty return true if any of the fields other then the UpdateRound are non-zero.
func (ba *BaseAccountData) IsEmpty() bool {
	return ba.Status == 0 &&
		ba.MicroAlgos == 0 &&
		ba.RewardsBase == 0 &&
		ba.RewardedMicroAlgos == 0 &&
		ba.AuthAddr.IsZero() &&
		ba.TotalAppSchemaNumUint == 0 &&
		ba.TotalAppSchemaNumByteSlice == 0 &&
		ba.TotalExtraAppPages == 0 &&
		ba.TotalAssetParams == 0 &&
		ba.TotalAssets == 0 &&
		ba.TotalAppParams == 0 &&
		ba.TotalAppLocalStates == 0 &&
		ba.TotalBoxes == 0 &&
		ba.TotalBoxBytes == 0
}
