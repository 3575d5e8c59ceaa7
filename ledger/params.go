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
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// GenesisHash is the genesis hash of the engine's ledger.
var GenesisHash = [32]byte{
	0x9b, 0x01, 0x08, 0xe3, 0xf2, 0x51, 0x2d, 0x36, 0x1f, 0xd9, 0x01, 0x7a, 0x9c, 0x07, 0x8a, 0x60,
	0xe3, 0x8d, 0x52, 0xc5, 0x44, 0xe9, 0x3c, 0x57, 0xeb, 0xd8, 0x39, 0xa9, 0xb9, 0xdf, 0x77, 0x40,
}

// SuggestedParams returns transaction parameters valid in every block the
// engine evaluates: rounds 1 to 1000 and a flat minimum fee.
func SuggestedParams() types.SuggestedParams {
	return types.SuggestedParams{
		Fee:             1000,
		MinFee:          1000,
		FlatFee:         true,
		FirstRoundValid: 1,
		LastRoundValid:  1000,
		GenesisHash:     GenesisHash[:],
	}
}

// GenerateAccounts returns n new accounts.
func GenerateAccounts(n int) []crypto.Account {
	accounts := make([]crypto.Account, n)
	for i := range accounts {
		accounts[i] = crypto.GenerateAccount()
	}
	return accounts
}

// SignTransaction signs txn with acct's key.
func SignTransaction(acct crypto.Account, txn types.Transaction) (types.SignedTxn, error) {
	var stxn types.SignedTxn
	_, raw, err := crypto.SignTransaction(acct.PrivateKey, txn)
	if err != nil {
		return stxn, err
	}
	err = msgpack.Decode(raw, &stxn)
	return stxn, err
}
