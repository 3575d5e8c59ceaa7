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
	"maps"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/engine"
	"github.com/algorand/go-algojig/ledger/encoded"
	"github.com/algorand/go-algojig/logging"
)

type boxRef struct {
	app  basics.AppIndex
	name string
}

// merge folds an eval result into the model. Reported accounts are replaced
// wholesale; accounts the engine did not report are left as they are. The
// box map of a result holds every box of the ledger, so boxes it omits are
// deleted. A result without a box map leaves the boxes untouched.
func (l *JigLedger) merge(res *engine.Result, log logging.Logger) {
	oldAssets := slices.Collect(maps.Keys(l.assets))

	for _, addr := range sortedAddresses(res.Accounts) {
		l.mergeAccount(addr, res.Accounts[addr], log)
	}
	l.rawAccounts = res.Accounts

	for _, id := range oldAssets {
		if _, ok := l.assets[id]; !ok {
			log.Debugf("deleted asset %d", id)
		}
	}
	for id := range l.assets {
		if !slices.Contains(oldAssets, id) {
			log.Debugf("new asset %d", id)
		}
	}

	if res.Boxes != nil {
		l.mergeBoxes(res.Boxes, log)
	}

	blk := res.Block
	l.lastBlock = &blk
}

func sortedAddresses(accounts map[types.Address]basics.AccountData) []types.Address {
	addrs := slices.Collect(maps.Keys(accounts))
	slices.SortFunc(addrs, func(a, b types.Address) int {
		return slices.Compare(a[:], b[:])
	})
	return addrs
}

func (l *JigLedger) mergeAccount(addr types.Address, ad basics.AccountData, log logging.Logger) {
	acct := l.ensureAccount(addr)

	// asset parameters: the creator's view is complete, so assets it no
	// longer reports were destroyed
	for _, cidx := range l.creatables.sorted(basics.AssetCreatable) {
		assetID := basics.AssetIndex(cidx)
		if _, ok := ad.AssetParams[assetID]; !ok && l.assets[assetID].Creator == addr {
			delete(l.assets, assetID)
			l.creatables.remove(cidx)
		}
	}
	for _, assetID := range ad.SortedAssetParams() {
		if _, ok := l.assets[assetID]; !ok {
			if _, err := l.creatables.allocate(basics.CreatableIndex(assetID), basics.AssetCreatable); err != nil {
				log.Warnf("asset %d reported by %s: %v", assetID, addr, err)
				continue
			}
		}
		l.assets[assetID] = &Asset{Creator: addr, AssetParams: ad.AssetParams[assetID]}
	}

	acct.balances = map[basics.AssetIndex]Balance{0: {Amount: ad.MicroAlgos}}
	for assetID, h := range ad.Assets {
		acct.balances[assetID] = Balance{Amount: h.Amount, Frozen: h.Frozen}
	}
	// the creator keeps a holding even when the engine omits a zero one
	for assetID := range ad.AssetParams {
		if _, ok := acct.balances[assetID]; !ok {
			acct.balances[assetID] = Balance{}
		}
	}

	acct.authAddr = ad.AuthAddr

	acct.localStates = make(map[basics.AppIndex]basics.TealKeyValue, len(ad.AppLocalStates))
	acct.localSchemas = make(map[basics.AppIndex]basics.StateSchema, len(ad.AppLocalStates))
	for appID, ls := range ad.AppLocalStates {
		acct.localSchemas[appID] = ls.Schema
		kv := ls.KeyValue.Clone()
		if kv == nil {
			kv = make(basics.TealKeyValue)
		}
		acct.localStates[appID] = kv
	}

	// Opted-in accounts keep their local state of a deleted app until they
	// clear it; their reported schema carries it through encoding.
	for _, cidx := range l.creatables.sorted(basics.AppCreatable) {
		appID := basics.AppIndex(cidx)
		if _, ok := ad.AppParams[appID]; !ok && l.apps[appID].Creator == addr {
			l.keepLocalSchemas(appID)
			delete(l.apps, appID)
			delete(l.globalStates, appID)
			l.creatables.remove(cidx)
			log.Debugf("deleted app %d", appID)
		}
	}
	for _, appID := range ad.SortedAppParams() {
		ap := ad.AppParams[appID]
		// Bytecode of apps the model already tracks is kept as it is, so a
		// Program registered for diagnostics stays consistent with it.
		if _, ok := l.apps[appID]; !ok {
			if _, err := l.creatables.allocate(basics.CreatableIndex(appID), basics.AppCreatable); err != nil {
				log.Warnf("app %d reported by %s: %v", appID, addr, err)
				continue
			}
			l.apps[appID] = &App{
				Creator:           addr,
				ApprovalProgram:   ap.ApprovalProgram,
				ClearStateProgram: ap.ClearStateProgram,
				LocalStateSchema:  ap.LocalStateSchema,
				GlobalStateSchema: ap.GlobalStateSchema,
				ExtraProgramPages: ap.ExtraProgramPages,
			}
			log.Debugf("new app %d", appID)
		}
		gs := ap.GlobalState.Clone()
		if gs == nil {
			gs = make(basics.TealKeyValue)
		}
		l.globalStates[appID] = gs
	}
}

// keepLocalSchemas records the local schema of appID on every opted-in
// account that has no engine-reported schema for it.
func (l *JigLedger) keepLocalSchemas(appID basics.AppIndex) {
	schema := l.apps[appID].LocalStateSchema
	for _, acct := range l.accounts {
		if _, optedIn := acct.localStates[appID]; !optedIn {
			continue
		}
		if _, ok := acct.localSchemas[appID]; !ok {
			acct.localSchemas[appID] = schema
		}
	}
}

func (l *JigLedger) mergeBoxes(boxes map[string][]byte, log logging.Logger) {
	reported := mapset.NewThreadUnsafeSet[boxRef]()
	for _, key := range slices.Sorted(maps.Keys(boxes)) {
		appID, name, err := encoded.SplitBoxKey(key)
		if err != nil {
			log.Warnf("skipping kv entry %q: %v", key, err)
			continue
		}
		reported.Add(boxRef{app: appID, name: name})
		l.SetBox(appID, name, boxes[key])
	}

	var pruned int
	for appID, named := range l.boxes {
		for name := range named {
			if !reported.Contains(boxRef{app: appID, name: name}) {
				l.DeleteBox(appID, name)
				pruned++
			}
		}
	}
	log.Debugf("merged %d boxes, pruned %d", reported.Cardinality(), pruned)
}
