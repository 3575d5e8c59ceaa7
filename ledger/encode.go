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
	"fmt"
	"maps"
	"slices"

	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/ledger/encoded"
	"github.com/algorand/go-algojig/ledger/store"
)

// encode builds the rows the engine reads from the model. Accounts are
// emitted in creation order and every other collection in id order, so the
// same model always encodes to the same rows.
//
// The position of an account in Snapshot.Accounts is its arena index: the
// store writer turns it into the accountbase rowid its resources refer to.
// Nothing of it is kept on the model.
func (l *JigLedger) encode() (*store.Snapshot, error) {
	if err := l.checkCreators(); err != nil {
		return nil, err
	}

	appAccounts := make(map[types.Address]basics.AppIndex, len(l.apps))
	createdApps := make(map[types.Address][]basics.AppIndex)
	for _, cidx := range l.creatables.sorted(basics.AppCreatable) {
		appID := basics.AppIndex(cidx)
		appAccounts[appID.Address()] = appID
		creator := l.apps[appID].Creator
		createdApps[creator] = append(createdApps[creator], appID)
	}
	createdAssets := make(map[types.Address][]basics.AssetIndex)
	for _, cidx := range l.creatables.sorted(basics.AssetCreatable) {
		assetID := basics.AssetIndex(cidx)
		creator := l.assets[assetID].Creator
		createdAssets[creator] = append(createdAssets[creator], assetID)
	}

	snap := &store.Snapshot{
		Accounts:   make([]store.AccountRecord, 0, len(l.accountOrder)),
		TxnCounter: l.creatables.txnCounter(),
	}
	for _, addr := range l.accountOrder {
		rec, err := l.encodeAccount(addr, createdAssets[addr], createdApps[addr])
		if err != nil {
			return nil, err
		}
		if appID, ok := appAccounts[addr]; ok {
			rec.Data.TotalBoxes, rec.Data.TotalBoxBytes, err = l.boxTotals(appID)
			if err != nil {
				return nil, err
			}
		}
		snap.Accounts = append(snap.Accounts, rec)
	}

	for _, cidx := range l.creatables.sorted(basics.AssetCreatable) {
		creator := l.assets[basics.AssetIndex(cidx)].Creator
		snap.Creatables = append(snap.Creatables, store.CreatableRecord{Index: cidx, Type: basics.AssetCreatable, Creator: creator})
	}
	for _, cidx := range l.creatables.sorted(basics.AppCreatable) {
		creator := l.apps[basics.AppIndex(cidx)].Creator
		snap.Creatables = append(snap.Creatables, store.CreatableRecord{Index: cidx, Type: basics.AppCreatable, Creator: creator})
	}

	for _, appID := range slices.Sorted(maps.Keys(l.boxes)) {
		boxes := l.boxes[appID]
		for _, name := range slices.Sorted(maps.Keys(boxes)) {
			snap.KVs = append(snap.KVs, store.KVRecord{Key: encoded.BoxKey(appID, name), Value: boxes[name].Value})
		}
	}
	return snap, nil
}

// checkCreators verifies every asset and app creator is an account of the
// model.
func (l *JigLedger) checkCreators() error {
	for _, cidx := range l.creatables.sorted(basics.AssetCreatable) {
		creator := l.assets[basics.AssetIndex(cidx)].Creator
		if _, ok := l.accounts[creator]; !ok {
			return EncodeError{Address: creator, Reason: fmt.Sprintf("creator of asset %d is not in the ledger", cidx)}
		}
	}
	for _, cidx := range l.creatables.sorted(basics.AppCreatable) {
		creator := l.apps[basics.AppIndex(cidx)].Creator
		if _, ok := l.accounts[creator]; !ok {
			return EncodeError{Address: creator, Reason: fmt.Sprintf("creator of app %d is not in the ledger", cidx)}
		}
	}
	return nil
}

func (l *JigLedger) encodeAccount(addr types.Address, assets []basics.AssetIndex, apps []basics.AppIndex) (store.AccountRecord, error) {
	acct := l.accounts[addr]
	rec := store.AccountRecord{
		Address: addr,
		Data: encoded.BaseAccountData{
			MicroAlgos:          acct.balances[0].Amount,
			AuthAddr:            acct.authAddr,
			TotalAssets:         uint64(len(acct.balances) - 1),
			TotalAppLocalStates: uint64(len(acct.localStates)),
			TotalAppParams:      uint64(len(apps)),
		},
	}

	// creator and holder of the same creatable share one record
	resources := make(map[basics.CreatableIndex]*encoded.ResourcesData)
	resource := func(cidx basics.CreatableIndex) *encoded.ResourcesData {
		rd, ok := resources[cidx]
		if !ok {
			data := encoded.MakeResourcesData()
			rd = &data
			resources[cidx] = rd
		}
		return rd
	}

	for assetID, b := range acct.balances {
		if assetID == 0 {
			continue
		}
		if _, ok := l.assets[assetID]; !ok {
			return rec, EncodeError{Address: addr, Reason: fmt.Sprintf("holds unknown asset %d", assetID)}
		}
		resource(basics.CreatableIndex(assetID)).SetAssetHolding(basics.AssetHolding{Amount: b.Amount, Frozen: b.Frozen})
	}
	for appID, kv := range acct.localStates {
		schema, err := l.localSchema(acct, appID)
		if err != nil {
			return rec, EncodeError{Address: addr, Reason: err.Error()}
		}
		resource(basics.CreatableIndex(appID)).SetAppLocalState(basics.AppLocalState{Schema: schema, KeyValue: kv})
	}
	for _, assetID := range assets {
		rd := resource(basics.CreatableIndex(assetID))
		rd.SetAssetParams(l.assets[assetID].AssetParams, rd.IsHolding())
	}
	for _, appID := range apps {
		app := l.apps[appID]
		rd := resource(basics.CreatableIndex(appID))
		rd.SetAppParams(basics.AppParams{
			ApprovalProgram:   app.ApprovalProgram,
			ClearStateProgram: app.ClearStateProgram,
			GlobalState:       l.globalStates[appID],
			StateSchemas: basics.StateSchemas{
				LocalStateSchema:  app.LocalStateSchema,
				GlobalStateSchema: app.GlobalStateSchema,
			},
			ExtraProgramPages: app.ExtraProgramPages,
		}, rd.IsHolding())
	}

	for _, cidx := range slices.Sorted(maps.Keys(resources)) {
		rec.Resources = append(rec.Resources, store.ResourceRecord{Index: cidx, Data: *resources[cidx]})
	}
	return rec, nil
}

// localSchema is the schema of acct's local state for appID: the app's own
// local schema while the app exists, else the schema the engine reported
// for the opt-in.
func (l *JigLedger) localSchema(acct *account, appID basics.AppIndex) (basics.StateSchema, error) {
	if app, ok := l.apps[appID]; ok {
		return app.LocalStateSchema, nil
	}
	if schema, ok := acct.localSchemas[appID]; ok {
		return schema, nil
	}
	return basics.StateSchema{}, fmt.Errorf("has local state for unknown app %d", appID)
}

// boxTotals is the box count and TotalBoxBytes of an app account.
func (l *JigLedger) boxTotals(appID basics.AppIndex) (count uint64, size uint64, err error) {
	var ot basics.OverflowTracker
	for name, box := range l.boxes[appID] {
		size = ot.Add(size, encoded.BoxSize(name, box.Value))
		count++
	}
	if ot.Overflowed {
		return 0, 0, EncodeError{Address: appID.Address(), Reason: "box bytes overflow"}
	}
	return count, size, nil
}
