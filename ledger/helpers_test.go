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
	"context"
	"fmt"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/require"

	"github.com/algorand/go-algojig/config"
	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/data/transactions/logic"
	"github.com/algorand/go-algojig/engine"
	"github.com/algorand/go-algojig/ledger/store"
	"github.com/algorand/go-algojig/logging"
	"github.com/algorand/go-algojig/protocol"
)

// fakeProgram resolves every pc to its single source line.
type fakeProgram struct {
	bytecode []byte
	line     string
}

func newFakeProgram(bytecode []byte, line string) *fakeProgram {
	return &fakeProgram{bytecode: bytecode, line: line}
}

func (p *fakeProgram) Bytecode() []byte {
	return p.bytecode
}

func (p *fakeProgram) Lookup(pc int) logic.SourceLocation {
	return logic.SourceLocation{Filename: "fake.teal", LineNo: 2, Line: p.line, PC: pc}
}

// evalFunc stands in for the engine's eval: it sees the databases the ledger
// wrote, read back as a snapshot, and the transaction group.
type evalFunc func(snap *store.Snapshot, stxns []types.SignedTxn) (*fakeResult, error)

type fakeResult struct {
	block    types.Block
	accounts map[types.Address]basics.AccountData
	boxes    map[string][]byte

	// raw replaces the encoded sections when set
	raw []byte
}

func (r *fakeResult) encode() []byte {
	if r.raw != nil {
		return r.raw
	}
	var out []byte
	out = append(out, protocol.EncodeReflect(&r.block)...)
	if r.accounts == nil {
		return out
	}
	out = append(out, protocol.EncodeReflect(r.accounts)...)
	if r.boxes == nil {
		return out
	}
	return append(out, protocol.EncodeReflect(r.boxes)...)
}

// fakeEvaluator lays out the engine databases itself and evaluates with an
// evalFunc, so the whole eval path runs without an engine binary.
type fakeEvaluator struct {
	t    *testing.T
	cfg  config.Local
	log  logging.Logger
	eval evalFunc

	inits     []int64
	stxns     []types.SignedTxn
	snapshots []*store.Snapshot
}

func newFakeEvaluator(t *testing.T, l *JigLedger, eval evalFunc) *fakeEvaluator {
	ev := &fakeEvaluator{t: t, cfg: l.cfg, log: logging.TestingLog(t), eval: eval}
	l.SetEvaluator(ev)
	return ev
}

func (ev *fakeEvaluator) Init(timestamp int64) error {
	ev.inits = append(ev.inits, timestamp)
	return store.CreateDatabases(context.Background(), ev.cfg, timestamp, ev.log)
}

func (ev *fakeEvaluator) WriteTransactions(stxns []types.SignedTxn) error {
	ev.stxns = stxns
	return engine.WriteTransactionsFile(ev.cfg.TransactionsPath(), stxns)
}

func (ev *fakeEvaluator) Eval() ([]byte, error) {
	snap, err := store.Read(context.Background(), ev.cfg, ev.log)
	require.NoError(ev.t, err)
	ev.snapshots = append(ev.snapshots, snap)

	res, err := ev.eval(snap, ev.stxns)
	if err != nil {
		return nil, err
	}
	return res.encode(), nil
}

// accountData rebuilds the engine's view of an account from its stored
// records.
func accountData(rec store.AccountRecord) basics.AccountData {
	ad := basics.AccountData{
		MicroAlgos: rec.Data.MicroAlgos,
		AuthAddr:   rec.Data.AuthAddr,
	}
	for _, r := range rec.Resources {
		rd := r.Data
		if rd.IsAsset() {
			aidx := basics.AssetIndex(r.Index)
			if rd.IsHolding() {
				if ad.Assets == nil {
					ad.Assets = make(map[basics.AssetIndex]basics.AssetHolding)
				}
				ad.Assets[aidx] = rd.GetAssetHolding()
			}
			if rd.IsOwning() {
				if ad.AssetParams == nil {
					ad.AssetParams = make(map[basics.AssetIndex]basics.AssetParams)
				}
				ad.AssetParams[aidx] = rd.GetAssetParams()
			}
		}
		if rd.IsApp() {
			aidx := basics.AppIndex(r.Index)
			if rd.IsHolding() {
				if ad.AppLocalStates == nil {
					ad.AppLocalStates = make(map[basics.AppIndex]basics.AppLocalState)
				}
				ad.AppLocalStates[aidx] = rd.GetAppLocalState()
			}
			if rd.IsOwning() {
				if ad.AppParams == nil {
					ad.AppParams = make(map[basics.AppIndex]basics.AppParams)
				}
				ad.AppParams[aidx] = rd.GetAppParams()
			}
		}
	}
	return ad
}

// snapshotBoxes returns the kvstore as the engine reports it.
func snapshotBoxes(snap *store.Snapshot) map[string][]byte {
	boxes := make(map[string][]byte, len(snap.KVs))
	for _, kv := range snap.KVs {
		boxes[kv.Key] = kv.Value
	}
	return boxes
}

// echoEval reports every account unchanged.
func echoEval(snap *store.Snapshot, stxns []types.SignedTxn) (*fakeResult, error) {
	res := &fakeResult{
		block:    testBlock(snap, stxns),
		accounts: make(map[types.Address]basics.AccountData),
		boxes:    snapshotBoxes(snap),
	}
	for _, rec := range snap.Accounts {
		res.accounts[rec.Address] = accountData(rec)
	}
	return res, nil
}

func testBlock(snap *store.Snapshot, stxns []types.SignedTxn) types.Block {
	blk := types.Block{
		BlockHeader: types.BlockHeader{Round: 2, TimeStamp: 1000, TxnCounter: snap.TxnCounter + uint64(len(stxns)), GenesisID: "algojig"},
	}
	for _, stxn := range stxns {
		blk.Payset = append(blk.Payset, types.SignedTxnInBlock{
			SignedTxnWithAD: types.SignedTxnWithAD{SignedTxn: stxn},
		})
	}
	return blk
}

// paymentEval applies payment transactions the way the engine does: the
// sender pays the amount plus the fee, and an overspend fails the group.
func paymentEval(snap *store.Snapshot, stxns []types.SignedTxn) (*fakeResult, error) {
	accounts := make(map[types.Address]basics.AccountData)
	for _, rec := range snap.Accounts {
		accounts[rec.Address] = accountData(rec)
	}
	var touched []types.Address
	for _, stxn := range stxns {
		txn := stxn.Txn
		sender := accounts[txn.Sender]
		need := uint64(txn.Fee) + uint64(txn.Amount)
		if sender.MicroAlgos < need {
			return nil, &engine.EngineError{
				Command:  engine.CommandEval,
				ExitCode: 1,
				Stderr: fmt.Sprintf("transaction %s: overspend (account %s, data {_struct:{} Status:Offline MicroAlgos:{Raw:%d}}, tried to spend {%d})\n",
					crypto.TransactionIDString(txn), txn.Sender, sender.MicroAlgos, need),
			}
		}
		sender.MicroAlgos -= need
		accounts[txn.Sender] = sender
		receiver := accounts[txn.Receiver]
		receiver.MicroAlgos += uint64(txn.Amount)
		accounts[txn.Receiver] = receiver
		touched = append(touched, txn.Sender, txn.Receiver)
	}
	reported := make(map[types.Address]basics.AccountData, len(touched))
	for _, addr := range touched {
		reported[addr] = accounts[addr]
	}
	return &fakeResult{
		block:    testBlock(snap, stxns),
		accounts: reported,
		boxes:    snapshotBoxes(snap),
	}, nil
}

func paymentTxn(sender, receiver types.Address, amount uint64, note string) types.SignedTxn {
	return types.SignedTxn{
		Txn: types.Transaction{
			Type: types.PaymentTx,
			Header: types.Header{
				Sender:     sender,
				Fee:        1_000,
				FirstValid: 1,
				LastValid:  1000,
				Note:       []byte(note),
			},
			PaymentTxnFields: types.PaymentTxnFields{
				Receiver: receiver,
				Amount:   types.MicroAlgos(amount),
			},
		},
	}
}
