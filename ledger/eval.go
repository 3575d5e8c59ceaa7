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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/algorand/go-algojig/engine"
	"github.com/algorand/go-algojig/ledger/store"
)

// Evaluator is the engine as the ledger drives it. *engine.Engine implements
// it.
type Evaluator interface {
	// Init recreates the engine databases for a block with the given timestamp.
	Init(timestamp int64) error
	// WriteTransactions stores the group eval runs.
	WriteTransactions(stxns []types.SignedTxn) error
	// Eval evaluates the stored group against the databases and returns the
	// result stream.
	Eval() ([]byte, error)
}

// SetEvaluator replaces the engine the ledger evaluates with.
func (l *JigLedger) SetEvaluator(ev Evaluator) {
	l.evalMu.Lock()
	defer l.evalMu.Unlock()
	l.evaluator = ev
}

func (l *JigLedger) getEvaluator() (Evaluator, error) {
	if l.evaluator == nil {
		e, err := engine.MakeEngine(l.cfg, l.log)
		if err != nil {
			return nil, err
		}
		l.evaluator = e
	}
	return l.evaluator, nil
}

// EvalTransactions evaluates a group on top of the model with the block
// timestamp NextTimestamp and returns the block. On success the accounts and
// boxes the engine reports are merged into the model. On failure the model
// is left unchanged and the error is one of *LogicEvalError,
// *LogicSigReject, *AppCallReject or *engine.EngineError when the engine
// rejected the group.
func (l *JigLedger) EvalTransactions(stxns []types.SignedTxn) (*types.Block, error) {
	return l.EvalTransactionsAt(stxns, l.NextTimestamp)
}

// EvalTransactionsAt is EvalTransactions with an explicit block timestamp.
func (l *JigLedger) EvalTransactionsAt(stxns []types.SignedTxn, timestamp int64) (*types.Block, error) {
	l.evalMu.Lock()
	defer l.evalMu.Unlock()

	blk, err := l.evalTransactions(stxns, timestamp)
	switch {
	case err == nil:
		ledgerEvals.Inc(map[string]string{"result": evalResultOK})
	case isRejection(err):
		ledgerEvals.Inc(map[string]string{"result": evalResultRejected})
	case errors.As(err, new(*engine.EngineError)):
		ledgerEvals.Inc(map[string]string{"result": evalResultEngineFailed})
	default:
		ledgerEvals.Inc(map[string]string{"result": evalResultFailed})
	}
	return blk, err
}

func isRejection(err error) bool {
	var evalErr *LogicEvalError
	var lsigErr *LogicSigReject
	var appErr *AppCallReject
	return errors.As(err, &evalErr) || errors.As(err, &lsigErr) || errors.As(err, &appErr)
}

func (l *JigLedger) evalTransactions(stxns []types.SignedTxn, timestamp int64) (*types.Block, error) {
	log := l.log.With("eval", uuid.NewString())

	ev, err := l.getEvaluator()
	if err != nil {
		return nil, err
	}

	// Encoding first keeps a model the engine cannot represent from
	// touching the work directory.
	snap, err := l.encode()
	if err != nil {
		return nil, err
	}

	lockPath := l.cfg.LockPath()
	if err = os.MkdirAll(filepath.Dir(lockPath), 0700); err != nil {
		return nil, err
	}
	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", lockPath, err)
	}
	if !locked {
		return nil, ErrWorkDirBusy
	}
	defer fileLock.Unlock()

	log.Debugf("evaluating %d transactions at timestamp %d with %d accounts", len(stxns), timestamp, len(snap.Accounts))
	if err = ev.Init(timestamp); err != nil {
		return nil, err
	}
	if err = store.Write(context.Background(), l.cfg, snap, log); err != nil {
		return nil, err
	}
	if err = ev.WriteTransactions(stxns); err != nil {
		return nil, fmt.Errorf("writing transactions: %w", err)
	}

	out, err := ev.Eval()
	if err != nil {
		cerr := l.classify(stxns, err)
		log.Infof("eval failed: %v", cerr)
		return nil, cerr
	}

	res, err := engine.DecodeResult(out)
	if err != nil {
		return nil, err
	}
	l.merge(res, log)
	log.Debugf("merged %d accounts and %d boxes from round %d", len(res.Accounts), len(res.Boxes), res.Block.Round)

	blk := res.Block
	return &blk, nil
}
