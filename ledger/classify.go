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
	"regexp"
	"strconv"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/data/transactions/logic"
	"github.com/algorand/go-algojig/engine"
)

// LogicEvalError is an app program that failed during evaluation.
type LogicEvalError struct {
	// Result is the engine output the error was parsed from.
	Result  string
	TxnID   string
	Message string
	PC      int
	// Source is nil when no program for the app is known.
	Source *logic.SourceLocation

	Err *engine.EngineError
}

func (err *LogicEvalError) Error() string {
	if err.Source == nil {
		return fmt.Sprintf("%s: pc=%d", err.Message, err.PC)
	}
	return fmt.Sprintf("%s: L%d: %s", err.Message, err.Source.LineNo, err.Source.Line)
}

func (err *LogicEvalError) Unwrap() error {
	return err.Err
}

// LogicSigReject is a logic signature that rejected or failed. PC is -1 when
// the engine gave no offset, in which case Message is "reject".
type LogicSigReject struct {
	Result  string
	TxnID   string
	Message string
	PC      int
	Source  *logic.SourceLocation

	Err *engine.EngineError
}

func (err *LogicSigReject) Error() string {
	if err.Source == nil {
		return err.Message
	}
	return fmt.Sprintf("%s: L%d: %s", err.Message, err.Source.LineNo, err.Source.Line)
}

func (err *LogicSigReject) Unwrap() error {
	return err.Err
}

// AppCallReject is an app call whose approval program did not approve.
type AppCallReject struct {
	Result string

	Err *engine.EngineError
}

func (err *AppCallReject) Error() string {
	return strings.TrimSpace(err.Result)
}

func (err *AppCallReject) Unwrap() error {
	return err.Err
}

var (
	txnIDRe     = regexp.MustCompile(`transaction ([0-9A-Z]+):`)
	evalErrorRe = regexp.MustCompile(`error: (.+?) pc=`)
	lsigErrorRe = regexp.MustCompile(`err=(.+?) pc=`)
	pcRe        = regexp.MustCompile(`pc=(\d+)`)
)

// lastSubmatch returns the first group of the last match of re in s. Inner
// transaction traces repeat the markers and the outermost failure is
// reported last.
func lastSubmatch(re *regexp.Regexp, s string) (string, bool) {
	matches := re.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}

func lastPC(s string) (int, bool) {
	m, ok := lastSubmatch(pcRe, s)
	if !ok {
		return 0, false
	}
	pc, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return pc, true
}

type classifierRule struct {
	marker   string
	classify func(l *JigLedger, stxns []types.SignedTxn, ee *engine.EngineError) error
}

// classifierRules are tried in order; the first whose marker occurs in the
// engine's stderr wins.
var classifierRules = []classifierRule{
	{marker: "logic eval error", classify: classifyLogicEval},
	{marker: "rejected by logic", classify: classifyLogicSig},
	{marker: "transaction rejected by ApprovalProgram", classify: classifyAppCall},
}

// classify turns a failed eval into a typed error. Anything that is not an
// *engine.EngineError, or whose output no rule recognizes, is returned as
// it is.
func (l *JigLedger) classify(stxns []types.SignedTxn, err error) error {
	ee, ok := err.(*engine.EngineError)
	if !ok {
		return err
	}
	for _, rule := range classifierRules {
		if strings.Contains(ee.Stderr, rule.marker) {
			return rule.classify(l, stxns, ee)
		}
	}
	return ee
}

func classifyLogicEval(l *JigLedger, stxns []types.SignedTxn, ee *engine.EngineError) error {
	e := &LogicEvalError{Result: ee.Stderr, Err: ee, PC: -1}
	e.TxnID, _ = lastSubmatch(txnIDRe, ee.Stderr)
	e.Message, _ = lastSubmatch(evalErrorRe, ee.Stderr)
	if pc, ok := lastPC(ee.Stderr); ok {
		e.PC = pc
	}
	if e.Message == "" {
		e.Message = "logic eval error"
	}

	stxn, ok := findTxn(stxns, e.TxnID)
	if !ok || e.PC < 0 {
		return e
	}
	if p := l.appProgram(stxn.Txn); p != nil {
		loc := p.Lookup(e.PC)
		e.Source = &loc
	}
	return e
}

func classifyLogicSig(l *JigLedger, stxns []types.SignedTxn, ee *engine.EngineError) error {
	e := &LogicSigReject{Result: ee.Stderr, Err: ee, Message: "reject", PC: -1}
	e.TxnID, _ = lastSubmatch(txnIDRe, ee.Stderr)
	if strings.Contains(ee.Stderr, "err=") && strings.Contains(ee.Stderr, "pc=") {
		if msg, ok := lastSubmatch(lsigErrorRe, ee.Stderr); ok {
			e.Message = msg
		}
		if pc, ok := lastPC(ee.Stderr); ok {
			e.PC = pc
		}
	}

	stxn, ok := findTxn(stxns, e.TxnID)
	if !ok || e.PC < 0 || len(stxn.Lsig.Logic) == 0 {
		return e
	}
	if p, ok := l.programs[string(stxn.Lsig.Logic)]; ok {
		loc := p.Lookup(e.PC)
		e.Source = &loc
	}
	return e
}

func classifyAppCall(l *JigLedger, stxns []types.SignedTxn, ee *engine.EngineError) error {
	return &AppCallReject{Result: ee.Stderr, Err: ee}
}

func findTxn(stxns []types.SignedTxn, txid string) (types.SignedTxn, bool) {
	if txid == "" {
		return types.SignedTxn{}, false
	}
	for _, stxn := range stxns {
		if crypto.TransactionIDString(stxn.Txn) == txid {
			return stxn, true
		}
	}
	return types.SignedTxn{}, false
}

// appProgram finds the program an app call ran: the Program of a known app,
// or for an app creation a registered program with the same bytecode.
func (l *JigLedger) appProgram(txn types.Transaction) logic.Program {
	appID := basics.AppIndex(txn.ApplicationID)
	if appID != 0 {
		if app, ok := l.apps[appID]; ok && app.Program != nil {
			return app.Program
		}
		if app, ok := l.apps[appID]; ok {
			return l.programs[string(app.ApprovalProgram)]
		}
		return nil
	}
	if len(txn.ApprovalProgram) == 0 {
		return nil
	}
	return l.programs[string(txn.ApprovalProgram)]
}
