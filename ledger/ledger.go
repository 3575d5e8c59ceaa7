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

// Package ledger holds the harness's in-memory ledger and evaluates
// transaction groups against it.
//
// A JigLedger is set up with accounts, assets, apps and boxes, then advanced
// by EvalTransactions: the model is written into the engine's databases, the
// engine evaluates the group, and the accounts and boxes it reports are
// folded back into the model.
package ledger

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/algorand/go-deadlock"

	"github.com/algorand/go-algojig/config"
	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/data/transactions/logic"
	"github.com/algorand/go-algojig/logging"
)

// DefaultClearStateProgram is "#pragma version 6; int 1".
var DefaultClearStateProgram = []byte{0x06, 0x81, 0x01}

// DefaultUnitName is the unit name of assets created without one.
const DefaultUnitName = "TEST"

// Default schemas of apps created without explicit ones.
var (
	DefaultLocalStateSchema  = basics.StateSchema{NumUint: 16, NumByteSlice: 16}
	DefaultGlobalStateSchema = basics.StateSchema{NumUint: 64, NumByteSlice: 64}
)

// Balance is an account's holding of one asset. Asset 0 is the native
// currency in microalgos.
type Balance struct {
	Amount uint64
	Frozen bool
}

type account struct {
	balances    map[basics.AssetIndex]Balance
	localStates map[basics.AppIndex]basics.TealKeyValue
	authAddr    types.Address

	// localSchemas is the local schema the engine last reported for each
	// opted-in app. It outlives the app, as the opt-in does on chain.
	localSchemas map[basics.AppIndex]basics.StateSchema
}

func makeAccount() *account {
	return &account{
		balances:    map[basics.AssetIndex]Balance{0: {}},
		localStates:  make(map[basics.AppIndex]basics.TealKeyValue),
		localSchemas: make(map[basics.AppIndex]basics.StateSchema),
	}
}

// Asset is an asset known to the ledger.
type Asset struct {
	Creator types.Address
	basics.AssetParams
}

// App is an application known to the ledger.
type App struct {
	Creator           types.Address
	ApprovalProgram   []byte
	ClearStateProgram []byte
	LocalStateSchema  basics.StateSchema
	GlobalStateSchema basics.StateSchema
	ExtraProgramPages uint32

	// Program resolves pcs of the approval program for diagnostics. Apps
	// created by a transaction have none.
	Program logic.Program
}

// AppParams describes an app to CreateApp. Nil schemas take the defaults,
// a nil ClearStateProgram takes DefaultClearStateProgram and a zero Creator
// is the ledger's default creator. ApprovalProgram may be omitted when
// Program is set.
type AppParams struct {
	Creator           types.Address
	Program           logic.Program
	ApprovalProgram   []byte
	ClearStateProgram []byte
	LocalStateSchema  *basics.StateSchema
	GlobalStateSchema *basics.StateSchema
	ExtraProgramPages uint32
}

// Box is an application box. Setting an existing box overwrites the Box in
// place, so a *Box obtained earlier observes later writes.
type Box struct {
	Value []byte
}

// JigLedger is the harness's model of the ledger. It is not safe for
// concurrent use.
type JigLedger struct {
	cfg config.Local
	log logging.Logger

	// accounts in creation order; encoding follows this order
	accountOrder []types.Address
	accounts     map[types.Address]*account

	creatables   creatableIndex
	assets       map[basics.AssetIndex]*Asset
	apps         map[basics.AppIndex]*App
	globalStates map[basics.AppIndex]basics.TealKeyValue
	boxes        map[basics.AppIndex]map[string]*Box

	// programs registered for diagnostics, keyed by bytecode
	programs map[string]logic.Program

	rawAccounts map[types.Address]basics.AccountData
	lastBlock   *types.Block

	evaluator Evaluator
	evalMu    deadlock.Mutex

	// Creator is a funded account that creates assets and apps by default.
	Creator crypto.Account

	// NextTimestamp is the block timestamp EvalTransactions uses.
	NextTimestamp int64
}

// MakeJigLedger creates a ledger holding only the funded default creator.
// The engine binary is located on first evaluation.
func MakeJigLedger(cfg config.Local, log logging.Logger) (*JigLedger, error) {
	if log == nil {
		log = logging.Base()
	}
	l := &JigLedger{
		cfg:           cfg,
		log:           log,
		accounts:      make(map[types.Address]*account),
		creatables:    makeCreatableIndex(),
		assets:        make(map[basics.AssetIndex]*Asset),
		apps:          make(map[basics.AppIndex]*App),
		globalStates:  make(map[basics.AppIndex]basics.TealKeyValue),
		boxes:         make(map[basics.AppIndex]map[string]*Box),
		programs:      make(map[string]logic.Program),
		rawAccounts:   make(map[types.Address]basics.AccountData),
		NextTimestamp: cfg.BlockTimestamp,
	}
	l.Creator = crypto.GenerateAccount()
	if err := l.SetAccountBalance(l.Creator.Address, cfg.CreatorBalance, 0, false); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *JigLedger) ensureAccount(addr types.Address) *account {
	acct, ok := l.accounts[addr]
	if !ok {
		acct = makeAccount()
		l.accounts[addr] = acct
		l.accountOrder = append(l.accountOrder, addr)
	}
	return acct
}

func (l *JigLedger) account(addr types.Address) (*account, error) {
	acct, ok := l.accounts[addr]
	if !ok {
		return nil, UnknownAccountError{Address: addr}
	}
	return acct, nil
}

// Accounts returns the addresses of every account in creation order.
func (l *JigLedger) Accounts() []types.Address {
	return slices.Clone(l.accountOrder)
}

// SetAccountBalance sets addr's balance of assetID, creating the account if
// needed. A non-zero asset the ledger does not know yet is created with
// default parameters.
func (l *JigLedger) SetAccountBalance(addr types.Address, balance uint64, assetID basics.AssetIndex, frozen bool) error {
	acct := l.ensureAccount(addr)
	if assetID != 0 {
		if _, ok := l.assets[assetID]; !ok {
			if _, err := l.CreateAsset(assetID, Asset{}); err != nil {
				return err
			}
		}
	}
	acct.balances[assetID] = Balance{Amount: balance, Frozen: frozen}
	return nil
}

// GetAccountBalance returns addr's holding of assetID. ok is false when the
// account or the holding does not exist.
func (l *JigLedger) GetAccountBalance(addr types.Address, assetID basics.AssetIndex) (Balance, bool) {
	acct, ok := l.accounts[addr]
	if !ok {
		return Balance{}, false
	}
	b, ok := acct.balances[assetID]
	return b, ok
}

// OptInAsset gives addr a zero holding of assetID.
func (l *JigLedger) OptInAsset(addr types.Address, assetID basics.AssetIndex) error {
	if assetID == 0 {
		return ErrAssetIDRequired
	}
	return l.SetAccountBalance(addr, 0, assetID, false)
}

// Add credits amount of assetID to addr.
func (l *JigLedger) Add(addr types.Address, amount uint64, assetID basics.AssetIndex) error {
	acct, err := l.account(addr)
	if err != nil {
		return err
	}
	b := acct.balances[assetID]
	sum, overflowed := basics.OAdd(b.Amount, amount)
	if overflowed {
		return BalanceOverflowError{Address: addr, Asset: assetID}
	}
	b.Amount = sum
	return l.SetAccountBalance(addr, b.Amount, assetID, b.Frozen)
}

// Subtract debits amount of assetID from addr.
func (l *JigLedger) Subtract(addr types.Address, amount uint64, assetID basics.AssetIndex) error {
	acct, err := l.account(addr)
	if err != nil {
		return err
	}
	b := acct.balances[assetID]
	diff, underflowed := basics.OSub(b.Amount, amount)
	if underflowed {
		return ErrNegativeBalance{Address: addr, Asset: assetID, Balance: b.Amount, Amount: amount}
	}
	b.Amount = diff
	return l.SetAccountBalance(addr, b.Amount, assetID, b.Frozen)
}

// Move transfers amount of assetID from sender to receiver. Either side may
// be the zero address to only credit or only debit. Nothing changes when the
// transfer fails.
func (l *JigLedger) Move(amount uint64, assetID basics.AssetIndex, sender, receiver types.Address) error {
	if sender.IsZero() && receiver.IsZero() {
		return fmt.Errorf("move needs a sender or a receiver")
	}
	if !sender.IsZero() {
		acct, err := l.account(sender)
		if err != nil {
			return err
		}
		if have := acct.balances[assetID].Amount; have < amount {
			return ErrNegativeBalance{Address: sender, Asset: assetID, Balance: have, Amount: amount}
		}
	}
	if !receiver.IsZero() {
		acct, err := l.account(receiver)
		if err != nil {
			return err
		}
		if _, overflowed := basics.OAdd(acct.balances[assetID].Amount, amount); overflowed && receiver != sender {
			return BalanceOverflowError{Address: receiver, Asset: assetID}
		}
	}
	if !sender.IsZero() {
		if err := l.Subtract(sender, amount, assetID); err != nil {
			return err
		}
	}
	if !receiver.IsZero() {
		return l.Add(receiver, amount, assetID)
	}
	return nil
}

// CreateAsset adds an asset. Id 0 allocates the next free id. A zero Creator
// is the default creator, a zero Total is 2^64-1 and an empty unit name is
// DefaultUnitName. The creator is credited with the total supply.
func (l *JigLedger) CreateAsset(assetID basics.AssetIndex, params Asset) (basics.AssetIndex, error) {
	if params.Creator.IsZero() {
		params.Creator = l.Creator.Address
	}
	if params.Total == 0 {
		params.Total = math.MaxUint64
	}
	if params.UnitName == "" {
		params.UnitName = DefaultUnitName
	}

	cidx, err := l.creatables.allocate(basics.CreatableIndex(assetID), basics.AssetCreatable)
	if err != nil {
		return 0, err
	}
	assetID = basics.AssetIndex(cidx)
	l.assets[assetID] = &params
	l.ensureAccount(params.Creator).balances[assetID] = Balance{Amount: params.Total}
	l.log.Debugf("created asset %d with creator %s", assetID, params.Creator)
	return assetID, nil
}

// GetAsset returns the parameters of an asset.
func (l *JigLedger) GetAsset(assetID basics.AssetIndex) (Asset, bool) {
	a, ok := l.assets[assetID]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

// CreateApp adds an app. Id 0 allocates the next free id.
func (l *JigLedger) CreateApp(appID basics.AppIndex, params AppParams) (basics.AppIndex, error) {
	app := &App{
		Creator:           params.Creator,
		Program:           params.Program,
		ApprovalProgram:   params.ApprovalProgram,
		ClearStateProgram: params.ClearStateProgram,
		LocalStateSchema:  DefaultLocalStateSchema,
		GlobalStateSchema: DefaultGlobalStateSchema,
		ExtraProgramPages: params.ExtraProgramPages,
	}
	if app.Creator.IsZero() {
		app.Creator = l.Creator.Address
	}
	if app.ApprovalProgram == nil && app.Program != nil {
		app.ApprovalProgram = app.Program.Bytecode()
	}
	if app.ApprovalProgram == nil {
		return 0, fmt.Errorf("app needs an approval program")
	}
	if app.ClearStateProgram == nil {
		app.ClearStateProgram = DefaultClearStateProgram
	}
	if params.LocalStateSchema != nil {
		app.LocalStateSchema = *params.LocalStateSchema
	}
	if params.GlobalStateSchema != nil {
		app.GlobalStateSchema = *params.GlobalStateSchema
	}

	cidx, err := l.creatables.allocate(basics.CreatableIndex(appID), basics.AppCreatable)
	if err != nil {
		return 0, err
	}
	appID = basics.AppIndex(cidx)
	l.apps[appID] = app
	if app.Program != nil {
		l.RegisterProgram(app.Program)
	}
	l.log.Debugf("created app %d with creator %s", appID, app.Creator)
	return appID, nil
}

// GetApp returns an app.
func (l *JigLedger) GetApp(appID basics.AppIndex) (App, bool) {
	a, ok := l.apps[appID]
	if !ok {
		return App{}, false
	}
	return *a, true
}

// SetGlobalState replaces the global state of an app.
func (l *JigLedger) SetGlobalState(appID basics.AppIndex, state basics.TealKeyValue) {
	l.globalStates[appID] = state.Clone()
}

// UpdateGlobalState merges delta into the global state of an app.
func (l *JigLedger) UpdateGlobalState(appID basics.AppIndex, delta basics.TealKeyValue) error {
	gs, ok := l.globalStates[appID]
	if !ok {
		return ErrNoEntry{What: fmt.Sprintf("global state of app %d", appID)}
	}
	maps.Copy(gs, delta)
	return nil
}

// GetGlobalState returns the global state of an app.
func (l *JigLedger) GetGlobalState(appID basics.AppIndex) (basics.TealKeyValue, error) {
	gs, ok := l.globalStates[appID]
	if !ok {
		return nil, ErrNoEntry{What: fmt.Sprintf("global state of app %d", appID)}
	}
	return gs, nil
}

// SetLocalState opts addr in to appID with the given local state. A nil
// state opts the account out.
func (l *JigLedger) SetLocalState(addr types.Address, appID basics.AppIndex, state basics.TealKeyValue) error {
	acct, err := l.account(addr)
	if err != nil {
		return err
	}
	if state == nil {
		delete(acct.localStates, appID)
		delete(acct.localSchemas, appID)
		return nil
	}
	acct.localStates[appID] = state.Clone()
	return nil
}

// UpdateLocalState merges delta into addr's local state for appID.
func (l *JigLedger) UpdateLocalState(addr types.Address, appID basics.AppIndex, delta basics.TealKeyValue) error {
	ls, err := l.GetLocalState(addr, appID)
	if err != nil {
		return err
	}
	maps.Copy(ls, delta)
	return nil
}

// GetLocalState returns addr's local state for appID.
func (l *JigLedger) GetLocalState(addr types.Address, appID basics.AppIndex) (basics.TealKeyValue, error) {
	acct, err := l.account(addr)
	if err != nil {
		return nil, err
	}
	ls, ok := acct.localStates[appID]
	if !ok {
		return nil, ErrNoEntry{What: fmt.Sprintf("local state of %s for app %d", addr, appID)}
	}
	return ls, nil
}

// SetBox writes a box, overwriting an existing one in place.
func (l *JigLedger) SetBox(appID basics.AppIndex, name string, value []byte) {
	boxes, ok := l.boxes[appID]
	if !ok {
		boxes = make(map[string]*Box)
		l.boxes[appID] = boxes
	}
	if box, ok := boxes[name]; ok {
		box.Value = append(box.Value[:0], value...)
		return
	}
	boxes[name] = &Box{Value: slices.Clone(value)}
}

// GetBox returns a box.
func (l *JigLedger) GetBox(appID basics.AppIndex, name string) (*Box, error) {
	box, ok := l.boxes[appID][name]
	if !ok {
		return nil, ErrNoEntry{What: fmt.Sprintf("box %q of app %d", name, appID)}
	}
	return box, nil
}

// BoxExists reports whether the box is present.
func (l *JigLedger) BoxExists(appID basics.AppIndex, name string) bool {
	_, ok := l.boxes[appID][name]
	return ok
}

// DeleteBox removes a box if present.
func (l *JigLedger) DeleteBox(appID basics.AppIndex, name string) {
	boxes, ok := l.boxes[appID]
	if !ok {
		return
	}
	delete(boxes, name)
	if len(boxes) == 0 {
		delete(l.boxes, appID)
	}
}

// SetAuthAddr rekeys addr to authAddr. The zero address undoes a rekey.
func (l *JigLedger) SetAuthAddr(addr, authAddr types.Address) error {
	acct, err := l.account(addr)
	if err != nil {
		return err
	}
	acct.authAddr = authAddr
	return nil
}

// GetAuthAddr returns the address addr is rekeyed to, or the zero address.
func (l *JigLedger) GetAuthAddr(addr types.Address) (types.Address, error) {
	acct, err := l.account(addr)
	if err != nil {
		return types.Address{}, err
	}
	return acct.authAddr, nil
}

// RegisterProgram makes p available for resolving failures of logic
// signatures and app creations that run its bytecode.
func (l *JigLedger) RegisterProgram(p logic.Program) {
	l.programs[string(p.Bytecode())] = p
}

// RawAccount returns the account data the engine reported for addr in the
// last evaluation.
func (l *JigLedger) RawAccount(addr types.Address) (basics.AccountData, bool) {
	ad, ok := l.rawAccounts[addr]
	return ad, ok
}

// LastBlock returns the block produced by the last successful evaluation.
func (l *JigLedger) LastBlock() (types.Block, bool) {
	if l.lastBlock == nil {
		return types.Block{}, false
	}
	return *l.lastBlock, true
}
