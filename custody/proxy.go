// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package custody

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/custody/contract"
)

// Proxy is the accounting and authorization core for one client's custody.
//
// Operations execute one at a time, as in the EVM call model. A forwarded
// external call may call back into the proxy before the outer operation
// returns; the reentrancy flag rejects nested entry into Withdraw,
// CallAnyFunction and ClaimReward. Deposit is deliberately unguarded since
// only the trusted factory may invoke it.
type Proxy struct {
	// Immutable identity, injected once at construction.
	address  common.Address
	executor common.Address
	factory  common.Address
	treasury common.Address

	// Set exactly once by Initialize.
	client      common.Address
	feeBps      uint64
	initialized bool

	ledger *Ledger
	fwd    *CalldataForwarder

	factoryAPI Factory
	tokens     TokenBackend
	permit     PermitTransferor
	vaults     VaultRegistry
	bundler    Executor
	signatures SignatureVerifier

	events  []Event
	seq     uint64
	entered bool

	log log.Logger
}

// ProxyConfig carries the immutable identity and collaborators of a proxy.
type ProxyConfig struct {
	// Address is the proxy's own account, the holder of pulled funds.
	Address  common.Address
	Executor common.Address
	Factory  common.Address
	Treasury common.Address

	FactoryAPI Factory
	Tokens     TokenBackend
	Permit     PermitTransferor
	Vaults     VaultRegistry
	Bundler    Executor
	Caller     ExternalCaller

	// Signatures is optional; secp256k1 recovery against the client
	// address is used when nil.
	Signatures SignatureVerifier

	// Log is optional; a test logger at info level is used when nil.
	Log log.Logger
}

// NewProxy creates an uninitialized proxy. The factory must call Initialize
// before any custody operation succeeds.
func NewProxy(cfg ProxyConfig) *Proxy {
	signatures := cfg.Signatures
	if signatures == nil {
		signatures = ecdsaVerifier{}
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Proxy{
		address:    cfg.Address,
		executor:   cfg.Executor,
		factory:    cfg.Factory,
		treasury:   cfg.Treasury,
		ledger:     NewLedger(),
		fwd:        NewCalldataForwarder(cfg.Caller),
		factoryAPI: cfg.FactoryAPI,
		tokens:     cfg.Tokens,
		permit:     cfg.Permit,
		vaults:     cfg.Vaults,
		bundler:    cfg.Bundler,
		signatures: signatures,
		events:     make([]Event, 0),
		log:        logger,
	}
}

// Initialize sets the client identity and fee rate. Factory-gated, one-shot.
func (p *Proxy) Initialize(caller common.Address, client common.Address, feeBps uint64) error {
	if err := p.requireFactory(caller); err != nil {
		return err
	}
	if p.initialized {
		return ErrAlreadyInitialized
	}
	if !validFeeRate(feeBps) {
		return fmt.Errorf("%w: %d", ErrInvalidFeeRate, feeBps)
	}

	p.client = client
	p.feeBps = feeBps
	p.initialized = true

	p.emit(Event{
		Kind:   EventInitialized,
		Client: client,
		FeeBps: feeBps,
	}, client)
	p.log.Info("custody proxy initialized", "client", client, "feeBps", feeBps)
	return nil
}

// Deposit records [amount] of [asset] against the ledger, pulls the funds
// from the client via the permit transferor, lazily grants the permit
// executor a standing unlimited allowance, then forwards [payload] to
// [target]. Factory-gated.
func (p *Proxy) Deposit(
	caller common.Address,
	target common.Address,
	payload []byte,
	asset common.Address,
	amount *big.Int,
	permitAuthorization []byte,
) error {
	if err := p.requireFactory(caller); err != nil {
		return err
	}
	if !p.initialized {
		return ErrNotInitialized
	}
	if asset == (common.Address{}) {
		return ErrZeroAsset
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	newTotal := p.ledger.RecordDeposit(asset, amount)

	if err := p.permit.PermitTransferFrom(asset, p.client, p.address, amount, permitAuthorization); err != nil {
		p.ledger.unrecordDeposit(asset, amount)
		return err
	}

	// Standing unlimited allowance toward the permit executor, set once.
	spender := p.permit.Executor()
	if p.tokens.Allowance(asset, p.address, spender).Sign() == 0 {
		if err := p.tokens.Approve(asset, p.address, spender, MaxAllowance); err != nil {
			// Return the pulled funds so a failed deposit leaves balances
			// untouched.
			_ = p.tokens.Transfer(asset, p.address, p.client, amount)
			p.ledger.unrecordDeposit(asset, amount)
			return err
		}
	}

	if _, err := p.fwd.Forward(target, payload); err != nil {
		_ = p.tokens.Transfer(asset, p.address, p.client, amount)
		p.ledger.unrecordDeposit(asset, amount)
		return err
	}

	p.emit(Event{
		Kind:     EventDeposited,
		Target:   target,
		Asset:    asset,
		Amount:   new(big.Int).Set(amount),
		NewTotal: newTotal,
	}, target, asset)
	p.log.Info("deposit forwarded", "asset", asset, "amount", amount, "totalDeposited", newTotal)
	return nil
}

// Withdraw redeems [shares] of [vault] through [target], splits the released
// underlying between treasury and client, and records the withdrawal.
// Client-gated, reentrancy-guarded, allow-list-validated.
func (p *Proxy) Withdraw(
	caller common.Address,
	target common.Address,
	payload []byte,
	vault common.Address,
	shares *big.Int,
) error {
	if err := p.requireClient(caller); err != nil {
		return err
	}
	if err := p.enter(); err != nil {
		return err
	}
	defer p.exit()

	if shares == nil || shares.Sign() <= 0 {
		return ErrZeroShares
	}
	if err := p.checkAllowList(target, payload, KindWithdrawal); err != nil {
		return err
	}

	shareToken, err := p.vaults.ShareToken(vault)
	if err != nil {
		return err
	}
	asset, err := p.vaults.UnderlyingAsset(vault)
	if err != nil {
		return err
	}

	// The forwarding target redeems the shares on the proxy's behalf. A
	// failed operation must not leave the target holding a live claim on
	// the proxy's shares.
	if err := p.tokens.Approve(shareToken, p.address, target, shares); err != nil {
		return err
	}
	revokeShares := func() {
		_ = p.tokens.Approve(shareToken, p.address, target, big.NewInt(0))
	}

	before := p.tokens.BalanceOf(asset, p.address)
	if _, err := p.fwd.Forward(target, payload); err != nil {
		revokeShares()
		return err
	}
	released := new(big.Int).Sub(p.tokens.BalanceOf(asset, p.address), before)
	if released.Sign() < 0 {
		released = big.NewInt(0)
	}

	deposited := p.ledger.TotalDeposited(asset)
	withdrawnBefore := p.ledger.TotalWithdrawn(asset)
	fee, clientAmount, newProfit := SplitWithdrawal(deposited, withdrawnBefore, released, p.feeBps)

	// Ledger committed before funds are released.
	newTotal := p.ledger.RecordWithdrawal(asset, released)

	if fee.Sign() > 0 {
		if err := p.tokens.Transfer(asset, p.address, p.treasury, fee); err != nil {
			revokeShares()
			p.ledger.unrecordWithdrawal(asset, released)
			return err
		}
	}
	if clientAmount.Sign() > 0 {
		if err := p.tokens.Transfer(asset, p.address, p.client, clientAmount); err != nil {
			// Compensate the fee transfer so a failed operation leaves
			// balances untouched.
			if fee.Sign() > 0 {
				_ = p.tokens.Transfer(asset, p.treasury, p.address, fee)
			}
			revokeShares()
			p.ledger.unrecordWithdrawal(asset, released)
			return err
		}
	}

	p.emit(Event{
		Kind:         EventWithdrawn,
		Target:       target,
		Vault:        vault,
		Asset:        asset,
		Shares:       new(big.Int).Set(shares),
		Released:     released,
		NewTotal:     newTotal,
		NewProfit:    newProfit,
		Fee:          fee,
		ClientAmount: clientAmount,
	}, target, vault, asset)
	p.log.Info("withdrawal settled",
		"asset", asset, "released", released, "fee", fee, "client", clientAmount)
	return nil
}

// CallAnyFunction forwards an arbitrary allow-listed instruction with no
// ledger interaction. Client-gated, reentrancy-guarded.
func (p *Proxy) CallAnyFunction(caller common.Address, target common.Address, payload []byte) error {
	if err := p.requireClient(caller); err != nil {
		return err
	}
	if err := p.enter(); err != nil {
		return err
	}
	defer p.exit()

	if err := p.checkAllowList(target, payload, KindUnrestricted); err != nil {
		return err
	}
	if _, err := p.fwd.Forward(target, payload); err != nil {
		return err
	}

	p.emit(Event{Kind: EventCalledAsAnyFunction, Target: target}, target)
	return nil
}

// ClaimReward bundles a single claim instruction to the executor, requires a
// strictly positive reward balance increase, and applies the flat fee split.
// Callable by the client, or by factory-authorized operators.
func (p *Proxy) ClaimReward(
	caller common.Address,
	distributor common.Address,
	reward common.Address,
	amount *big.Int,
	proof [][32]byte,
) error {
	if err := p.enter(); err != nil {
		return err
	}
	defer p.exit()

	if !p.initialized {
		return ErrNotInitialized
	}
	if caller != p.client && !p.factoryAPI.IsAuthorizedClaimer(caller, p.client) {
		return &UnauthorizedCallerError{Role: "client", Caller: caller, Expected: p.client}
	}

	before := p.tokens.BalanceOf(reward, p.address)
	if err := p.bundler.Execute([]Call{ClaimRewardCall(distributor, reward, amount, proof)}); err != nil {
		return err
	}
	claimed := new(big.Int).Sub(p.tokens.BalanceOf(reward, p.address), before)
	if claimed.Sign() <= 0 {
		return ErrNothingClaimed
	}

	fee, clientAmount := SplitClaim(claimed, p.feeBps)
	if fee.Sign() > 0 {
		if err := p.tokens.Transfer(reward, p.address, p.treasury, fee); err != nil {
			return err
		}
	}
	if clientAmount.Sign() > 0 {
		if err := p.tokens.Transfer(reward, p.address, p.client, clientAmount); err != nil {
			if fee.Sign() > 0 {
				_ = p.tokens.Transfer(reward, p.treasury, p.address, fee)
			}
			return err
		}
	}

	p.emit(Event{
		Kind:         EventClaimedReward,
		Distributor:  distributor,
		Reward:       reward,
		Released:     claimed,
		Fee:          fee,
		ClientAmount: clientAmount,
	}, distributor, reward)
	p.log.Info("reward claimed", "reward", reward, "claimed", claimed, "fee", fee)
	return nil
}

// CheckCalldata is a read-only pass-through to the factory's allow-list,
// letting other allow-list-aware collaborators query the same source of
// truth this proxy uses.
func (p *Proxy) CheckCalldata(target common.Address, selector [4]byte, remainder []byte, kind OperationKind) bool {
	return p.factoryAPI.CheckCalldata(target, selector, remainder, kind)
}

// ValidateSignature verifies [signature] was produced by the client over
// [hash] and returns the ERC-1271 magic value on success.
func (p *Proxy) ValidateSignature(hash common.Hash, signature []byte) ([4]byte, error) {
	if !p.signatures.Verify(p.client, hash, signature) {
		return [4]byte{}, ErrInvalidSignature
	}
	return SignatureMagicValue, nil
}

// Read accessors

func (p *Proxy) Address() common.Address  { return p.address }
func (p *Proxy) Executor() common.Address { return p.executor }
func (p *Proxy) Factory() common.Address  { return p.factory }
func (p *Proxy) Treasury() common.Address { return p.treasury }
func (p *Proxy) Client() common.Address   { return p.client }
func (p *Proxy) FeeRate() uint64          { return p.feeBps }
func (p *Proxy) Initialized() bool        { return p.initialized }

// TotalDeposited returns the cumulative deposited total for [asset].
func (p *Proxy) TotalDeposited(asset common.Address) *big.Int {
	return p.ledger.TotalDeposited(asset)
}

// TotalWithdrawn returns the cumulative withdrawn total for [asset].
func (p *Proxy) TotalWithdrawn(asset common.Address) *big.Int {
	return p.ledger.TotalWithdrawn(asset)
}

// RealizedProfit returns max(0, withdrawn - deposited) for [asset].
func (p *Proxy) RealizedProfit(asset common.Address) *big.Int {
	return p.ledger.RealizedProfit(asset)
}

// Events returns the append-only audit log.
func (p *Proxy) Events() []Event {
	events := make([]Event, len(p.events))
	copy(events, p.events)
	return events
}

func (p *Proxy) checkAllowList(target common.Address, payload []byte, kind OperationKind) error {
	selector, remainder := splitSelector(payload)
	if !p.factoryAPI.CheckCalldata(target, selector, remainder, kind) {
		return fmt.Errorf("%w: %s call to %s", ErrCalldataNotAllowed, kind, target)
	}
	return nil
}

func (p *Proxy) emit(event Event, addrs ...common.Address) {
	p.seq++
	event.Seq = p.seq
	event.ID = eventID(event.Kind, p.seq, addrs...)
	p.events = append(p.events, event)
}

var claimSelector = contract.CalculateFunctionSelector("claim(address,uint256,bytes32[])")

// ClaimRewardCall builds the typed claim instruction the bundle executor
// runs against [distributor].
func ClaimRewardCall(distributor common.Address, reward common.Address, amount *big.Int, proof [][32]byte) Call {
	if amount == nil {
		amount = big.NewInt(0)
	}
	payload := make([]byte, 0, contract.SelectorLen+common.HashLength*(3+len(proof)))
	payload = append(payload, claimSelector...)
	payload = append(payload, common.BytesToHash(reward.Bytes()).Bytes()...)
	payload = append(payload, common.BigToHash(amount).Bytes()...)
	payload = append(payload, common.BigToHash(big.NewInt(int64(len(proof)))).Bytes()...)
	for _, node := range proof {
		payload = append(payload, node[:]...)
	}
	return Call{Target: distributor, Payload: payload}
}
