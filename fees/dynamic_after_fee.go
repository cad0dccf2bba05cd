// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/dexhooks/hooks"
)

// TargetSource returns the output a swapper should receive. Output above the
// target is donated to the pool when active is true.
type TargetSource interface {
	TargetOutput(sender common.Address, key hooks.PoolKey, params hooks.SwapParams, hookData []byte) (target *big.Int, active bool, err error)
}

const afterFeeABIJSON = `[
	{"type":"function","name":"flushDonations","stateMutability":"nonpayable",
	 "inputs":[{"name":"poolKey","type":"bytes"}],"outputs":[]}
]`

var afterFeeABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(afterFeeABIJSON))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return parsed
}()

// Storage key prefixes
var (
	captureTargetPrefix = []byte("capt")
	captureActivePrefix = []byte("capx")
	pendingPrefix       = []byte("pend")
)

// AfterFeeOption configures a DynamicAfterFee
type AfterFeeOption func(*DynamicAfterFee)

// WithDeferredDonations keeps captured amounts as claims until
// FlushDonations instead of donating inside the swap
func WithDeferredDonations() AfterFeeOption {
	return func(d *DynamicAfterFee) { d.deferred = true }
}

// DynamicAfterFee caps what exact-input swappers receive at a target and
// donates the excess to the pool's liquidity providers.
//
// The target is captured in transient storage before the swap and consumed
// after it. Exact-output swaps are recorded inactive and never charged.
type DynamicAfterFee struct {
	*hooks.BaseHook
	hooks.UnimplementedHandler

	source   TargetSource
	deferred bool
}

// NewDynamicAfterFee creates an after-swap capture hook at cfg.Address
func NewDynamicAfterFee(cfg hooks.Config, source TargetSource, opts ...AfterFeeOption) (*DynamicAfterFee, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	d := &DynamicAfterFee{source: source}
	for _, opt := range opts {
		opt(d)
	}

	base, err := hooks.New(cfg, d)
	if err != nil {
		return nil, err
	}
	d.BaseHook = base

	if err := base.HandleSelfCalls(afterFeeABI, map[string]hooks.SelfCallFunc{
		"flushDonations": d.flushDonations,
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func (*DynamicAfterFee) Permissions() hooks.Permissions {
	return hooks.Permissions{
		BeforeSwap:           true,
		AfterSwap:            true,
		AfterSwapReturnDelta: true,
	}
}

func (d *DynamicAfterFee) OnBeforeSwap(sender common.Address, key hooks.PoolKey, params hooks.SwapParams, hookData []byte) (hooks.BeforeSwapDelta, uint32, error) {
	target, active, err := d.source.TargetOutput(sender, key, params, hookData)
	if err != nil {
		return hooks.BeforeSwapDelta{}, 0, fmt.Errorf("computing target output: %w", err)
	}
	if target == nil {
		target = big.NewInt(0)
	}
	if target.Sign() < 0 || target.BitLen() > 256 {
		return hooks.BeforeSwapDelta{}, 0, fmt.Errorf("%w: %s", ErrInvalidTargetOutput, target)
	}
	if !params.IsExactInput() {
		active = false
	}

	d.storeCapture(key.ID(), target, active)
	return hooks.ZeroBeforeSwapDelta(), 0, nil
}

// OnAfterSwap relies on the manager having run OnBeforeSwap for this same
// swap with no other operation on the pool in between.
func (d *DynamicAfterFee) OnAfterSwap(_ common.Address, key hooks.PoolKey, params hooks.SwapParams, delta hooks.BalanceDelta, _ []byte) (*big.Int, error) {
	id := key.ID()
	target, active := d.Capture(id)
	d.storeCapture(id, new(big.Int), false)

	if !active || !params.IsExactInput() {
		return big.NewInt(0), nil
	}

	actual := new(big.Int).Abs(hooks.UnspecifiedAmount(params, delta))
	if actual.Cmp(target) <= 0 {
		return big.NewInt(0), nil
	}
	fee := actual.Sub(actual, target)
	currency := hooks.UnspecifiedCurrency(key, params)

	if err := hooks.Take(d.Manager(), d.Address(), currency, fee, true); err != nil {
		return nil, err
	}
	if d.deferred {
		d.addPending(id, currency, fee)
		d.Metrics().Donations.WithLabelValues("deferred").Inc()
		d.Logger().Debug("donation deferred", "pool", id, "amount", fee)
		return fee, nil
	}

	if err := d.donate(key, currency, fee); err != nil {
		return nil, err
	}
	d.Metrics().Donations.WithLabelValues("immediate").Inc()
	return fee, nil
}

// donate gives amount of currency, held as claims by the hook, to the pool
func (d *DynamicAfterFee) donate(key hooks.PoolKey, currency hooks.Currency, amount *big.Int) error {
	amount0, amount1 := big.NewInt(0), big.NewInt(0)
	if currency == key.Currency0 {
		amount0 = amount
	} else {
		amount1 = amount
	}
	if _, err := d.Manager().Donate(d.Address(), key, amount0, amount1, nil); err != nil {
		return err
	}
	if err := hooks.Settle(d.Manager(), d.Address(), currency, amount, true); err != nil {
		return err
	}

	d.Logger().Debug("captured output donated",
		"pool", key.ID(),
		"currency", currency,
		"amount", amount,
	)
	return nil
}

// FlushDonations donates every deferred amount of key's pool in one unlock
// session. Anyone may call it.
func (d *DynamicAfterFee) FlushDonations(key hooks.PoolKey) error {
	if err := d.ValidatePool(key); err != nil {
		return err
	}
	data, err := afterFeeABI.Pack("flushDonations", key.ToBytes())
	if err != nil {
		return err
	}
	_, err = d.Unlock(data)
	return err
}

func (d *DynamicAfterFee) flushDonations(args []interface{}) ([]byte, error) {
	raw, ok := args[0].([]byte)
	if !ok {
		return nil, &hooks.RevertError{}
	}
	key, err := hooks.PoolKeyFromBytes(raw)
	if err != nil {
		return nil, &hooks.RevertError{}
	}

	id := key.ID()
	for _, currency := range []hooks.Currency{key.Currency0, key.Currency1} {
		amount := d.Pending(id, currency)
		if amount.Sign() == 0 {
			continue
		}
		d.setPending(id, currency, new(big.Int))
		if err := d.donate(key, currency, amount); err != nil {
			return nil, err
		}
		d.Metrics().Donations.WithLabelValues("flush").Inc()
	}
	return nil, nil
}

// Capture returns the target stored for a pool's in-flight swap
func (d *DynamicAfterFee) Capture(id hooks.PoolID) (*big.Int, bool) {
	st := d.State()
	target := hooks.HashToBig(st.GetTransientState(d.Address(), hooks.StorageKey(captureTargetPrefix, id.Bytes())))
	active := st.GetTransientState(d.Address(), hooks.StorageKey(captureActivePrefix, id.Bytes())) != (common.Hash{})
	return target, active
}

func (d *DynamicAfterFee) storeCapture(id hooks.PoolID, target *big.Int, active bool) {
	st := d.State()
	st.SetTransientState(d.Address(), hooks.StorageKey(captureTargetPrefix, id.Bytes()), hooks.BigToHash(target))
	st.SetTransientState(d.Address(), hooks.StorageKey(captureActivePrefix, id.Bytes()), boolToHash(active))
}

// Pending returns the deferred donation of currency for a pool
func (d *DynamicAfterFee) Pending(id hooks.PoolID, currency hooks.Currency) *big.Int {
	return hooks.HashToBig(d.State().GetState(d.Address(), pendingSlot(id, currency)))
}

func (d *DynamicAfterFee) setPending(id hooks.PoolID, currency hooks.Currency, amount *big.Int) {
	d.State().SetState(d.Address(), pendingSlot(id, currency), hooks.BigToHash(amount))
}

func (d *DynamicAfterFee) addPending(id hooks.PoolID, currency hooks.Currency, amount *big.Int) {
	d.setPending(id, currency, new(big.Int).Add(d.Pending(id, currency), amount))
}

func pendingSlot(id hooks.PoolID, currency hooks.Currency) common.Hash {
	return hooks.StorageKey(pendingPrefix, append(id.Bytes(), currency.Address.Bytes()...))
}
