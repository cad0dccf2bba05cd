// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolmanager

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/types"
)

const eventsABIJSON = `[
	{"type":"event","name":"Initialize","inputs":[
		{"name":"id","type":"bytes32","indexed":true},
		{"name":"currency0","type":"address","indexed":true},
		{"name":"currency1","type":"address","indexed":true},
		{"name":"fee","type":"uint24","indexed":false},
		{"name":"tickSpacing","type":"int24","indexed":false},
		{"name":"hooks","type":"address","indexed":false},
		{"name":"sqrtPriceX96","type":"uint160","indexed":false},
		{"name":"tick","type":"int24","indexed":false}]},
	{"type":"event","name":"ModifyLiquidity","inputs":[
		{"name":"id","type":"bytes32","indexed":true},
		{"name":"sender","type":"address","indexed":true},
		{"name":"tickLower","type":"int24","indexed":false},
		{"name":"tickUpper","type":"int24","indexed":false},
		{"name":"liquidityDelta","type":"int256","indexed":false},
		{"name":"salt","type":"bytes32","indexed":false}]},
	{"type":"event","name":"Swap","inputs":[
		{"name":"id","type":"bytes32","indexed":true},
		{"name":"sender","type":"address","indexed":true},
		{"name":"amount0","type":"int128","indexed":false},
		{"name":"amount1","type":"int128","indexed":false},
		{"name":"sqrtPriceX96","type":"uint160","indexed":false},
		{"name":"liquidity","type":"uint128","indexed":false},
		{"name":"tick","type":"int24","indexed":false},
		{"name":"fee","type":"uint24","indexed":false}]},
	{"type":"event","name":"Donate","inputs":[
		{"name":"id","type":"bytes32","indexed":true},
		{"name":"sender","type":"address","indexed":true},
		{"name":"amount0","type":"uint256","indexed":false},
		{"name":"amount1","type":"uint256","indexed":false}]},
	{"type":"event","name":"DynamicLPFeeUpdated","inputs":[
		{"name":"id","type":"bytes32","indexed":true},
		{"name":"fee","type":"uint24","indexed":false}]}
]`

// eventsABI describes the manager's event logs
var eventsABI = mustParseABI(eventsABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return parsed
}

// packEvent returns the topics and data of an event. Indexed arguments become
// topics in declaration order.
func packEvent(name string, args ...interface{}) ([]common.Hash, []byte, error) {
	event, exist := eventsABI.Events[name]
	if !exist {
		return nil, nil, fmt.Errorf("event '%s' not found", name)
	}
	if len(args) != len(event.Inputs) {
		return nil, nil, fmt.Errorf("event '%s' unexpected number of inputs %d", name, len(args))
	}

	var (
		nonIndexedInputs []interface{}
		nonIndexedArgs   abi.Arguments
		topics           = []common.Hash{event.ID}
	)
	for i, arg := range event.Inputs {
		if !arg.Indexed {
			nonIndexedArgs = append(nonIndexedArgs, arg)
			nonIndexedInputs = append(nonIndexedInputs, args[i])
			continue
		}
		topic, err := packTopic(args[i])
		if err != nil {
			return nil, nil, err
		}
		topics = append(topics, topic)
	}

	data, err := nonIndexedArgs.Pack(nonIndexedInputs...)
	if err != nil {
		return nil, nil, err
	}
	return topics, data, nil
}

func packTopic(value interface{}) (common.Hash, error) {
	switch v := value.(type) {
	case common.Address:
		return common.BytesToHash(v.Bytes()), nil
	case common.Hash:
		return v, nil
	case [32]byte:
		return common.Hash(v), nil
	default:
		return common.Hash{}, fmt.Errorf("unsupported topic type %T", value)
	}
}

// emit records an event in the state. Packing failures are programming
// errors in the event table.
func (m *Manager) emit(name string, args ...interface{}) {
	topics, data, err := packEvent(name, args...)
	if err != nil {
		panic(fmt.Sprintf("poolmanager: packing %s: %v", name, err))
	}
	m.state.AddLog(&types.Log{
		Address: m.address,
		Topics:  topics,
		Data:    data,
	})
}

// SwapEvent is the decoded form of a Swap log
type SwapEvent struct {
	ID           common.Hash
	Sender       common.Address
	Amount0      *big.Int
	Amount1      *big.Int
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Tick         *big.Int
	Fee          *big.Int
}

// DecodeSwapEvent decodes a Swap log emitted by the manager
func DecodeSwapEvent(log *types.Log) (*SwapEvent, error) {
	event := eventsABI.Events["Swap"]
	if len(log.Topics) != 3 || log.Topics[0] != event.ID {
		return nil, fmt.Errorf("not a Swap log")
	}

	values, err := eventsABI.Unpack("Swap", log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpacking Swap log: %w", err)
	}
	return &SwapEvent{
		ID:           log.Topics[1],
		Sender:       common.BytesToAddress(log.Topics[2].Bytes()),
		Amount0:      values[0].(*big.Int),
		Amount1:      values[1].(*big.Int),
		SqrtPriceX96: values[2].(*big.Int),
		Liquidity:    values[3].(*big.Int),
		Tick:         values[4].(*big.Int),
		Fee:          values[5].(*big.Int),
	}, nil
}

// DonateEvent is the decoded form of a Donate log
type DonateEvent struct {
	ID      common.Hash
	Sender  common.Address
	Amount0 *big.Int
	Amount1 *big.Int
}

// DecodeDonateEvent decodes a Donate log emitted by the manager
func DecodeDonateEvent(log *types.Log) (*DonateEvent, error) {
	event := eventsABI.Events["Donate"]
	if len(log.Topics) != 3 || log.Topics[0] != event.ID {
		return nil, fmt.Errorf("not a Donate log")
	}

	values, err := eventsABI.Unpack("Donate", log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpacking Donate log: %w", err)
	}
	return &DonateEvent{
		ID:      log.Topics[1],
		Sender:  common.BytesToAddress(log.Topics[2].Bytes()),
		Amount0: values[0].(*big.Int),
		Amount1: values[1].(*big.Int),
	}, nil
}

// IsEvent reports whether log is the manager event called name
func IsEvent(log *types.Log, name string) bool {
	event, ok := eventsABI.Events[name]
	return ok && len(log.Topics) > 0 && log.Topics[0] == event.ID
}
