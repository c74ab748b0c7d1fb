package model

import (
	"fmt"
	"strconv"
	"strings"
)

// GameEvent is a decoded contract event with its chain position.
// Fields holds the ABI arguments as strings: decimal integers, hex addresses, and choice names.
type GameEvent struct {
	ChainID     uint64            `json:"chain_id"`
	BlockNumber uint64            `json:"block_number"`
	BlockHash   string            `json:"block_hash,omitempty"`
	TxHash      string            `json:"tx_hash"`
	LogIndex    uint64            `json:"log_index"`
	Address     string            `json:"address,omitempty"`
	EventName   string            `json:"event_name"`
	Timestamp   uint64            `json:"timestamp"`
	Fields      map[string]string `json:"fields"`
	Raw         *RawLogRef        `json:"raw,omitempty"`
}

// RawLogRef keeps a minimal raw reference for traceability.
type RawLogRef struct {
	Topic0 string `json:"topic0"`
	Data   string `json:"data"`
}

// Position is the canonical order of an event within one chain.
type Position struct {
	BlockNumber uint64 `json:"block_number"`
	LogIndex    uint64 `json:"log_index"`
}

// Less orders positions by block, then log index.
func (p Position) Less(other Position) bool {
	if p.BlockNumber != other.BlockNumber {
		return p.BlockNumber < other.BlockNumber
	}
	return p.LogIndex < other.LogIndex
}

func (e GameEvent) Position() Position {
	return Position{BlockNumber: e.BlockNumber, LogIndex: e.LogIndex}
}

// Field returns a trimmed payload field.
func (e GameEvent) Field(name string) (string, bool) {
	v, ok := e.Fields[name]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Amount parses a payload field as an unbounded integer.
func (e GameEvent) Amount(name string) (Amount, error) {
	v, ok := e.Field(name)
	if !ok {
		return Amount{}, fmt.Errorf("missing field %s", name)
	}
	a, err := ParseAmount(v)
	if err != nil {
		return Amount{}, fmt.Errorf("field %s: %w", name, err)
	}
	if a.Sign() < 0 {
		return Amount{}, fmt.Errorf("field %s: negative value %s", name, v)
	}
	return a, nil
}

// Uint parses a payload field as a uint64.
func (e GameEvent) Uint(name string) (uint64, error) {
	v, ok := e.Field(name)
	if !ok {
		return 0, fmt.Errorf("missing field %s", name)
	}
	neg, digits, base := numberBase(strings.TrimSpace(v))
	if neg {
		return 0, fmt.Errorf("field %s: negative value %s", name, v)
	}
	n, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return n, nil
}

// Text returns a required payload field.
func (e GameEvent) Text(name string) (string, error) {
	v, ok := e.Field(name)
	if !ok {
		return "", fmt.Errorf("missing field %s", name)
	}
	return v, nil
}
