// Package identity builds the composite keys used to address indexed entities.
package identity

import (
	"strconv"
	"strings"
)

// Separator joins the components of a composite key.
const Separator = "-"

// Join concatenates key components in order. Components are expected to come
// from disjoint value spaces (numeric ids, hex addresses, hex hashes).
func Join(parts ...string) string {
	return strings.Join(parts, Separator)
}

// Address normalizes a hex address so that checksum casing does not split identities.
func Address(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// PoolID returns the key of a pool.
func PoolID(poolID string) string {
	return strings.TrimSpace(poolID)
}

// RoundID returns the key of a game round: pool-round.
func RoundID(poolID string, round uint64) string {
	return Join(PoolID(poolID), strconv.FormatUint(round, 10))
}

// PlayerPoolID returns the key of a join record: player-pool.
func PlayerPoolID(player, poolID string) string {
	return Join(Address(player), PoolID(poolID))
}

// ChoiceID returns the key of a player choice: player-pool-round.
func ChoiceID(player, poolID string, round uint64) string {
	return Join(Address(player), PoolID(poolID), strconv.FormatUint(round, 10))
}

// EventID returns the key of a ledger or audit row: txHash-logIndex.
func EventID(txHash string, logIndex uint64) string {
	return Join(strings.ToLower(strings.TrimSpace(txHash)), strconv.FormatUint(logIndex, 10))
}

// ChainID returns the key of a per-chain singleton.
func ChainID(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}
