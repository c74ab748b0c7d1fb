package model

import (
	"fmt"
	"strings"
)

// PoolStatus is the lifecycle state of a pool.
type PoolStatus string

const (
	PoolStatusOpened    PoolStatus = "Opened"
	PoolStatusActive    PoolStatus = "Active"
	PoolStatusCompleted PoolStatus = "Completed"
	PoolStatusAbandoned PoolStatus = "Abandoned"
)

// Terminal reports whether no further transition is valid.
func (s PoolStatus) Terminal() bool {
	return s == PoolStatusCompleted || s == PoolStatusAbandoned
}

// CanTransition reports whether from -> to is a valid lifecycle transition.
func CanTransition(from, to PoolStatus) bool {
	switch from {
	case PoolStatusOpened:
		return to == PoolStatusActive || to == PoolStatusAbandoned
	case PoolStatusActive:
		return to == PoolStatusCompleted
	default:
		return false
	}
}

// Choice is one of the two options a player picks each round.
type Choice string

const (
	ChoiceHeads Choice = "HEADS"
	ChoiceTails Choice = "TAILS"
)

// ParseChoice accepts the symbolic names and the contract's numeric encoding (0 heads, 1 tails).
func ParseChoice(input string) (Choice, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "HEADS", "0":
		return ChoiceHeads, nil
	case "TAILS", "1":
		return ChoiceTails, nil
	default:
		return "", fmt.Errorf("invalid choice: %q", input)
	}
}

// StakeType distinguishes ledger rows.
type StakeType string

const (
	StakeDeposit  StakeType = "Deposit"
	StakeWithdraw StakeType = "Withdraw"
)

// Contract event names.
const (
	EventPoolCreated              = "PoolCreated"
	EventPlayerJoined             = "PlayerJoined"
	EventPoolActivated            = "PoolActivated"
	EventPlayerMadeChoice         = "PlayerMadeChoice"
	EventRoundResolved            = "RoundResolved"
	EventGameCompleted            = "GameCompleted"
	EventPoolAbandoned            = "PoolAbandoned"
	EventStakeDeposited           = "StakeDeposited"
	EventStakeWithdrawn           = "StakeWithdrawn"
	EventCreatorRewardClaimed     = "CreatorRewardClaimed"
	EventCreatorVerified          = "CreatorVerified"
	EventVerificationBonusApplied = "VerificationBonusApplied"
	EventProjectPoolUpdated       = "ProjectPoolUpdated"
	EventScopeUpdated             = "ScopeUpdated"
	EventOwnershipTransferred     = "OwnershipTransferred"

	// EventUnmapped marks audit rows for events without a registered handler.
	EventUnmapped = "Unmapped"
)
