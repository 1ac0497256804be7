package models

import "strings"

// Role is the closed set of permission profiles.
type Role string

const (
	RoleOwner Role = "owner"
	RoleGuest Role = "guest"
)

// ParseRole maps a stored role string to a Role. Anything that is not exactly
// "owner" is treated as a guest.
func ParseRole(s string) Role {
	if strings.TrimSpace(s) == string(RoleOwner) {
		return RoleOwner
	}
	return RoleGuest
}

// Session identifies who is performing an operation.
type Session struct {
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
}

// OwnerSession is used by local tooling that acts with full rights.
func OwnerSession(userID string) Session {
	return Session{UserID: userID, Role: RoleOwner}
}

// Decision is the answer to a confirmation prompt.
type Decision int

const (
	DecisionPending Decision = iota
	DecisionConfirmed
	DecisionDeclined
)

// Confirmed reports whether the mutation may proceed.
func (d Decision) Confirmed() bool { return d == DecisionConfirmed }

// DecisionFromBool converts a yes/no answer.
func DecisionFromBool(ok bool) Decision {
	if ok {
		return DecisionConfirmed
	}
	return DecisionDeclined
}

// Prompts shown before destructive operations.
const (
	PromptDeleteItem     = "Delete this item?"
	PromptDeleteCategory = "Delete this category?"
	PromptImportItems    = "Replace current stock with imported data?"
)

// Confirmer asks a human to approve a destructive operation.
type Confirmer interface {
	RequestConfirmation(message string) Decision
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) Decision

// RequestConfirmation implements Confirmer.
func (f ConfirmFunc) RequestConfirmation(message string) Decision { return f(message) }
