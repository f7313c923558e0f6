package service

import (
	"errors"
	"fmt"

	"go-cultivation/entities"
	"go-cultivation/repository"
)

// Validation errors: the request is refused and nothing changes.
var (
	ErrInvalidQuantity     = errors.New("quantity must be a positive whole number")
	ErrInvalidPrice        = errors.New("price must be a positive whole number")
	ErrUnknownItem         = errors.New("unknown item")
	ErrNotTradable         = errors.New("item cannot be traded")
	ErrInsufficientItems   = entities.ErrInsufficientItems
	ErrInsufficientQi      = entities.ErrInsufficientQi
	ErrInsufficientFunds   = errors.New("not enough spirit stones")
	ErrQuantityUnavailable = errors.New("listing does not have that many items")
	ErrOwnListing          = errors.New("cannot buy your own listing")
	ErrNotSeller           = errors.New("only the seller can remove this listing")
	ErrMissingCredentials  = errors.New("username and password are required")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrMessageTooLong      = fmt.Errorf("message exceeds %d characters", MaxChatLength)
	ErrAlreadyInSect       = errors.New("already a member of a sect")
	ErrNotInSect           = errors.New("not a member of any sect")
	ErrInvalidSectName     = errors.New("sect name is required")
	ErrRootAlreadyRolled   = entities.ErrRootAlreadyRolled
	ErrClassAlreadyTaken   = entities.ErrClassAlreadyTaken
)

// Not-found errors: the target vanished.
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrSellerNotFound  = errors.New("seller not found")
	ErrSectNotFound    = errors.New("sect not found")
	ErrPlayerNotFound  = errors.New("player not found")
)

// Conflict errors: someone else got there first.
var (
	ErrListingInactive = errors.New("listing is no longer active")
	ErrUsernameTaken   = repository.ErrUsernameTaken
	ErrSectNameTaken   = errors.New("sect name already taken")
)

// LevelGateError reports a feature locked behind a cultivation level.
type LevelGateError struct {
	Feature       string
	RequiredLevel int
	CurrentLevel  int
}

func (e LevelGateError) Error() string {
	return fmt.Sprintf("%s requires cultivation level %d (currently %d)", e.Feature, e.RequiredLevel, e.CurrentLevel)
}

// Kind groups errors by how the caller should react.
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "persistence"
}

var (
	validationErrors = []error{
		ErrInvalidQuantity, ErrInvalidPrice, ErrUnknownItem, ErrNotTradable,
		ErrInsufficientItems, ErrInsufficientQi, ErrInsufficientFunds,
		ErrQuantityUnavailable, ErrOwnListing, ErrNotSeller,
		ErrMissingCredentials, ErrInvalidCredentials, ErrEmptyMessage,
		ErrMessageTooLong, ErrAlreadyInSect, ErrNotInSect, ErrInvalidSectName,
		entities.ErrNotReadyForBreakthrough, entities.ErrRootAlreadyRolled,
		entities.ErrClassAlreadyTaken,
	}
	notFoundErrors = []error{
		ErrListingNotFound, ErrSellerNotFound, ErrSectNotFound, ErrPlayerNotFound,
		repository.ErrNotFound,
	}
	conflictErrors = []error{
		ErrListingInactive, ErrUsernameTaken, ErrSectNameTaken, repository.ErrTxConflict,
	}
)

// Classify maps an error onto the taxonomy. Anything unrecognised is
// treated as a persistence or network failure.
func Classify(err error) Kind {
	var gate LevelGateError
	if errors.As(err, &gate) {
		return KindValidation
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return KindNotFound
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return KindConflict
		}
	}
	return KindPersistence
}
