package game

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"go-cultivation/service"
)

var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrNotYourTurn       = errors.New("it is not your turn")
	ErrNotInCombat       = errors.New("you are not in combat")
	ErrInCombat          = errors.New("finish the fight first")
	ErrDevourPending     = errors.New("decide the fate of the lingering essence first")
	ErrRootFirst         = errors.New("you must first divine your spiritual roots")
	ErrClassFirst        = errors.New("you must first choose a cultivation path")
	ErrUnknownClass      = errors.New("unknown cultivation path")
	ErrWrongClass        = errors.New("your cultivation path does not allow that")
	ErrTameUnavailable   = errors.New("this opponent cannot be tamed")
	ErrNotUsable         = errors.New("that item cannot be used")
	ErrNotUsableInCombat = errors.New("that item cannot be used in combat")
	ErrNeedsCombat       = errors.New("that item can only be used in combat")
	ErrIncapacitated     = errors.New("you are too weak; recover first")
	ErrRecipeUnavailable = errors.New("you cannot concoct that recipe")
)

var validationErrors = []error{
	ErrUnknownAction, ErrNotYourTurn, ErrNotInCombat, ErrInCombat,
	ErrDevourPending, ErrRootFirst, ErrClassFirst, ErrUnknownClass,
	ErrWrongClass, ErrTameUnavailable, ErrNotUsable, ErrNotUsableInCombat,
	ErrNeedsCombat, ErrIncapacitated, ErrRecipeUnavailable,
}

// ErrorKind classifies game errors first and defers to the service
// taxonomy for everything else.
func ErrorKind(err error) service.Kind {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return service.KindValidation
		}
	}
	return service.Classify(err)
}

// UserMessage renders an error as a sentence.
func UserMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	msg = string(r)
	if !strings.HasSuffix(msg, ".") && !strings.HasSuffix(msg, "!") {
		msg += "."
	}
	return msg
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, service.ErrInvalidQuantity
	}
	return n, nil
}
