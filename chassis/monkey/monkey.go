package monkey

import (
	"errors"
	"math/rand"
	"time"
)

const (
	errorChance = 0.05 // 5% error chance, high enough to watch redelivery happen
)

// ErrMonkey ...
var ErrMonkey = errors.New("monkey error")

func init() {
	rand.Seed(time.Now().UnixNano())
}

// RandomizeError with some probability replaces a nil error with a random
// "monkey" error. Real errors pass through untouched.
func RandomizeError(err error) error {
	if err != nil {
		return err
	}
	if rand.Float32() > errorChance {
		return nil
	}
	return ErrMonkey
}
