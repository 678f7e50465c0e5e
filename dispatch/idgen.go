package dispatch

import (
	"math/rand"
	"strconv"
)

// IDGenerator produces a fresh external correlation key as a string-encoded
// integer. Pluggable so callers can swap in a real allocation scheme.
type IDGenerator func() string

// RandomIDGenerator returns keys in [0,100] inclusive. Deliberately
// coarse; collisions are possible and acceptable for demo-grade use.
func RandomIDGenerator() string {
	return strconv.Itoa(rand.Intn(101))
}
