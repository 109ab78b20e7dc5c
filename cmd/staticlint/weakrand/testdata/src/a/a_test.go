package a

import (
	"math/rand"
	"testing"
)

func TestCode(t *testing.T) {
	_ = rand.Intn(10)
}
