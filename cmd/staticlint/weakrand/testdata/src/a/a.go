package a

import (
	crand "crypto/rand"
	"math/rand" // want `импорт math/rand запрещён, используйте crypto/rand`
)

func Code() int {
	_, _ = crand.Read(make([]byte, 1))
	return rand.Intn(10)
}
