package b

import "crypto/rand"

func Salt() []byte {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return b
}
