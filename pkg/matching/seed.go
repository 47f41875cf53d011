package matching

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed crypto/rand ile yüksek entropili bir PRNG tohumu üretir.
// Testler deterministik sonuç için kendi tohumlu rand.Rand örneklerini
// enjekte eder; üretim kodu bu fonksiyonla tohumlar.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("rastgele tohum okunamadı: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
