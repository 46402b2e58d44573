// Package keystore keeps one age-encrypted signing key per chain and turns
// pasted secrets (private keys or BIP39 mnemonics) into those keys.
package keystore

import (
	"runtime"
	"sync"
)

// SecureBytes holds decrypted key material. The memory is locked when the
// platform allows it and zeroed on Destroy.
type SecureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewSecureBytes copies data into locked memory.
func NewSecureBytes(data []byte) *SecureBytes {
	sb := &SecureBytes{data: make([]byte, len(data))}
	sb.locked = mlock(sb.data)
	copy(sb.data, data)

	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Destroy()
	})
	return sb
}

// Bytes returns the underlying slice, or nil after Destroy.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsLocked reports whether the memory is mlocked.
func (s *SecureBytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Destroy zeros and unlocks the memory. Safe to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}
	Zero(s.data)
	if s.locked {
		munlock(s.data)
		s.locked = false
	}
	s.data = nil
	runtime.SetFinalizer(s, nil)
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
