// Package util provides utility functions for deterministic per-student
// randomization and extracting metadata from the environment.
package util

import (
	"encoding/json"
)

// Seed folding and generator constants. The shuffle order is never persisted;
// it is recomputed on every render and submission, so the same (exam, student)
// pair must produce the same permutation across processes and time.
const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619
)

// FoldSeed derives a 32-bit seed from the exam and student identifiers by
// folding the UTF-8 bytes of "examID::studentID" through FNV-1a.
func FoldSeed(examID, studentID string) uint32 {
	h := fnvOffsetBasis
	for _, b := range []byte(examID + "::" + studentID) {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return h
}

// mulberry32 is a small counter-based PRNG with 32-bit state. One
// multiply-xor-shift step per call, output in [0,1). uint32 arithmetic wraps,
// which is exactly the masking the algorithm needs.
type mulberry32 struct {
	state uint32
}

func (m *mulberry32) next() float64 {
	m.state += 0x6D2B79F5
	z := m.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return float64(z^(z>>14)) / 4294967296.0
}

// ShuffledOrder returns a new slice holding a Fisher-Yates permutation of
// items, driven by the seed derived from (examID, studentID). The input is
// never mutated and the function never fails.
func ShuffledOrder[T any](items []T, examID, studentID string) []T {
	out := make([]T, len(items))
	copy(out, items)
	if len(out) < 2 {
		return out
	}
	rng := mulberry32{state: FoldSeed(examID, studentID)}
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng.next() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ShuffleSerializedOptions shuffles a JSON-encoded option list for one
// question. Malformed input is returned unchanged rather than failing the
// caller; a broken question renders in authored order instead of erroring the
// whole exam.
func ShuffleSerializedOptions(raw, examID, studentID string) string {
	if raw == "" {
		return raw
	}
	var options []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return raw
	}
	shuffled := ShuffledOrder(options, examID, studentID)
	out, err := json.Marshal(shuffled)
	if err != nil {
		return raw
	}
	return string(out)
}

// ParseOptions decodes a serialized option list into strings. Malformed input
// yields nil, mirroring ShuffleSerializedOptions' tolerance.
func ParseOptions(raw string) []string {
	if raw == "" {
		return nil
	}
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil
	}
	return options
}
