// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package zw101

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// newFuzzRng creates a random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := time.Now().UnixNano()
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if s, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			seed = s
		}
	}
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func randomPacket(rng *rand.Rand) *Packet {
	ids := []uint8{PIDCommand, PIDData, PIDAck, PIDEndOfData}
	payload := make([]byte, rng.Intn(MaxPayloadSize+1))
	rng.Read(payload)
	return NewPacket(rng.Uint32(), ids[rng.Intn(len(ids))], payload)
}

func TestFuzz_EncodeDecodeRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	d := NewDecoder()

	for i := 0; i < getFuzzRounds(); i++ {
		want := randomPacket(rng)
		frame := EncodePacket(want)

		var got *Packet
		for j, b := range frame {
			p, err := d.DecodeByte(b)
			if err != nil {
				t.Fatalf("round %d: DecodeByte() error = %v", i, err)
			}
			if p != nil && j != len(frame)-1 {
				t.Fatalf("round %d: packet completed early at byte %d", i, j)
			}
			got = p
		}
		if got == nil {
			t.Fatalf("round %d: no packet decoded", i)
		}
		if got.Address() != want.Address() || got.ID() != want.ID() || !bytes.Equal(got.Payload(), want.Payload()) {
			t.Fatalf("round %d: decoded packet differs", i)
		}

		one, err := DecodePacket(frame)
		if err != nil || !bytes.Equal(one.Payload(), want.Payload()) {
			t.Fatalf("round %d: DecodePacket() = %v", i, err)
		}
	}
}

func TestFuzz_RandomBytesNeverPanic(t *testing.T) {
	rng := newFuzzRng(t)
	d := NewDecoder()
	buf := make([]byte, 512)

	for i := 0; i < getFuzzRounds(); i++ {
		rng.Read(buf)
		for _, b := range buf {
			d.DecodeByte(b)
		}
		DecodePacket(buf[:rng.Intn(len(buf))])
		ValidatePacket(randomPacket(rng))
	}
}
