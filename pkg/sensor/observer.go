// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

// Observer receives the device's observable outputs. Calls are made from the
// goroutine driving the Device and must not call back into it.
type Observer interface {
	FingerprintPresent(present bool)
	MatchFound(id, score uint16)
	StatusChanged(status string)
}

// Observers fans every update out to each observer in order
type Observers []Observer

func (o Observers) FingerprintPresent(present bool) {
	for _, obs := range o {
		obs.FingerprintPresent(present)
	}
}

func (o Observers) MatchFound(id, score uint16) {
	for _, obs := range o {
		obs.MatchFound(id, score)
	}
}

func (o Observers) StatusChanged(status string) {
	for _, obs := range o {
		obs.StatusChanged(status)
	}
}

type nopObserver struct{}

func (nopObserver) FingerprintPresent(bool)   {}
func (nopObserver) MatchFound(uint16, uint16) {}
func (nopObserver) StatusChanged(string)      {}
