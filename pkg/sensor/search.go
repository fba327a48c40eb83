// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sensor

import (
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
)

// SearchStage is the position in the search cycle
type SearchStage int

const (
	SearchIdle SearchStage = iota
	SearchGetImage
	SearchGenChar
	SearchWaitRetry
	SearchDoSearch
)

func (s SearchStage) String() string {
	switch s {
	case SearchIdle:
		return "IDLE"
	case SearchGetImage:
		return "GET_IMAGE"
	case SearchGenChar:
		return "GEN_CHAR"
	case SearchWaitRetry:
		return "WAIT_RETRY"
	case SearchDoSearch:
		return "DO_SEARCH"
	default:
		return "UNKNOWN"
	}
}

type searchCycle struct {
	stage      SearchStage
	retries    int
	lastAction time.Time
}

type matchResult struct {
	found   bool
	expires time.Time
	id      uint16
	score   uint16
}

// stepSearch performs at most one exchange of the search cycle
func (d *Device) stepSearch(now time.Time) {
	s := &d.search

	switch s.stage {
	case SearchIdle:
		if now.Sub(s.lastAction) > SearchInterval {
			s.stage = SearchGetImage
			s.retries = 0
			s.lastAction = now
		}

	case SearchGetImage:
		if err := d.transact(zw101.NewGetImage()); err != nil {
			s.stage = SearchWaitRetry
			s.lastAction = now
			return
		}
		s.stage = SearchGenChar

	case SearchGenChar:
		if err := d.transact(zw101.NewGenChar(searchBuffer)); err != nil {
			s.retries++
			d.log.Debug().Err(err).Int("retry", s.retries).Msg("feature generation failed")
			if s.retries >= MaxSearchRetries {
				d.setStatus(StatusNoValidFinger)
				s.stage = SearchIdle
			} else {
				s.stage = SearchWaitRetry
			}
			s.lastAction = now
			return
		}
		s.stage = SearchDoSearch

	case SearchWaitRetry:
		if now.Sub(s.lastAction) > SearchRetryDelay {
			s.stage = SearchGetImage
		}

	case SearchDoSearch:
		d.runSearch(now)
		s.stage = SearchIdle
		s.lastAction = now

	default:
		s.stage = SearchIdle
	}
}

// runSearch searches the whole library with the features in searchBuffer
// and publishes the outcome
func (d *Device) runSearch(now time.Time) {
	r, err := d.query(zw101.NewSearch(searchBuffer, 0, d.capacity), SearchTimeout, zw101.MinResponseSize)
	if err != nil {
		if code, ok := ConfirmCode(err); ok && code == zw101.ConfirmNotFound {
			d.setStatus(StatusNoMatch)
			return
		}
		d.log.Debug().Err(err).Msg("search failed")
		return
	}

	result, ok := zw101.ParseSearchResult(r.payload())
	if !ok || !result.Matched(d.capacity) {
		d.setStatus(StatusNoMatch)
		return
	}

	d.match = matchResult{
		found:   true,
		expires: now.Add(MatchHoldTime),
		id:      result.Page,
		score:   result.Score,
	}
	d.log.Info().Uint16("id", result.Page).Uint16("score", result.Score).Msg("fingerprint matched")
	d.setStatus(StatusMatchFound)
	d.observer.FingerprintPresent(true)
	d.observer.MatchFound(result.Page, result.Score)
}
