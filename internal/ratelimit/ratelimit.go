// Package ratelimit paces page interactions so the automation does not
// hammer the site with perfectly regular timing.
package ratelimit

import (
	"math/rand"
	"time"
)

// Pacer sleeps for a base duration plus a random jitter of up to the
// same amount, mirroring human-ish variation between actions.
type Pacer struct {
	jitter bool
	sleep  func(time.Duration)
}

func NewPacer() *Pacer {
	return &Pacer{
		jitter: true,
		sleep:  time.Sleep,
	}
}

func (p *Pacer) Sleep(base time.Duration) {
	d := base
	if p.jitter && base > 0 {
		d += time.Duration(rand.Int63n(int64(base)))
	}
	p.sleep(d)
}
