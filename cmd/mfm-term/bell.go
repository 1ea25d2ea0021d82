package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const bellRate = beep.SampleRate(44100)

// bell plays a short tone when new faults show up in the run statistics.
type bell struct {
	enabled bool
	last    int64
}

func newBell(enabled bool) (*bell, error) {
	if !enabled {
		return &bell{}, nil
	}
	if err := speaker.Init(bellRate, bellRate.N(time.Second/10)); err != nil {
		return &bell{}, err
	}
	return &bell{enabled: true}, nil
}

// observe rings once if faults grew since the previous call.
func (b *bell) observe(faults int64) {
	grew := faults > b.last
	b.last = faults
	if !b.enabled || !grew {
		return
	}
	sine, err := generators.SineTone(bellRate, 660)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(bellRate.N(40*time.Millisecond), sine))
}

func (b *bell) close() {
	if b.enabled {
		speaker.Close()
	}
}
