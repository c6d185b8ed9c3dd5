package layer

import (
	"time"

	"github.com/iburimskiy/boot-sequence/internal/anim"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	viewW = 800
	viewH = 600
)

func frame(clock *anim.FakeClock) Frame {
	return Frame{Now: clock.Now(), Width: viewW, Height: viewH, Visible: true}
}

// everyLayer builds one of each concrete layer on a shared fake clock.
func everyLayer(clock *anim.FakeClock) []Layer {
	var parallax anim.Parallax
	return []Layer{
		NewLattice(DefaultLatticeConfig(), clock, nil),
		NewField(DefaultFieldConfig(), clock, nil),
		NewBeam(DefaultBeamConfig(), clock, nil),
		NewParticles(DefaultParticleConfig(), &parallax, clock, nil),
		NewHum(DefaultHumConfig(), clock, nil),
	}
}
