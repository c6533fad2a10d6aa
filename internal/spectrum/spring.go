package spectrum

import "github.com/charmbracelet/harmonica"

// springField eases drawn bar heights with a damped spring, one projectile
// per bar. It is purely a display easing: the EMA/peak-hold state machine
// in Visualizer is untouched.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64, n int) *springField {
	return &springField{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		pos:    make([]float64, n),
		vel:    make([]float64, n),
	}
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return p
}

// SetSpringEase enables spring easing of the drawn bar heights at the given
// frame rate. Call with fps <= 0 to disable.
func (v *Visualizer) SetSpringEase(fps int) {
	if fps <= 0 {
		v.ease = nil
		return
	}
	v.ease = newSpringField(fps, 9.0, 0.8, len(v.bars))
}
