// Package progress tracks the chaos->formed blend factor.
package progress

import (
	"github.com/tanema/gween/ease"
)

// Controller moves a raw progress value toward 0 or 1 with an exponential
// approach. The raw value is never eased; consumers apply Ease at read time.
type Controller struct {
	progress float32
	target   float32
}

func NewController() *Controller {
	return &Controller{}
}

// SetTarget takes effect on the next Tick. Values snap to 0 or 1.
func (c *Controller) SetTarget(t float32) {
	if t >= 0.5 {
		c.target = 1
	} else {
		c.target = 0
	}
}

func (c *Controller) SetFormed(formed bool) {
	if formed {
		c.target = 1
	} else {
		c.target = 0
	}
}

func (c *Controller) Progress() float32 { return c.progress }
func (c *Controller) Target() float32   { return c.target }

// Tick advances progress by (target - progress) * rate * dt. The factor is
// capped at 1 so a long frame lands on the target instead of overshooting.
func (c *Controller) Tick(dt, rate float32) float32 {
	k := rate * dt
	if k <= 0 {
		return c.progress
	}
	if k > 1 {
		k = 1
	}
	c.progress += (c.target - c.progress) * k
	c.progress = clamp01(c.progress)
	return c.progress
}

// Ease is the cubic in/out curve: 4x^3 below 0.5, 1-(-2x+2)^3/2 above.
func Ease(x float32) float32 {
	return ease.InOutCubic(clamp01(x), 0, 1, 1)
}

// Eased returns Ease(Progress()).
func (c *Controller) Eased() float32 {
	return Ease(c.progress)
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
