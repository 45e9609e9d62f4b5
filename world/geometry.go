package world

import (
	"fmt"
	"math"
)

// Geometry holds the field dimensions and speeds shared by the authority and
// its peers. Both sides must run with identical values.
type Geometry struct {
	FieldWidth   float64 `toml:"field_width"`
	FieldHeight  float64 `toml:"field_height"`
	PaddleWidth  float64 `toml:"paddle_width"`
	PaddleHeight float64 `toml:"paddle_height"`
	Padding      float64 `toml:"padding"`
	BallRadius   float64 `toml:"ball_radius"`
	PlayerSpeed  float64 `toml:"player_speed"`
	BallSpeed    float64 `toml:"ball_speed"`
}

func DefaultGeometry() Geometry {
	return Geometry{
		FieldWidth:   1280,
		FieldHeight:  720,
		PaddleWidth:  20,
		PaddleHeight: 130,
		Padding:      50,
		BallRadius:   9,
		PlayerSpeed:  900,
		BallSpeed:    400,
	}
}

// ConfigurationError is a geometry invariant violation. It is only produced at
// startup; the simulation assumes a validated Geometry.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "world: invalid geometry: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the invariants the collision and wire code rely on.
func (g Geometry) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"field_width", g.FieldWidth},
		{"field_height", g.FieldHeight},
		{"paddle_width", g.PaddleWidth},
		{"paddle_height", g.PaddleHeight},
		{"ball_radius", g.BallRadius},
		{"player_speed", g.PlayerSpeed},
		{"ball_speed", g.BallSpeed},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return configErrorf("%s must be positive, got %v", p.name, p.value)
		}
	}
	if g.Padding < 0 {
		return configErrorf("padding must not be negative, got %v", g.Padding)
	}
	if g.BallRadius*2 >= g.PaddleHeight {
		return configErrorf("ball diameter %v must be less than paddle height %v", g.BallRadius*2, g.PaddleHeight)
	}
	if g.BallRadius*2 >= g.PaddleWidth {
		return configErrorf("ball diameter %v must be less than paddle width %v", g.BallRadius*2, g.PaddleWidth)
	}
	if g.FieldWidth > math.MaxUint16 || g.FieldHeight > math.MaxUint16 {
		return configErrorf("field %vx%v does not fit 16-bit coordinates", g.FieldWidth, g.FieldHeight)
	}
	if g.PaddleHeight >= g.FieldHeight {
		return configErrorf("paddle height %v must be less than field height %v", g.PaddleHeight, g.FieldHeight)
	}
	if 2*(g.Padding+g.PaddleWidth) >= g.FieldWidth {
		return configErrorf("paddles overlap on a field %v wide", g.FieldWidth)
	}
	return nil
}
