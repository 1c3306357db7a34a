package engine

import "math"

// Parameter is a draggable handle on the pad that controls two values, one
// per axis. X and Y are its position in normalized pad coordinates, which is
// also where it can be grabbed.
type Parameter struct {
	Name string
	X, Y float64
	set  func(x, y float64)
}

// ParameterRadius is how close to a parameter, in normalized pad
// coordinates, a touch must land to grab it.
const ParameterRadius = 0.1

func NewParameter(name string, x, y float64, set func(x, y float64)) *Parameter {
	return &Parameter{Name: name, X: x, Y: y, set: set}
}

// Set moves the parameter and applies the values.
func (p *Parameter) Set(x, y float64) {
	p.X, p.Y = x, y
	if p.set != nil {
		p.set(x, y)
	}
}

func (p *Parameter) distance(x, y float64) float64 {
	return math.Hypot(x-p.X, y-p.Y)
}
