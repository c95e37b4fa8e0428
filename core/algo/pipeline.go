package algo

import "github.com/huangsam/signalboard/schema"

// Stage is one clamped multiplier in a Pipeline.
type Stage struct {
	Key   schema.BreakdownKey
	Value float64
	Floor float64
	Cap   float64
}

// Pipeline applies its stages in slice order. Each stage is clamped on its own,
// so one extreme input cannot dominate the product.
type Pipeline []Stage

// Apply returns the product of the clamped stages and the per-stage values used.
func (p Pipeline) Apply() (float64, map[schema.BreakdownKey]float64) {
	product := 1.0
	breakdown := make(map[schema.BreakdownKey]float64, len(p))
	for _, s := range p {
		v := Clamp(s.Value, s.Floor, s.Cap)
		breakdown[s.Key] = v
		product *= v
	}
	return product, breakdown
}

// StageFrom builds a stage from a bounds pair.
func StageFrom(key schema.BreakdownKey, value float64, b schema.Bounds) Stage {
	return Stage{Key: key, Value: value, Floor: b.Floor, Cap: b.Cap}
}
