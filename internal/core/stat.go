package core

import (
	"math"
	"strconv"
)

// Stat is a float64 that encodes NaN and ±Inf as JSON null, which plain
// float64 cannot do.
type Stat float64

// NaN is the undefined statistic.
var NaN = Stat(math.NaN())

// IsNaN reports whether the statistic is undefined.
func (s Stat) IsNaN() bool { return math.IsNaN(float64(s)) }

func (s Stat) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (s *Stat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NaN
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*s = Stat(f)
	return nil
}
