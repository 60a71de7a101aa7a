package witvalue

import (
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// integer is a Go number reduced to a sign and a magnitude. When neg is set
// the value is in i, otherwise it is in u. huge marks integral floats beyond
// 64 bits.
type integer struct {
	u    uint64
	i    int64
	neg  bool
	huge bool
}

func (n integer) fitsUnsigned(bits int) bool {
	return !n.huge && !n.neg && (bits == 64 || n.u < 1<<bits)
}

func (n integer) fitsSigned(bits int) bool {
	if n.huge {
		return false
	}
	if n.neg {
		return bits == 64 || n.i >= -(1<<(bits-1))
	}
	return n.u <= 1<<(bits-1)-1
}

func (n integer) signed() int64 {
	if n.neg {
		return n.i
	}
	return int64(n.u)
}

func fromInt(v int64) integer {
	if v < 0 {
		return integer{i: v, neg: true}
	}
	return integer{u: uint64(v)}
}

// toInteger accepts every Go integer type, integral floats, and json.Number
// as produced by decoders with UseNumber.
func toInteger(value any) (integer, bool) {
	switch v := value.(type) {
	case int:
		return fromInt(int64(v)), true
	case int8:
		return fromInt(int64(v)), true
	case int16:
		return fromInt(int64(v)), true
	case int32:
		return fromInt(int64(v)), true
	case int64:
		return fromInt(v), true
	case uint:
		return integer{u: uint64(v)}, true
	case uint8:
		return integer{u: uint64(v)}, true
	case uint16:
		return integer{u: uint64(v)}, true
	case uint32:
		return integer{u: uint64(v)}, true
	case uint64:
		return integer{u: v}, true
	case float32:
		return floatInteger(float64(v))
	case float64:
		return floatInteger(v)
	case json.Number:
		if i, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return fromInt(i), true
		}
		if u, err := strconv.ParseUint(string(v), 10, 64); err == nil {
			return integer{u: u}, true
		}
		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return floatInteger(f)
		}
	}
	return integer{}, false
}

func floatInteger(f float64) (integer, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return integer{}, false
	}
	if f < 0 {
		if f < math.MinInt64 {
			return integer{neg: true, huge: true}, true
		}
		return fromInt(int64(f)), true
	}
	if f >= 1<<64 {
		return integer{huge: true}, true
	}
	return integer{u: uint64(f)}, true
}

// toFloat accepts every Go number type and json.Number.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	}
	if n, ok := toInteger(value); ok {
		if n.neg {
			return float64(n.i), true
		}
		return float64(n.u), true
	}
	return 0, false
}
