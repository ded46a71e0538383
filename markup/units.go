package markup

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for font sizes inside style directives.

// Unit represents the original unit of a length value as written in a directive.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers, treated as px
	UnitPX                  // CSS pixels (1/96 in)
	UnitPT                  // points (1/72 in)
	UnitMM                  // millimeters
	UnitEM                  // relative to the base font size
	UnitPercent             // relative to the base font size, in percent
)

// Conversion constants between px, pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToPt = 0.75
	PtToPx = 1.0 / PxToPt
	PxToMm = PxToPt * PtToMm
	MmToPx = 1.0 / PxToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitEM:
		return "em"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// IsRelative reports whether the length needs a base size to resolve.
func (l Length) IsRelative() bool { return l.Unit == UnitEM || l.Unit == UnitPercent }

// Resolve converts the length to px; em and % resolve against basePx.
func (l Length) Resolve(basePx float64) float64 {
	switch l.Unit {
	case UnitEM:
		return l.Value * basePx
	case UnitPercent:
		return l.Value * basePx / 100
	default:
		return l.To(UnitPX)
	}
}

// To converts an absolute length to target unit. Supported targets: UnitPX, UnitPT, UnitMM.
// Relative units are returned as-is; use Resolve for them.
func (l Length) To(target Unit) float64 {
	var px float64
	switch l.Unit {
	case UnitPX, UnitNone:
		px = l.Value
	case UnitPT:
		px = l.Value * PtToPx
	case UnitMM:
		px = l.Value * MmToPx
	default:
		return l.Value
	}
	switch target {
	case UnitPT:
		return px * PxToPt
	case UnitMM:
		return px * PxToMm
	default:
		return px
	}
}

func (l Length) ToPX() float64 { return l.To(UnitPX) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }
func (l Length) ToMM() float64 { return l.To(UnitMM) }

// String formats the length the way it would be written in a directive.
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseLength parses a directive length string preserving its unit.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"em", UnitEM}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
