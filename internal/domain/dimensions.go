package domain

import (
	"math"
	"strconv"
	"strings"
)

// MaxDimension is the largest per-axis size accepted from user input. It
// matches the widest raster surface browsers allocate.
const MaxDimension = 32767

type OutputDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d OutputDimensions) Empty() bool {
	return d.Width <= 0 || d.Height <= 0
}

// EditWidth applies a width-driven edit. With lock set and a known source
// size, the height is derived from the source ratio, never from d.
func (d OutputDimensions) EditWidth(width int, lock bool, source OutputDimensions) OutputDimensions {
	d.Width = NormalizeDimension(width)
	if lock && !source.Empty() {
		d.Height = scaleRound(d.Width, source.Height, source.Width)
	}
	return d
}

// EditHeight is the height-driven counterpart of EditWidth.
func (d OutputDimensions) EditHeight(height int, lock bool, source OutputDimensions) OutputDimensions {
	d.Height = NormalizeDimension(height)
	if lock && !source.Empty() {
		d.Width = scaleRound(d.Height, source.Width, source.Height)
	}
	return d
}

// LockedHeight returns round(width * sourceHeight / sourceWidth).
func LockedHeight(width int, source OutputDimensions) int {
	if source.Empty() {
		return 0
	}
	return scaleRound(NormalizeDimension(width), source.Height, source.Width)
}

// LockedWidth returns round(height * sourceWidth / sourceHeight).
func LockedWidth(height int, source OutputDimensions) int {
	if source.Empty() {
		return 0
	}
	return scaleRound(NormalizeDimension(height), source.Width, source.Height)
}

// ParseDimension converts raw field input to a pixel count. Non-numeric or
// empty input is 0, negative input is 0 and fractions are truncated.
func ParseDimension(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= MaxDimension {
		return MaxDimension
	}
	return int(v)
}

func NormalizeDimension(v int) int {
	return clampInt(v, 0, MaxDimension)
}

// scaleRound computes round(v * num / den) in integer arithmetic so repeated
// edits cannot pick up float error. Halves round up.
func scaleRound(v, num, den int) int {
	if den <= 0 {
		return 0
	}
	p := int64(v) * int64(num)
	return int((2*p + int64(den)) / (2 * int64(den)))
}
