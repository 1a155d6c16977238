package tiledlib

import "strings"

// ======================================================
// FlipFlag
// ======================================================

type FlipFlag uint8

const (
	FlipHorizontal FlipFlag = 1 << iota
	FlipVertical

	flipFlagMax = FlipHorizontal | FlipVertical
)

func (ff FlipFlag) String() string {
	var flags []string
	if ff&FlipHorizontal != 0 {
		flags = append(flags, "horizontal")
	}
	if ff&FlipVertical != 0 {
		flags = append(flags, "vertical")
	}
	if len(flags) == 0 {
		return "None"
	}
	return strings.Join(flags, "|")
}

func (ff FlipFlag) IsValid() bool {
	return ff&^flipFlagMax == 0
}

func (ff FlipFlag) Horizontal() bool {
	return ff&FlipHorizontal != 0
}

func (ff FlipFlag) Vertical() bool {
	return ff&FlipVertical != 0
}
