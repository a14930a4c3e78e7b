package blocks

// Color identifies the color of a cell. ColorEmpty marks an unoccupied cell.
type Color uint8

const (
	ColorEmpty Color = iota
	ColorRed
	ColorOrange
	ColorGreen
	ColorYellow
	ColorLightOrange
	ColorLightGreen
	ColorLightYellow
)

func (c Color) String() string {
	switch c {
	case ColorEmpty:
		return "Empty"
	case ColorRed:
		return "Red"
	case ColorOrange:
		return "Orange"
	case ColorGreen:
		return "Green"
	case ColorYellow:
		return "Yellow"
	case ColorLightOrange:
		return "LightOrange"
	case ColorLightGreen:
		return "LightGreen"
	case ColorLightYellow:
		return "LightYellow"
	}
	return "Unknown"
}

// RGB returns the display color as 8-bit red, green and blue components.
func (c Color) RGB() (r, g, b uint8) {
	switch c {
	case ColorRed:
		return 0xe0, 0x20, 0x20
	case ColorOrange:
		return 0xf0, 0x80, 0x10
	case ColorGreen:
		return 0x20, 0xc0, 0x30
	case ColorYellow:
		return 0xf0, 0xe0, 0x20
	case ColorLightOrange:
		return 0xf8, 0xb8, 0x70
	case ColorLightGreen:
		return 0x90, 0xf0, 0x90
	case ColorLightYellow:
		return 0xf8, 0xf0, 0xa0
	}
	return 0x10, 0x10, 0x10
}
