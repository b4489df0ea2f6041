package video

import "image/color"

// cgaPalette holds the 16 RGBI colours of the CGA.
var cgaPalette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0xAA, 0xFF},
	{0x00, 0xAA, 0x00, 0xFF}, {0x00, 0xAA, 0xAA, 0xFF},
	{0xAA, 0x00, 0x00, 0xFF}, {0xAA, 0x00, 0xAA, 0xFF},
	{0xAA, 0x55, 0x00, 0xFF}, {0xAA, 0xAA, 0xAA, 0xFF},
	{0x55, 0x55, 0x55, 0xFF}, {0x55, 0x55, 0xFF, 0xFF},
	{0x55, 0xFF, 0x55, 0xFF}, {0x55, 0xFF, 0xFF, 0xFF},
	{0xFF, 0x55, 0x55, 0xFF}, {0xFF, 0x55, 0xFF, 0xFF},
	{0xFF, 0xFF, 0x55, 0xFF}, {0xFF, 0xFF, 0xFF, 0xFF},
}

// defaultDAC is the power-on VGA DAC, in 8-bit components.
var defaultDAC = [256][3]byte{
	{0, 0, 0}, {0, 0, 169}, {0, 169, 0}, {0, 169, 169}, {169, 0, 0}, {169, 0, 169}, {169, 169, 0}, {169, 169, 169},
	{0, 0, 84}, {0, 0, 255}, {0, 169, 84}, {0, 169, 255}, {169, 0, 84}, {169, 0, 255}, {169, 169, 84}, {169, 169, 255},
	{0, 84, 0}, {0, 84, 169}, {0, 255, 0}, {0, 255, 169}, {169, 84, 0}, {169, 84, 169}, {169, 255, 0}, {169, 255, 169},
	{0, 84, 84}, {0, 84, 255}, {0, 255, 84}, {0, 255, 255}, {169, 84, 84}, {169, 84, 255}, {169, 255, 84}, {169, 255, 255},
	{84, 0, 0}, {84, 0, 169}, {84, 169, 0}, {84, 169, 169}, {255, 0, 0}, {255, 0, 169}, {255, 169, 0}, {255, 169, 169},
	{84, 0, 84}, {84, 0, 255}, {84, 169, 84}, {84, 169, 255}, {255, 0, 84}, {255, 0, 255}, {255, 169, 84}, {255, 169, 255},
	{84, 84, 0}, {84, 84, 169}, {84, 255, 0}, {84, 255, 169}, {255, 84, 0}, {255, 84, 169}, {255, 255, 0}, {255, 255, 169},
	{84, 84, 84}, {84, 84, 255}, {84, 255, 84}, {84, 255, 255}, {255, 84, 84}, {255, 84, 255}, {255, 255, 84}, {255, 255, 255},
	{255, 125, 125}, {255, 157, 125}, {255, 190, 125}, {255, 222, 125}, {255, 255, 125}, {222, 255, 125}, {190, 255, 125}, {157, 255, 125},
	{125, 255, 125}, {125, 255, 157}, {125, 255, 190}, {125, 255, 222}, {125, 255, 255}, {125, 222, 255}, {125, 190, 255}, {125, 157, 255},
	{182, 182, 255}, {198, 182, 255}, {218, 182, 255}, {234, 182, 255}, {255, 182, 255}, {255, 182, 234}, {255, 182, 218}, {255, 182, 198},
	{255, 182, 182}, {255, 198, 182}, {255, 218, 182}, {255, 234, 182}, {255, 255, 182}, {234, 255, 182}, {218, 255, 182}, {198, 255, 182},
	{182, 255, 182}, {182, 255, 198}, {182, 255, 218}, {182, 255, 234}, {182, 255, 255}, {182, 234, 255}, {182, 218, 255}, {182, 198, 255},
	{0, 0, 113}, {28, 0, 113}, {56, 0, 113}, {84, 0, 113}, {113, 0, 113}, {113, 0, 84}, {113, 0, 56}, {113, 0, 28},
	{113, 0, 0}, {113, 28, 0}, {113, 56, 0}, {113, 84, 0}, {113, 113, 0}, {84, 113, 0}, {56, 113, 0}, {28, 113, 0},
	{0, 113, 0}, {0, 113, 28}, {0, 113, 56}, {0, 113, 84}, {0, 113, 113}, {0, 84, 113}, {0, 56, 113}, {0, 28, 113},
	{56, 56, 113}, {68, 56, 113}, {84, 56, 113}, {97, 56, 113}, {113, 56, 113}, {113, 56, 97}, {113, 56, 84}, {113, 56, 68},
	{113, 56, 56}, {113, 68, 56}, {113, 84, 56}, {113, 97, 56}, {113, 113, 56}, {97, 113, 56}, {84, 113, 56}, {68, 113, 56},
	{56, 113, 56}, {56, 113, 68}, {56, 113, 84}, {56, 113, 97}, {56, 113, 113}, {56, 97, 113}, {56, 84, 113}, {56, 68, 113},
	{80, 80, 113}, {89, 80, 113}, {97, 80, 113}, {105, 80, 113}, {113, 80, 113}, {113, 80, 105}, {113, 80, 97}, {113, 80, 89},
	{113, 80, 80}, {113, 89, 80}, {113, 97, 80}, {113, 105, 80}, {113, 113, 80}, {105, 113, 80}, {97, 113, 80}, {89, 113, 80},
	{80, 113, 80}, {80, 113, 89}, {80, 113, 97}, {80, 113, 105}, {80, 113, 113}, {80, 105, 113}, {80, 97, 113}, {80, 89, 113},
	{0, 0, 64}, {16, 0, 64}, {32, 0, 64}, {48, 0, 64}, {64, 0, 64}, {64, 0, 48}, {64, 0, 32}, {64, 0, 16},
	{64, 0, 0}, {64, 16, 0}, {64, 32, 0}, {64, 48, 0}, {64, 64, 0}, {48, 64, 0}, {32, 64, 0}, {16, 64, 0},
	{0, 64, 0}, {0, 64, 16}, {0, 64, 32}, {0, 64, 48}, {0, 64, 64}, {0, 48, 64}, {0, 32, 64}, {0, 16, 64},
	{32, 32, 64}, {40, 32, 64}, {48, 32, 64}, {56, 32, 64}, {64, 32, 64}, {64, 32, 56}, {64, 32, 48}, {64, 32, 40},
	{64, 32, 32}, {64, 40, 32}, {64, 48, 32}, {64, 56, 32}, {64, 64, 32}, {56, 64, 32}, {48, 64, 32}, {40, 64, 32},
	{32, 64, 32}, {32, 64, 40}, {32, 64, 48}, {32, 64, 56}, {32, 64, 64}, {32, 56, 64}, {32, 48, 64}, {32, 40, 64},
	{44, 44, 64}, {48, 44, 64}, {52, 44, 64}, {60, 44, 64}, {64, 44, 64}, {64, 44, 60}, {64, 44, 52}, {64, 44, 48},
	{64, 44, 44}, {64, 48, 44}, {64, 52, 44}, {64, 60, 44}, {64, 64, 44}, {60, 64, 44}, {52, 64, 44}, {48, 64, 44},
	{44, 64, 44}, {44, 64, 48}, {44, 64, 52}, {44, 64, 60}, {44, 64, 64}, {44, 60, 64}, {44, 52, 64}, {44, 48, 64},
	{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
}

// CGAColor returns colour i of the 16-colour CGA palette.
func CGAColor(i byte) color.RGBA {
	return cgaPalette[i&0x0F]
}
