/*
 * Copyright 2009 Volker Oth (0xdeadbeef)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * NOTE: Converted to C# and modified by Nikse.dk@gmail.com
 * NOTE: Converted from C# to Go by github.com/RistRyder
 */

package bluraysup

import (
	"image/color"

	"github.com/cockroachdb/errors"
)

// ColorModel selects how palette entries map between RGB and YCbCr.
type ColorModel int

const (
	//BT.709, RGB 0..255 (PC) <-> YCbCr 16..235, used by most Blu-ray discs
	ColorModelBt709 ColorModel = iota
	//BT.601, RGB 0..255 (PC) <-> YCbCr 16..235
	ColorModelBt601
	//Full range 0..255 with truncated fixed coefficients, written by this encoder
	ColorModelFullRange
)

func ParseColorModel(name string) (ColorModel, error) {
	switch name {
	case "bt709":
		return ColorModelBt709, nil
	case "bt601":
		return ColorModelBt601, nil
	case "full", "":
		return ColorModelFullRange, nil
	default:
		return ColorModelFullRange, errors.Newf("unknown color model %q", name)
	}
}

func (c ColorModel) String() string {
	switch c {
	case ColorModelBt709:
		return "bt709"
	case ColorModelBt601:
		return "bt601"
	default:
		return "full"
	}
}

// YCrCbEntry is one palette entry in wire order.
type YCrCbEntry struct {
	Alpha uint8
	Cb    uint8
	Cr    uint8
	Index uint8
	Y     uint8
}

// RGBToYCrCb converts a palette entry for the palette definition segment.
// Every channel is truncated toward zero before the chroma bias is added.
func RGBToYCrCb(entry PaletteEntry) YCrCbEntry {
	yCbCr := rgb2YCbCr(int(entry.Color.R), int(entry.Color.G), int(entry.Color.B), ColorModelFullRange)

	return YCrCbEntry{Alpha: entry.Color.A, Cb: byte(yCbCr[1]), Cr: byte(yCbCr[2]), Index: entry.Index, Y: byte(yCbCr[0])}
}

type BluRaySupPalette struct {
	size       int        //Number of palette entries
	r          []byte     //Byte buffer for RED info
	g          []byte     //Byte buffer for GREEN info
	b          []byte     //Byte buffer for BLUE info
	a          []byte     //Byte buffer for alpha info
	y          []byte     //Byte buffer for Y (luminance) info
	cb         []byte     //Byte buffer for Cb (chrominance blue) info
	cr         []byte     //Byte buffer for Cr (chrominance red) info
	colorModel ColorModel //RGB <-> YCbCr transform
}

//Convert RGB color info to YCbCr
func rgb2YCbCr(r, g, b int, colorModel ColorModel) [3]int {
	yCbCr := [3]int{}
	var y, cb, cr float64

	switch colorModel {
	case ColorModelFullRange:
		y = 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
		cr = 0.5*float64(r) - 0.419*float64(g) - 0.081*float64(b)
		cb = -0.169*float64(r) - 0.332*float64(g) + 0.5*float64(b)

		//the bias is added before the conversion to int truncates
		yCbCr[0] = int(y)
		yCbCr[1] = int(128 + cb)
		yCbCr[2] = int(128 + cr)

		return yCbCr
	case ColorModelBt601:
		//BT.601 for RGB 0..255 (PC) -> YCbCr 16..235
		y = float64(r)*0.299*219/255 + float64(g)*0.587*219/255 + float64(b)*0.114*219/255
		cb = float64(-r)*0.168736*224/255 - float64(g)*0.331264*224/255 + float64(b)*0.5*224/255
		cr = float64(r)*0.5*224/255 - float64(g)*0.418688*224/255 - float64(b)*0.081312*224/255
	default:
		//BT.709 for RGB 0..255 (PC) -> YCbCr 16..235
		y = float64(r)*0.2126*219/255 + float64(g)*0.7152*219/255 + float64(b)*0.0722*219/255
		cb = float64(-r)*0.2126/1.8556*224/255 - float64(g)*0.7152/1.8556*224/255 + float64(b)*0.5*224/255
		cr = float64(r)*0.5*224/255 - float64(g)*0.7152/1.5748*224/255 - float64(b)*0.0722/1.5748*224/255
	}

	yCbCr[0] = 16 + int(y+0.5)
	yCbCr[1] = 128 + int(cb+0.5)
	yCbCr[2] = 128 + int(cr+0.5)
	for i := 0; i < 3; i++ {
		if yCbCr[i] < 16 {
			yCbCr[i] = 16
		} else if i == 0 && yCbCr[i] > 235 {
			yCbCr[i] = 235
		} else if i > 0 && yCbCr[i] > 240 {
			yCbCr[i] = 240
		}
	}

	return yCbCr
}

//AlphaAtIndex returns the alpha channel at the specified palette index
func (b *BluRaySupPalette) AlphaAtIndex(index int) int {
	return int(b.a[index])
}

//Color returns the RGBA color at the specified palette index
func (b *BluRaySupPalette) Color(index int) color.NRGBA {
	return color.NRGBA{R: b.r[index], G: b.g[index], B: b.b[index], A: b.a[index]}
}

//ColorPalette returns all entries, undefined entries are fully transparent
func (b *BluRaySupPalette) ColorPalette() color.Palette {
	palette := make(color.Palette, b.size)
	for i := 0; i < b.size; i++ {
		palette[i] = b.Color(i)
	}

	return palette
}

//NewBluRaySupPalette initializes the palette with transparent black (RGBA: 0x00000000)
func NewBluRaySupPalette(palSize int, colorModel ColorModel) *BluRaySupPalette {
	palette := &BluRaySupPalette{
		size:       palSize,
		colorModel: colorModel,
		r:          make([]byte, palSize),
		g:          make([]byte, palSize),
		b:          make([]byte, palSize),
		a:          make([]byte, palSize),
		y:          make([]byte, palSize),
		cb:         make([]byte, palSize),
		cr:         make([]byte, palSize),
	}

	//set at least all alpha values to invisible
	yCbCr := rgb2YCbCr(0, 0, 0, colorModel)
	for i := 0; i < palSize; i++ {
		palette.y[i] = byte(yCbCr[0])
		palette.cb[i] = byte(yCbCr[1])
		palette.cr[i] = byte(yCbCr[2])
	}

	return palette
}

//SetAlpha sets the alpha channel at the specified palette index
func (b *BluRaySupPalette) SetAlpha(index, alpha int) {
	b.a[index] = byte(alpha)
}

//SetYCbCr sets the palette entry (YCbCr mode)
func (b *BluRaySupPalette) SetYCbCr(index, yn, cbn, crn int) {
	b.y[index] = byte(yn)
	b.cb[index] = byte(cbn)
	b.cr[index] = byte(crn)
	//create RGB
	rgb := YCbCr2Rgb(yn, cbn, crn, b.colorModel)
	b.r[index] = byte(rgb[0])
	b.g[index] = byte(rgb[1])
	b.b[index] = byte(rgb[2])
}

func (b *BluRaySupPalette) Size() int {
	return b.size
}

//YCbCr2Rgb converts YCbCr color info to RGB
func YCbCr2Rgb(y, cb, cr int, colorModel ColorModel) [3]int {
	rgb := [3]int{}
	var r, g, b float64

	cb -= 128
	cr -= 128

	switch colorModel {
	case ColorModelFullRange:
		y1 := float64(y)
		r = y1 + float64(cr)*1.402
		g = y1 - float64(cb)*0.344136 - float64(cr)*0.714136
		b = y1 + float64(cb)*1.772
	case ColorModelBt601:
		//BT.601 for YCbCr 16..235 -> RGB 0..255 (PC)
		y1 := float64(y-16) * 1.164383562
		r = y1 + float64(cr)*1.596026317
		g = y1 - float64(cr)*0.8129674985 - float64(cb)*0.3917615979
		b = y1 + float64(cb)*2.017232218
	default:
		//BT.709 for YCbCr 16..235 -> RGB 0..255 (PC)
		y1 := float64(y-16) * 1.164383562
		r = y1 + float64(cr)*1.792741071
		g = y1 - float64(cr)*0.5329093286 - float64(cb)*0.2132486143
		b = y1 + float64(cb)*2.112401786
	}

	rgb[0] = roundClamp(r)
	rgb[1] = roundClamp(g)
	rgb[2] = roundClamp(b)

	return rgb
}

func roundClamp(value float64) int {
	if value < 0 {
		return 0
	}

	rounded := int(value + 0.5)
	if rounded > 255 {
		return 255
	}

	return rounded
}
