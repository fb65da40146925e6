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
	"image"

	"github.com/cockroachdb/errors"
)

const AlphaCrop = 14

//DecodeImage joins the object fragments and expands the RLE data with the given palette
func DecodeImage(fragments []OdsData, palette *BluRaySupPalette) (*image.Paletted, error) {
	if len(fragments) == 0 || fragments[0].Fragment == nil {
		return nil, errors.New("no object fragments to decode")
	}

	size := fragments[0].Size
	if size.Width <= 0 || size.Height <= 0 {
		return nil, errors.Newf("invalid object size %v", size)
	}

	buffer := []byte{}
	for _, ods := range fragments {
		buffer = append(buffer, ods.Fragment.ImageBuffer[:ods.Fragment.ImagePacketSize]...)
	}

	pixels, rleErr := DecodeRLE(buffer, size.Width, size.Height)
	if rleErr != nil {
		return nil, errors.Wrapf(rleErr, "failed to decode object %d", fragments[0].ObjectId)
	}

	return &image.Paletted{
		Pix:     pixels,
		Stride:  size.Width,
		Rect:    image.Rect(0, 0, size.Width, size.Height),
		Palette: palette.ColorPalette(),
	}, nil
}

func DecodePalette(paletteInfos []PaletteInfo, colorModel ColorModel) *BluRaySupPalette {
	palette := NewBluRaySupPalette(MaxPaletteSize, colorModel)
	//by definition, index 0xff is always completely transparent
	//also all entries must be fully transparent after initialization

	if len(paletteInfos) < 1 {
		return palette
	}

	//always use last palette
	p := paletteInfos[len(paletteInfos)-1]

	index := 0
	for i := 0; i < p.Size; i++ {
		//each palette entry consists of 5 bytes
		palIndex := p.Buffer[index]
		y := p.Buffer[index+1]
		cr := p.Buffer[index+2]
		cb := p.Buffer[index+3]
		alpha := p.Buffer[index+4]
		index += 5
		alphaOld := palette.AlphaAtIndex(int(palIndex))

		//avoid fading out
		if alpha >= byte(alphaOld) {
			if alpha < AlphaCrop {
				//to not mess with scaling algorithms, make transparent color black
				y = byte(rgb2YCbCr(0, 0, 0, colorModel)[0])
				cr = 128
				cb = 128
			}

			palette.SetAlpha(int(palIndex), int(alpha))
		}

		palette.SetYCbCr(int(palIndex), int(y), int(cb), int(cr))
	}

	return palette
}
