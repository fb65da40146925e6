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
 * NOTE: For more info see http://blog.thescorpius.com/index.php/2017/07/15/presentation-graphic-stream-sup-files-bluray-subtitle-format/
 * NOTE: Converted from C# to Go by github.com/RistRyder
 */

package bluraysup

import (
	"fmt"
	"image"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/common"
)

func completePcs(pcs *PcsData, bitmapObjects map[int][]OdsData, palettes map[int][]PaletteInfo) bool {
	if pcs == nil || pcs.PcsObjects == nil || palettes == nil {
		return false
	}
	if len(pcs.PcsObjects) == 0 {
		return true
	}
	infos, exists := palettes[pcs.PaletteId]
	if !exists {
		return false
	}

	pcs.BitmapObjects = [][]OdsData{}
	pcs.PaletteInfos = infos
	found := false
	for index := 0; index < len(pcs.PcsObjects); index++ {
		if bitmapObjs, exists := bitmapObjects[pcs.PcsObjects[index].ObjectId]; exists {
			pcs.BitmapObjects = append(pcs.BitmapObjects, bitmapObjs)
			found = true
		}
	}

	return found
}

func parseOds(buffer []byte, segment SupSegment, forceFirst bool) (OdsData, error) {
	if len(buffer) < 4 {
		return OdsData{}, errors.Newf("object segment at offset %d is too short", segment.Offset)
	}

	objId := int(BigEndianInt16(buffer, 0)) //16bit object_id
	objVer := int(buffer[2])                //8bit object_version_number
	objSeq := int(buffer[3])                //8bit first_in_sequence (0x80), last_in_sequence (0x40), 6bits reserved

	first := (objSeq&objectSeqFirst) == objectSeqFirst || forceFirst
	last := (objSeq & objectSeqLast) == objectSeqLast

	info := &ImageObjectFragment{}

	if first {
		if len(buffer) < odsHeaderSize {
			return OdsData{}, errors.Newf("object segment at offset %d is too short", segment.Offset)
		}

		width := BigEndianInt16(buffer, 7)  //object_width
		height := BigEndianInt16(buffer, 9) //object_height

		info.ImagePacketSize = segment.Size - odsHeaderSize //Image packet size (image bytes)
		info.ImageBuffer = make([]byte, info.ImagePacketSize)
		_ = copy(info.ImageBuffer, buffer[odsHeaderSize:odsHeaderSize+info.ImagePacketSize])

		sequence := "first"
		if last {
			sequence = "first/last"
		}

		return OdsData{Fragment: info, IsFirst: true, Message: fmt.Sprintf("ObjId: %v, ver: %v, seq: %v, width: %v, height: %v", objId, objVer, sequence, width, height), ObjectId: objId, ObjectVersion: objVer, Size: common.Size{Height: int(height), Width: int(width)}}, nil
	}

	info.ImagePacketSize = segment.Size - 4
	info.ImageBuffer = make([]byte, info.ImagePacketSize)
	_ = copy(info.ImageBuffer, buffer[4:4+info.ImagePacketSize])

	sequence := ""
	if last {
		sequence = "last"
	}

	return OdsData{Fragment: info, IsFirst: false, Message: fmt.Sprintf("Continued ObjId: %v, ver: %v, seq: %v", objId, objVer, sequence), ObjectId: objId, ObjectVersion: objVer}, nil
}

func parsePcs(buffer []byte, offset int) PcsObject {
	pcs := PcsObject{ObjectId: int(BigEndianInt16(buffer, 11+offset)), WindowId: int(buffer[13+offset])}
	//composition_object:
	//16bit object_id_ref
	//skipped:  8bit  window_id_ref
	//object_cropped_flag: 0x80, forced_on_flag = 0x040, 6bit reserved
	forcedCropped := buffer[14+offset]
	pcs.IsForced = (forcedCropped & forcedOnFlag) == forcedOnFlag
	pcs.Origin = image.Point{X: int(BigEndianInt16(buffer, 15+offset)), Y: int(BigEndianInt16(buffer, 17+offset))}

	return pcs
}

func parsePds(buffer []byte, segment SupSegment) PdsData {
	if len(buffer) < 2 {
		return PdsData{Message: "Truncated palette"}
	}

	paletteInfo := PaletteInfo{Size: (segment.Size - 2) / 5}
	if paletteInfo.Size <= 0 {
		//a palette without entries still defines an all transparent palette
		return PdsData{Id: int(buffer[0]), Message: "Empty palette", PaletteInfo: &PaletteInfo{}, Version: int(buffer[1])}
	}

	paletteInfo.Buffer = make([]byte, paletteInfo.Size*5)
	_ = copy(paletteInfo.Buffer, buffer[2:2+paletteInfo.Size*5])

	paletteId := int(buffer[0])     //8bit palette ID (0..7)
	paletteUpdate := int(buffer[1]) //8bit palette version number (incremented for each palette change)

	return PdsData{Id: paletteId, Message: fmt.Sprintf("PalId: %v, update: %v, %v entries", paletteId, paletteUpdate, paletteInfo.Size), PaletteInfo: &paletteInfo, Version: paletteUpdate}
}

func parsePicture(buffer []byte, segment SupSegment) PcsData {
	if len(buffer) < 11 {
		return PcsData{CompositionState: CompositionStateInvalid}
	}

	pcs := PcsData{
		CompNum:             int(BigEndianInt16(buffer, 5)),
		CompositionState:    getCompositionState(buffer[7]),
		FramesPerSecondType: int(buffer[4]),
		PaletteId:           int(buffer[9]),
		PaletteUpdate:       buffer[8] == 0x80,
		Size:                common.Size{Height: int(BigEndianInt16(buffer, 2)), Width: int(BigEndianInt16(buffer, 0))},
		StartTime:           segment.PtsTimestamp,
	}
	//hi nibble: frame_rate, lo nibble: reserved
	//8bit  palette_update_flag (0x80), 7bit reserved
	//8bit  palette_id_ref
	compositionObjectCount := int(buffer[10]) //8bit  number_of_composition_objects (0..2)

	if pcs.CompositionState != CompositionStateInvalid {
		offset := 0
		pcs.PcsObjects = []PcsObject{}
		for compObjIndex := 0; compObjIndex < compositionObjectCount && 19+offset <= len(buffer); compObjIndex++ {
			pcsObj := parsePcs(buffer, offset)
			pcs.PcsObjects = append(pcs.PcsObjects, pcsObj)
			cropped := buffer[14+offset]&0x80 == 0x80

			offset += 8
			//cropped objects carry another 8 bytes of crop rectangle
			if cropped {
				offset += 8
			}
		}
	}

	return pcs
}

// ParseBluRaySup reassembles the display sets of a .sup stream. Sets without
// composition objects (screen clears) only close the previous set.
func ParseBluRaySup(buffer []byte, colorModel ColorModel) ([]PcsData, error) {
	forceFirstOds := true
	bitmapObjects := make(map[int][]OdsData)
	var latestPcs *PcsData
	palettes := make(map[int][]PaletteInfo)
	pcsList := []PcsData{}

	segments, segmentsErr := ReadSegments(buffer)
	if segmentsErr != nil {
		return nil, errors.Wrap(segmentsErr, "failed to read segments")
	}

	for _, segment := range segments {
		segmentBuffer := buffer[segment.Offset+headerSize : segment.Offset+headerSize+segment.Size]

		switch segment.Type {
		case SegmentTypePalette:
			if latestPcs != nil {
				pds := parsePds(segmentBuffer, segment)
				if pds.PaletteInfo != nil {
					infos := palettes[pds.Id]
					if latestPcs.PaletteUpdate && len(infos) > 0 {
						infos = infos[:len(infos)-1]
					}

					palettes[pds.Id] = append(infos, *pds.PaletteInfo)
				}
			}
		//Object Definition Segment (image bitmap data)
		case SegmentTypeObject:
			if latestPcs != nil {
				ods, odsErr := parseOds(segmentBuffer, segment, forceFirstOds)
				if odsErr != nil {
					return nil, odsErr
				}
				if !latestPcs.PaletteUpdate {
					if ods.IsFirst {
						bitmapObjects[ods.ObjectId] = []OdsData{ods}
					} else if odsList, exists := bitmapObjects[ods.ObjectId]; exists {
						bitmapObjects[ods.ObjectId] = append(odsList, ods)
					}
				}
				forceFirstOds = false
			}
		case SegmentTypePresentation:
			if latestPcs != nil && completePcs(latestPcs, bitmapObjects, palettes) {
				pcsList = append(pcsList, *latestPcs)
			}

			forceFirstOds = true
			nextPcs := parsePicture(segmentBuffer, segment)
			nextPcs.ColorModel = colorModel
			if nextPcs.StartTime > 0 && len(pcsList) > 0 && pcsList[len(pcsList)-1].EndTime == 0 {
				pcsList[len(pcsList)-1].EndTime = nextPcs.StartTime
			}

			latestPcs = &nextPcs
			if latestPcs.CompositionState == CompositionStateEpochStart {
				clear(bitmapObjects)
				clear(palettes)
			}
		case SegmentTypeWindow:
			//windows are implied by the composition objects
		case SegmentTypeEnd:
			forceFirstOds = true

			if latestPcs != nil {
				if completePcs(latestPcs, bitmapObjects, palettes) {
					pcsList = append(pcsList, *latestPcs)
				}
				latestPcs = nil
			}
		}
	}

	if latestPcs != nil && completePcs(latestPcs, bitmapObjects, palettes) {
		pcsList = append(pcsList, *latestPcs)
	}

	for pcsIndex := 1; pcsIndex < len(pcsList); pcsIndex++ {
		if pcsList[pcsIndex-1].EndTime == 0 {
			pcsList[pcsIndex-1].EndTime = pcsList[pcsIndex].StartTime
		}
	}

	displaySets := []PcsData{}
	for _, pcsData := range pcsList {
		if len(pcsData.PcsObjects) > 0 {
			displaySets = append(displaySets, pcsData)
		}
	}

	return displaySets, nil
}
