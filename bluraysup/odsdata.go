package bluraysup

import "github.com/ristryder/pgssup/common"

type ImageObjectFragment struct {
	ImageBuffer     []byte
	ImagePacketSize int
}

type OdsData struct {
	Fragment      *ImageObjectFragment
	IsFirst       bool
	Message       string
	ObjectId      int
	ObjectVersion int
	Size          common.Size
}

type PaletteInfo struct {
	Buffer []byte
	Size   int
}

type PdsData struct {
	Id          int
	Message     string
	PaletteInfo *PaletteInfo
	Version     int
}
