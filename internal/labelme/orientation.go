package labelme

import "encoding/binary"

const (
	markerAPP1     = 0xe1
	markerSOS      = 0xda
	orientationTag = 0x0112
)

// exifOrientation returns the EXIF orientation (1-8) stored in the first APP1
// segment of JPEG data, or 0 when data is not a JPEG or carries none.
func exifOrientation(data []byte) int {
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		return 0
	}
	for p := 2; p+4 <= len(data); {
		if data[p] != 0xff {
			return 0
		}
		marker := data[p+1]
		size := int(binary.BigEndian.Uint16(data[p+2:]))
		if size < 2 || p+2+size > len(data) || marker == markerSOS {
			return 0
		}
		if marker == markerAPP1 {
			return tiffOrientation(data[p+4 : p+2+size])
		}
		p += 2 + size
	}
	return 0
}

// tiffOrientation reads the orientation entry of IFD0 in an Exif APP1
// payload.
func tiffOrientation(seg []byte) int {
	if len(seg) < 14 || string(seg[:6]) != "Exif\x00\x00" {
		return 0
	}
	tiff := seg[6:]

	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "MM":
		order = binary.BigEndian
	case "II":
		order = binary.LittleEndian
	default:
		return 0
	}

	ifd := int(order.Uint32(tiff[4:]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return 0
	}
	n := int(order.Uint16(tiff[ifd:]))
	for i := 0; i < n; i++ {
		e := ifd + 2 + 12*i
		if e+12 > len(tiff) {
			return 0
		}
		if order.Uint16(tiff[e:]) != orientationTag {
			continue
		}
		if v := int(order.Uint16(tiff[e+8:])); v >= 1 && v <= 8 {
			return v
		}
		return 0
	}
	return 0
}

// swapsAxes reports whether displaying with orientation o exchanges width
// and height.
func swapsAxes(o int) bool {
	return o >= 5 && o <= 8
}
