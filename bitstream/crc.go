// Package bitstream provides the low-level framing primitives used to
// reconstruct an Ogg Vorbis stream: a bit-at-a-time reader, an Ogg page
// writer, and the CRC-32 variant Ogg pages are checksummed with.
package bitstream

// crcTable is the Ogg CRC-32 lookup table: polynomial 0x04c11db7, MSB-first,
// no input or output reflection, initial value 0, no final XOR.
var crcTable = generateCRCTable()

func generateCRCTable() [256]uint32 {
	const poly = 0x04c11db7

	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ poly
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}

// Checksum computes the Ogg CRC-32 over page, which must already have its
// 4-byte CRC field (bytes 22-25) zeroed.
func Checksum(page []byte) uint32 {
	var crc uint32
	for _, b := range page {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
