// Package hash provides the CRC32-Castagnoli checksum used for blob uploads.
//
// S3 and compatible stores verify uploads against a base64 big-endian
// CRC32C. Go's hash/crc32 uses SSE4.2 or the ARM CRC extension for this
// polynomial when available.
//
//	checksum := hash.CRC32C(data)
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum = h.Sum32()
package hash
