// Package chunkx splits byte buffers into fixed-size chunks and encodes
// chunk payloads for transports that cannot carry raw binary.
package chunkx

import "encoding/base64"

// Count returns the number of chunks a buffer of the given length occupies,
// i.e. ceil(length/chunkSize). A zero-length buffer occupies no chunks.
func Count(length, chunkSize int) int {
	if length <= 0 {
		return 0
	}
	return (length + chunkSize - 1) / chunkSize
}

// Split slices data into consecutive chunks of at most chunkSize bytes.
// The returned slices share the backing array of data; the last chunk may be
// shorter. Empty input yields an empty result.
func Split(data []byte, chunkSize int) [][]byte {
	n := Count(len(data), chunkSize)
	chunks := make([][]byte, 0, n)
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[start:end])
	}
	return chunks
}

// EncodeForTransport encodes a chunk payload as standard base64 text for
// text-only transports.
func EncodeForTransport(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeForTransport reverses EncodeForTransport exactly.
func DecodeForTransport(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}
