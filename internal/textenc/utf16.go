// Package textenc decodes the text encodings found inside report
// archives.
package textenc

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeUTF16 converts a UTF-16 payload to UTF-8. The monolithic
// Layout blob and the BIM DataModelSchema are both stored as UTF-16 LE
// with an optional BOM; payloads that are already UTF-8 (no BOM, no
// interleaved NULs) pass through unchanged.
func DecodeUTF16(raw []byte) ([]byte, error) {
	if !LooksUTF16(raw) {
		return raw, nil
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LooksUTF16 reports whether raw is plausibly UTF-16 encoded.
func LooksUTF16(raw []byte) bool {
	if len(raw) >= 2 {
		if (raw[0] == 0xFF && raw[1] == 0xFE) || (raw[0] == 0xFE && raw[1] == 0xFF) {
			return true
		}
	}
	// JSON text encoded as UTF-16 has a NUL in every code unit of its
	// leading ASCII characters.
	probe := raw
	if len(probe) > 64 {
		probe = probe[:64]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
