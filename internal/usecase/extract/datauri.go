package extract

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeDataURI returns the bytes carried by a base64 data URI such as
// "data:application/pdf;base64,JVBERi0...". Everything up to and including
// the first comma is treated as the header and ignored, so a bare
// ",<payload>" is accepted too.
//
// Whitespace inside the payload (line-wrapped base64) is removed before
// decoding. Unpadded payloads are accepted.
func DecodeDataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing ',' separator", ErrDecode)
	}

	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}
	return data, nil
}
