package api

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Decoder turns a raw response body into the caller's value.
type Decoder func(data []byte, out any) error

// JSONDecoder unmarshals the body as JSON.
func JSONDecoder(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

// rawDecoder hands the body over untouched for the output types that can
// hold it. Last resort in the decode chain.
func rawDecoder(data []byte, out any) error {
	switch v := out.(type) {
	case *string:
		*v = string(data)
		return nil
	case *[]byte:
		*v = append([]byte(nil), data...)
		return nil
	case *any:
		*v = string(data)
		return nil
	}
	return errors.Errorf("cannot assign raw body to %T", out)
}

// decodeBody runs the body through an ordered chain of decoders, returning
// on the first success: the caller's decoder if supplied, then JSON, then
// the raw-string fallback. A nil out skips decoding entirely.
func decodeBody(data []byte, out any, custom Decoder) error {
	if out == nil {
		return nil
	}

	chain := make([]Decoder, 0, 3)
	if custom != nil {
		chain = append(chain, custom)
	}
	chain = append(chain, JSONDecoder, rawDecoder)

	var lastErr error
	for _, decode := range chain {
		err := decode(data, out)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return &Error{Kind: KindMalformedResponse, Message: lastErr.Error(), cause: lastErr}
}
