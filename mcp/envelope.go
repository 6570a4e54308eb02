package mcp

import (
	"encoding/base64"
	"encoding/json"
)

// DecodedImage is a successful generate_image response
type DecodedImage struct {
	// Base64 is the image data exactly as returned by the provider
	Base64 string
}

// Bytes decodes the image data
func (d DecodedImage) Bytes() ([]byte, error) {
	return DecodeImagePayload(d.Base64)
}

// Decode unwraps a generate_image response: an array of content blocks whose
// first block carries, in its "text" field, a JSON document with "success"
// and "output". Every malformed shape returns an *EnvelopeError.
func Decode(responseText string) (DecodedImage, error) {
	var blocks []json.RawMessage
	if err := json.Unmarshal([]byte(responseText), &blocks); err != nil {
		return DecodedImage{}, &EnvelopeError{Reason: ReasonNotArray, Err: err}
	}
	if blocks == nil {
		// JSON null
		return DecodedImage{}, &EnvelopeError{Reason: ReasonNotArray}
	}
	if len(blocks) == 0 {
		return DecodedImage{}, &EnvelopeError{Reason: ReasonEmptyArray}
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(blocks[0], &first); err != nil {
		return DecodedImage{}, &EnvelopeError{Reason: ReasonMissingText}
	}
	var text string
	if raw, ok := first["text"]; !ok || json.Unmarshal(raw, &text) != nil || isNull(raw) {
		return DecodedImage{}, &EnvelopeError{Reason: ReasonMissingText}
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &inner); err != nil {
		return DecodedImage{}, &EnvelopeError{Reason: ReasonInvalidText, Err: err}
	}

	var success bool
	if raw, ok := inner["success"]; !ok || json.Unmarshal(raw, &success) != nil || !success {
		return DecodedImage{}, &EnvelopeError{Reason: ReasonNotSuccessful}
	}

	var output string
	if raw, ok := inner["output"]; !ok || json.Unmarshal(raw, &output) != nil || isNull(raw) {
		return DecodedImage{}, &EnvelopeError{Reason: ReasonMissingOutput}
	}

	return DecodedImage{Base64: output}, nil
}

// DecodeImagePayload decodes standard base64 image data
func DecodeImagePayload(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, &PayloadError{Err: err}
	}
	return data, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
