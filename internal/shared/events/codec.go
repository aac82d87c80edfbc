package events

import (
	"encoding/json"

	"wareflow/internal/shared/faults"
)

// Encode serializes an envelope to its canonical JSON wire form.
func Encode(env Envelope) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// Decode parses and validates an envelope off the wire.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, faults.Wrap(faults.KindValidation, faults.CodeValidationFailed, "envelope is not valid JSON", err)
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
