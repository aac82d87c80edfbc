package ident

import (
	"time"

	"github.com/google/uuid"
)

// SystemClock reads wall-clock time. Modules take a Clock port so tests can
// substitute a fixed one.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator mints random v4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
