package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Info describes a cached entry without decoding its payload.
type Info struct {
	Exists   bool      `json:"exists"`
	StoredAt time.Time `json:"stored_at,omitempty"`
	AgeHours float64   `json:"age_hours,omitempty"`
}

// Service defines cache operations. Values are JSON-encoded on write and
// decoded into dest on read, so every backend stores the same envelope.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Info(ctx context.Context, key string) (Info, error)
}

// envelope wraps a payload with its write time so backends can answer
// Info without decoding the payload.
type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

func newEnvelope(value interface{}) (envelope, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return envelope{}, err
	}
	return envelope{StoredAt: time.Now().UTC(), Payload: raw}, nil
}

func (e envelope) info() Info {
	return Info{
		Exists:   true,
		StoredAt: e.StoredAt,
		AgeHours: round1(time.Since(e.StoredAt).Hours()),
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
