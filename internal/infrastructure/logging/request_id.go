package logging

import (
	"time"

	"github.com/google/uuid"
)

const requestIDPrefix = "req_"

// GenerateRequestID devuelve "req_" + uuid v4
func GenerateRequestID() string {
	return requestIDPrefix + uuid.NewString()
}

// GenerateShortRequestID usa solo el primer grupo del uuid; sirve para logs de texto
func GenerateShortRequestID() string {
	return requestIDPrefix + uuid.NewString()[:8]
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1e3
}
