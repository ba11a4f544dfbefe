package httpapi

import (
	"crypto/rand"

	"github.com/chingu-voyages/demographics-api/internal/app/accounts"
	"github.com/chingu-voyages/demographics-api/internal/app/chingus"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/clock"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/idempotency"
)

// Server holds the application services the HTTP handlers delegate to.
type Server struct {
	Chingus  *chingus.Service
	Accounts *accounts.Service
	// Idem is optional. When nil, Idempotency-Key headers are ignored.
	Idem  idempotency.Store
	Clock clock.Clock

	// FingerprintKey keys the HMAC over idempotent request bodies, so stored
	// fingerprints cannot be checked against guessed passwords. NewServer sets a
	// random key; set a stable one when the idempotency store outlives the process.
	FingerprintKey []byte

	// Production withholds internal error text from 500 responses.
	Production bool
}

func NewServer(chingusSvc *chingus.Service, accountsSvc *accounts.Service, idem idempotency.Store, clk clock.Clock) *Server {
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return &Server{
		Chingus:        chingusSvc,
		Accounts:       accountsSvc,
		Idem:           idem,
		Clock:          clk,
		FingerprintKey: key,
	}
}
