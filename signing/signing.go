// Package signing implements ed25519 request signing for the Pacifica API.
package signing

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/dwdwow/pacifica-go/constants"
	"github.com/dwdwow/pacifica-go/utils"
)

// ErrInvalidHeader is returned when a signature header is missing one of
// the required fields or carries extras.
var ErrInvalidHeader = errors.New("signature header must have exactly type, timestamp and expiry_window")

// Signer holds an ed25519 keypair and signs request payloads.
//
// When mainAccount is set the keypair is an agent key delegated by that
// account: requests carry the main account as "account" and the agent's
// own address as "agent_wallet".
type Signer struct {
	privateKey  ed25519.PrivateKey
	publicKey   string
	mainAccount string
}

// NewSigner creates a Signer from a base58-encoded ed25519 private key.
// Both the 64-byte expanded form and the 32-byte seed form are accepted.
// A non-empty mainAccount puts the signer in agent mode.
func NewSigner(privateKey string, mainAccount string) (*Signer, error) {
	raw, err := base58.Decode(privateKey)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	var key ed25519.PrivateKey
	switch len(raw) {
	case ed25519.PrivateKeySize:
		key = ed25519.PrivateKey(raw)
	case ed25519.SeedSize:
		key = ed25519.NewKeyFromSeed(raw)
	default:
		return nil, fmt.Errorf("private key must be %d or %d bytes, got %d",
			ed25519.PrivateKeySize, ed25519.SeedSize, len(raw))
	}
	pub := base58.Encode(key.Public().(ed25519.PublicKey))
	return &Signer{
		privateKey:  key,
		publicKey:   pub,
		mainAccount: mainAccount,
	}, nil
}

// PublicKey returns the signer's own address.
func (s *Signer) PublicKey() string {
	return s.publicKey
}

// IsAgent reports whether the signer is a delegated agent key.
func (s *Signer) IsAgent() bool {
	return s.mainAccount != ""
}

// Account returns the address requests act on behalf of: the main account
// in agent mode, otherwise the signer's own address.
func (s *Signer) Account() string {
	if s.mainAccount != "" {
		return s.mainAccount
	}
	return s.publicKey
}

// AgentWallet returns the agent's own address in agent mode, nil otherwise.
func (s *Signer) AgentWallet() *string {
	if s.mainAccount != "" {
		return &s.publicKey
	}
	return nil
}

// Sign signs an arbitrary message and returns the base58 signature.
func (s *Signer) Sign(message []byte) string {
	return base58.Encode(ed25519.Sign(s.privateKey, message))
}

// SignEnvelope signs a payload under a signature header. The header must
// contain exactly the keys type, timestamp and expiry_window. The signed
// message is the canonical rendering of the header merged with the payload
// under "data". Returns the message and the base58 signature.
func (s *Signer) SignEnvelope(header map[string]any, payload map[string]any) (string, string, error) {
	if len(header) != 3 {
		return "", "", ErrInvalidHeader
	}
	for _, k := range []string{"type", "timestamp", "expiry_window"} {
		if _, ok := header[k]; !ok {
			return "", "", ErrInvalidHeader
		}
	}
	signed := make(map[string]any, 4)
	for k, v := range header {
		signed[k] = v
	}
	signed["data"] = payload
	message, err := Canonicalize(signed)
	if err != nil {
		return "", "", fmt.Errorf("canonicalize message: %w", err)
	}
	return message, s.Sign([]byte(message)), nil
}

// SignFlat signs a flat request map in place: the map (with sorted keys,
// compact JSON) is the signed message and the base58 signature is returned.
// Used by account-management endpoints that do not wrap payloads in a
// data envelope.
func (s *Signer) SignFlat(request map[string]any) (string, error) {
	message, err := Canonicalize(request)
	if err != nil {
		return "", fmt.Errorf("canonicalize message: %w", err)
	}
	return s.Sign([]byte(message)), nil
}

// BuildRequest assembles a signed request body for a payload. The payload
// is signed under a header of the given signature type with a fresh
// timestamp, then wrapped in the wire envelope. A nil signer returns the
// payload unchanged, leaving transport errors to the server.
func BuildRequest(signer *Signer, signatureType string, payload map[string]any) (map[string]any, error) {
	if signer == nil {
		return payload, nil
	}
	timestamp := utils.GetTimestampMs()
	header := map[string]any{
		"type":          signatureType,
		"timestamp":     timestamp,
		"expiry_window": constants.ExpiryWindowMs,
	}
	_, signature, err := signer.SignEnvelope(header, payload)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", signatureType, err)
	}
	request := map[string]any{
		"account":       signer.Account(),
		"signature":     signature,
		"timestamp":     timestamp,
		"expiry_window": constants.ExpiryWindowMs,
	}
	for k, v := range payload {
		request[k] = v
	}
	if signer.IsAgent() {
		request["agent_wallet"] = *signer.AgentWallet()
	} else {
		request["agent_wallet"] = nil
	}
	return request, nil
}
