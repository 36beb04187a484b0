package solana

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeyLength is the size of a decoded Solana address.
const PublicKeyLength = 32

// ErrInvalidAddress is returned for strings that are not Solana addresses.
var ErrInvalidAddress = errors.New("invalid solana address")

// AddressKind classifies a valid Solana address.
type AddressKind string

const (
	// AddressOnCurve is an ed25519 public key (wallet or keypair-generated mint).
	AddressOnCurve AddressKind = "on_curve"
	// AddressOffCurve is a program-derived address.
	AddressOffCurve AddressKind = "off_curve"
)

// DecodeAddress decodes a base58 address and checks its length.
func DecodeAddress(addr string) ([]byte, error) {
	if addr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != PublicKeyLength {
		return nil, fmt.Errorf("%w: decoded length %d", ErrInvalidAddress, len(decoded))
	}
	return decoded, nil
}

// ValidateAddress returns nil when addr is a well-formed Solana address.
func ValidateAddress(addr string) error {
	_, err := DecodeAddress(addr)
	return err
}

// ClassifyAddress reports whether a valid address lies on the ed25519 curve.
func ClassifyAddress(addr string) (AddressKind, error) {
	decoded, err := DecodeAddress(addr)
	if err != nil {
		return "", err
	}
	if isOnCurve(decoded) {
		return AddressOnCurve, nil
	}
	return AddressOffCurve, nil
}

func isOnCurve(point []byte) bool {
	if len(point) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
