package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	minisign "github.com/jedisct1/go-minisign"
)

// SignatureSuffix is appended to a snapshot path to locate its detached signature.
const SignatureSuffix = ".minisig"

// MinisignVerifier checks status snapshots against detached Minisign signatures made by the
// uptime monitor's key.
type MinisignVerifier struct {
	publicKey minisign.PublicKey
}

// NewMinisignVerifier parses the provided Minisign public key (including comment header).
func NewMinisignVerifier(pubKey string) (*MinisignVerifier, error) {
	pubKey = strings.TrimSpace(pubKey)
	if pubKey == "" {
		return nil, errors.New("minisign public key is required")
	}
	publicKey, err := minisign.DecodePublicKey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("parse minisign public key: %w", err)
	}
	return &MinisignVerifier{publicKey: publicKey}, nil
}

// FromConfig returns nil, nil when neither an inline key nor a key file is configured.
func FromConfig(pubKey, pubKeyFile string) (*MinisignVerifier, error) {
	if strings.TrimSpace(pubKey) != "" {
		return NewMinisignVerifier(pubKey)
	}
	if strings.TrimSpace(pubKeyFile) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(pubKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read minisign public key %q: %w", pubKeyFile, err)
	}
	return NewMinisignVerifier(string(data))
}

// SignaturePath returns the detached signature location for path.
func SignaturePath(path string) string {
	return path + SignatureSuffix
}

// VerifyBytes validates data that has already been read against the signature stored at signaturePath.
func (v *MinisignVerifier) VerifyBytes(ctx context.Context, data []byte, signaturePath string) error {
	if v == nil {
		return errors.New("signature verifier not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(signaturePath) == "" {
		return errors.New("signature path is required")
	}

	signatureBytes, err := os.ReadFile(signaturePath)
	if err != nil {
		return fmt.Errorf("read signature %q: %w", signaturePath, err)
	}
	signature, err := minisign.DecodeSignature(string(signatureBytes))
	if err != nil {
		return fmt.Errorf("decode signature %q: %w", signaturePath, err)
	}
	ok, err := v.publicKey.Verify(data, signature)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("signature verification failed")
	}
	return nil
}

// Verify reads a snapshot from disk and validates it against its detached signature.
func (v *MinisignVerifier) Verify(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("snapshot path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot %q: %w", path, err)
	}
	return v.VerifyBytes(ctx, data, SignaturePath(path))
}
