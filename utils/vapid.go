package utils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateVAPIDKeys generates a VAPID key pair (public and private)
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	curve := elliptic.P256()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate key: %w", err)
	}

	// Public key is the uncompressed point (X, Y)
	pubBytes := elliptic.Marshal(curve, key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)

	// Private key scalar, padded to 32 bytes
	privBytes := key.D.Bytes()
	if len(privBytes) < 32 {
		padding := make([]byte, 32-len(privBytes))
		privBytes = append(padding, privBytes...)
	}
	privateKey = base64.RawURLEncoding.EncodeToString(privBytes)

	return publicKey, privateKey, nil
}
