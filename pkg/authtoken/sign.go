package authtoken

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
)

// rsaVerifyPKCS1v15 checks an RSASSA-PKCS1-v1_5 signature over a
// pre-hashed SHA-256 digest, the scheme used by the signing services
// this token format was designed around.
func rsaVerifyPKCS1v15(pub *rsa.PublicKey, digest, sig []byte) error {
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig)
}

// Sign produces a token's signature given the issuer's private key and
// the canonical "key=value|..." string. Used by tests constructing
// signed fixtures; the service itself only verifies tokens.
func Sign(priv *rsa.PrivateKey, canonical string) ([]byte, error) {
	digest := sha256Sum(canonical)
	return rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest)
}
