// Package authtoken parses and verifies the service's bearer token
// format: pipe-delimited key=value pairs signed by an RSA key published
// at the issuer's SigningSubject URL.
//
//	un=alice|SigningSubject=https://auth.example.org/Authentication|
//	expiry=1999999999|sig=<hex>
//
// This isn't JWT, so verification is done directly with crypto/rsa over
// the canonical "key=value|..." string preceding "|sig=".
package authtoken

import (
	"strconv"
	"strings"
	"time"

	"github.com/wsobjects/wsd/pkg/wsdomain"
)

// Token is a parsed, not-yet-verified bearer token.
type Token struct {
	User           string
	SigningSubject string
	Expiry         time.Time
	Signature      []byte // decoded from the "sig" field
	Canonical      string // the exact substring that was signed
	raw            string
}

const sigKey = "sig"

// Parse splits raw into its key=value fields and decodes the signature.
// It does not verify the signature; call Verifier.Verify for that.
func Parse(raw string) (*Token, error) {
	if raw == "" {
		return nil, wsdomain.NewError(wsdomain.ErrTokenInvalid, "empty token")
	}

	parts := strings.Split(raw, "|")
	fields := make(map[string]string, len(parts))
	var canonicalParts []string

	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, wsdomain.NewError(wsdomain.ErrTokenInvalid, "malformed field: "+part)
		}
		key, val := kv[0], kv[1]
		if key == sigKey {
			fields[key] = val
			continue
		}
		fields[key] = val
		canonicalParts = append(canonicalParts, key+"="+val)
	}

	sigB64, ok := fields[sigKey]
	if !ok {
		return nil, wsdomain.NewError(wsdomain.ErrTokenInvalid, "missing sig field")
	}
	sig, err := decodeSignature(sigB64)
	if err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrTokenInvalid, "malformed signature: "+err.Error())
	}

	un, ok := fields["un"]
	if !ok || un == "" {
		return nil, wsdomain.NewError(wsdomain.ErrTokenInvalid, "missing un field")
	}
	subject, ok := fields["SigningSubject"]
	if !ok || subject == "" {
		return nil, wsdomain.NewError(wsdomain.ErrTokenInvalid, "missing SigningSubject field")
	}
	expiryRaw, ok := fields["expiry"]
	if !ok {
		return nil, wsdomain.NewError(wsdomain.ErrTokenInvalid, "missing expiry field")
	}
	expiryUnix, err := strconv.ParseInt(expiryRaw, 10, 64)
	if err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrTokenInvalid, "malformed expiry field")
	}

	return &Token{
		User:           un,
		SigningSubject: subject,
		Expiry:         time.Unix(expiryUnix, 0),
		Signature:      sig,
		Canonical:      strings.Join(canonicalParts, "|"),
		raw:            raw,
	}, nil
}

// Expired reports whether the token has expired as of "at".
func (t *Token) Expired(at time.Time) bool {
	return at.After(t.Expiry)
}

// String returns the original encoded token.
func (t *Token) String() string {
	return t.raw
}
