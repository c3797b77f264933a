package authtoken

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/wsdomain"
)

// certEntry caches one signer's public key alongside when it was fetched,
// so Verifier can expire entries without re-fetching on every request.
type certEntry struct {
	key       *rsa.PublicKey
	fetchedAt time.Time
}

// Verifier validates token signatures against RSA public keys fetched
// from each token's SigningSubject URL, caching them by URL.
type Verifier struct {
	httpClient *http.Client
	ttl        time.Duration

	mu    sync.RWMutex
	cache map[string]certEntry
}

// NewVerifier builds a Verifier. ttl bounds how long a fetched signing
// key is trusted before being re-fetched; zero means cache forever for
// the process lifetime.
func NewVerifier(httpClient *http.Client, ttl time.Duration) *Verifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Verifier{
		httpClient: httpClient,
		ttl:        ttl,
		cache:      make(map[string]certEntry),
	}
}

// Verify checks t's signature against the public key published at
// t.SigningSubject, fetching and caching it as needed. It also rejects
// tokens that have already expired.
func (v *Verifier) Verify(ctx context.Context, t *Token) error {
	if t.Expired(time.Now()) {
		return wsdomain.NewError(wsdomain.ErrTokenInvalid, "token expired")
	}

	key, err := v.signingKey(ctx, t.SigningSubject)
	if err != nil {
		return err
	}

	sum := sha256.Sum256([]byte(t.Canonical))
	if err := rsaVerifyPKCS1v15(key, sum[:], t.Signature); err != nil {
		return wsdomain.NewError(wsdomain.ErrTokenInvalid, "signature verification failed")
	}
	return nil
}

func (v *Verifier) signingKey(ctx context.Context, subjectURL string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	entry, ok := v.cache[subjectURL]
	v.mu.RUnlock()
	if ok && (v.ttl == 0 || time.Since(entry.fetchedAt) < v.ttl) {
		return entry.key, nil
	}

	key, err := v.fetchSigningKey(ctx, subjectURL)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.cache[subjectURL] = certEntry{key: key, fetchedAt: time.Now()}
	v.mu.Unlock()

	logger.InfoCtx(ctx, "fetched signing cert", "signing_subject", subjectURL)
	return key, nil
}

func (v *Verifier) fetchSigningKey(ctx context.Context, subjectURL string) (*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, subjectURL, nil)
	if err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, "build signing cert request: "+err.Error())
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, "fetch signing cert: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, fmt.Sprintf("signing cert fetch returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, "read signing cert: "+err.Error())
	}

	return parsePublicKeyPEM(body)
}

func parsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, "signing cert is not PEM-encoded")
	}

	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		if rsaKey, ok := pub.(*rsa.PublicKey); ok {
			return rsaKey, nil
		}
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, "signing cert is not an RSA public key")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, "unable to parse signing cert: "+err.Error())
	}
	rsaKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, "signing cert public key is not RSA")
	}
	return rsaKey, nil
}
