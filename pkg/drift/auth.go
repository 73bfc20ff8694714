package drift

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthenticator signs requests with short-lived ES256 bearer tokens for
// gateways deployed behind an authenticating proxy. Gateways without auth
// use a nil authenticator.
type JWTAuthenticator struct {
	keyName    string
	privateKey *ecdsa.PrivateKey
}

func NewJWTAuthenticator(keyName, privateKeyPEM string) (*JWTAuthenticator, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("failed to parse PEM block containing the private key")
	}

	privateKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS8 format
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EC private key: %w", err)
		}
		var ok bool
		privateKey, ok = key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("not an EC private key")
		}
	}

	return &JWTAuthenticator{
		keyName:    keyName,
		privateKey: privateKey,
	}, nil
}

// AddAuthHeaders attaches a bearer token scoped to the request URI.
func (a *JWTAuthenticator) AddAuthHeaders(req *http.Request, method, path string) error {
	nonce, err := generateNonce()
	if err != nil {
		return err
	}

	claims := jwt.MapClaims{
		"sub":   a.keyName,
		"iss":   "driftarb",
		"nbf":   time.Now().Unix(),
		"exp":   time.Now().Add(2 * time.Minute).Unix(),
		"uri":   method + " " + req.Host + path,
		"nonce": nonce,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = a.keyName

	tokenString, err := token.SignedString(a.privateKey)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tokenString)
	return nil
}

func generateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
