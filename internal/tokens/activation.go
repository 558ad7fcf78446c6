package tokens

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// PendingUser is the registration payload carried inside an activation token
// until the account is activated.
type PendingUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ActivationClaims struct {
	User           PendingUser `json:"user"`
	ActivationCode string      `json:"activationCode"`
	jwt.RegisteredClaims
}

// IssueActivationToken signs {user, activationCode} with the activation secret
// and returns the token together with the plaintext code.
func (i *Issuer) IssueActivationToken(p PendingUser) (string, string, error) {
	code, err := newActivationCode()
	if err != nil {
		return "", "", err
	}
	now := i.now()
	claims := ActivationClaims{
		User:           p,
		ActivationCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.activationTTL)),
		},
	}
	tok, err := i.sign(claims, i.activationSecret)
	if err != nil {
		return "", "", err
	}
	return tok, code, nil
}

// VerifyActivationToken returns the signed payload or ErrInvalidOrExpiredToken.
func (i *Issuer) VerifyActivationToken(raw string) (*ActivationClaims, error) {
	var claims ActivationClaims
	if err := i.parse(raw, &claims, i.activationSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

// newActivationCode returns a uniformly distributed code in [1000, 9999].
func newActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}
