package quote

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
)

// SignedFields are the quote fields covered by the signature. Anything a
// client could profit from editing between price display and payment
// authorization must be in here.
type SignedFields struct {
	Currency      string
	TaxRate       float64
	SubtotalCents int64
	DiscountCents int64
	TaxCents      int64
	TotalCents    int64
	ExpiresAtUnix int64
}

// Signer produces and checks quote hashes with an injected signing key,
// mirroring how the JWT manager holds its secret. Never a process global.
type Signer struct {
	key []byte
}

func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

// canonical renders the fields in a fixed order with no extraneous
// whitespace so that verification reproduces the exact signed bytes.
func canonical(f SignedFields) string {
	var b strings.Builder
	b.WriteString("currency=")
	b.WriteString(f.Currency)
	b.WriteString("&tax_rate=")
	b.WriteString(strconv.FormatFloat(f.TaxRate, 'f', -1, 64))
	b.WriteString("&subtotal_cents=")
	b.WriteString(strconv.FormatInt(f.SubtotalCents, 10))
	b.WriteString("&discount_cents=")
	b.WriteString(strconv.FormatInt(f.DiscountCents, 10))
	b.WriteString("&tax_cents=")
	b.WriteString(strconv.FormatInt(f.TaxCents, 10))
	b.WriteString("&total_cents=")
	b.WriteString(strconv.FormatInt(f.TotalCents, 10))
	b.WriteString("&expires_at=")
	b.WriteString(strconv.FormatInt(f.ExpiresAtUnix, 10))
	return b.String()
}

// Sign returns the hex HMAC-SHA256 of the canonical serialization.
func (s *Signer) Sign(f SignedFields) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(canonical(f)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches reports whether the submitted hash matches the fields. The
// comparison is constant-time to avoid leaking which byte differs.
func (s *Signer) Matches(f SignedFields, submittedHash string) bool {
	expected := s.Sign(f)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submittedHash)) == 1
}
