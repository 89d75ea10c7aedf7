package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes passwords and checks candidates against a hash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptPasswordHasherWithCost returns a bcrypt-backed PasswordHasher.
// Costs outside bcrypt's supported range fall back to the default cost.
func NewBcryptPasswordHasherWithCost(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h *bcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
