package quote

import "context"

// DiscountType says how a coupon's value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is the result of validating a promo code.
type Discount struct {
	Type  DiscountType
	Value float64
}

// CouponUser identifies the requester for per-user coupon restrictions.
type CouponUser struct {
	UserID    string
	UserEmail string
}

// CouponValidator is the external coupon collaborator. The quote service
// never trusts a client-supplied discount amount; it always goes through
// this interface.
type CouponValidator interface {
	ValidateCoupon(ctx context.Context, code string, user CouponUser) (*Discount, error)
}

// StaticCouponValidator resolves promo codes from a fixed table. It stands
// in for the real coupon backend, which lives outside this repository.
type StaticCouponValidator struct {
	codes map[string]Discount
}

func NewStaticCouponValidator(codes map[string]Discount) *StaticCouponValidator {
	if codes == nil {
		codes = map[string]Discount{}
	}
	return &StaticCouponValidator{codes: codes}
}

func (v *StaticCouponValidator) ValidateCoupon(ctx context.Context, code string, _ CouponUser) (*Discount, error) {
	d, ok := v.codes[code]
	if !ok {
		return nil, ErrInvalidPromo
	}
	return &d, nil
}
