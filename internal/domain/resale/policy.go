package resale

import (
	"fmt"
	"math"
	"math/bits"
	"time"

	"fairtickets/internal/entities"
)

// BpsDenominator is 100% in basis points.
const BpsDenominator = 10_000

// ValidatePolicy rejects configurations the ledger cannot enforce.
func ValidatePolicy(basePrice uint64, p entities.ResalePolicy) error {
	if basePrice == 0 {
		return fmt.Errorf("%w: base price must be positive", ErrInvalidPolicy)
	}
	if p.MaxPriceMultiplierBps == 0 {
		return fmt.Errorf("%w: max price multiplier must be positive", ErrInvalidPolicy)
	}
	if p.RoyaltyBps > BpsDenominator {
		return fmt.Errorf("%w: royalty %d bps above %d", ErrInvalidPolicy, p.RoyaltyBps, BpsDenominator)
	}
	if p.MinHoldPeriod < 0 {
		return fmt.Errorf("%w: negative hold period", ErrInvalidPolicy)
	}
	return nil
}

// PriceCap is originalPrice * multiplierBps / 10000, floored, saturating at MaxUint64.
func PriceCap(originalPrice uint64, p entities.ResalePolicy) uint64 {
	q, _, overflow := mulDiv(originalPrice, p.MaxPriceMultiplierBps, BpsDenominator)
	if overflow {
		return math.MaxUint64
	}
	return q
}

func CheckPriceCap(price, originalPrice uint64, p entities.ResalePolicy) error {
	if limit := PriceCap(originalPrice, p); price > limit {
		return fmt.Errorf("%w: price %d, cap %d", ErrPriceCapExceeded, price, limit)
	}
	return nil
}

// CheckHoldPeriod passes once at - lastPurchase >= MinHoldPeriod; the boundary is inclusive.
func CheckHoldPeriod(lastPurchase, at time.Time, p entities.ResalePolicy) error {
	if elapsed := at.Sub(lastPurchase); elapsed < p.MinHoldPeriod {
		return fmt.Errorf("%w: %s remaining", ErrHoldPeriodActive, p.MinHoldPeriod-elapsed)
	}
	return nil
}

func CheckTransferLimit(transferCount uint32, p entities.ResalePolicy) error {
	if transferCount >= p.MaxTransfers {
		return fmt.Errorf("%w: %d of %d used", ErrTransferLimitReached, transferCount, p.MaxTransfers)
	}
	return nil
}

// SplitRoyalty divides a resale price between organizer and seller.
// The royalty is ceil(price*royaltyBps/10000), not the floor: 150 at 500 bps
// splits 8/142, the remainder of the division going to the organizer.
// royalty + proceeds == price for every royaltyBps in [0, 10000].
func SplitRoyalty(price uint64, royaltyBps uint64) (royalty, proceeds uint64) {
	if royaltyBps >= BpsDenominator {
		return price, 0
	}
	q, rem, _ := mulDiv(price, royaltyBps, BpsDenominator)
	if rem > 0 {
		q++
	}
	return q, price - q
}

// mulDiv computes a*b/d on the 128-bit product.
func mulDiv(a, b, d uint64) (q, rem uint64, overflow bool) {
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, 0, true
	}
	q, rem = bits.Div64(hi, lo, d)
	return q, rem, false
}
