package risk

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Round rounds x to the given number of decimal places the way a browser
// formats money with Number(x.toFixed(places)): the exact binary value of x is
// rounded to the nearest decimal, ties away from zero, and the resulting
// decimal string is parsed back to the nearest float64.
//
// math.Round(x*100)/100 disagrees with that for values such as 1.005 and
// 0.125, which matters when results are compared against stored figures.
func Round(x float64, places int) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) || places < 0 {
		return x
	}

	neg := x < 0
	// 256 bits holds a float64 mantissa times 10^places exactly for any
	// places we use (<= 20).
	m := new(big.Float).SetPrec(256).SetFloat64(math.Abs(x))
	scale := new(big.Float).SetPrec(256).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil))
	m.Mul(m, scale)

	n, _ := m.Int(nil) // truncates toward zero
	frac := new(big.Float).SetPrec(256).Sub(m, new(big.Float).SetPrec(256).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	digits := n.String()
	if places > 0 {
		if len(digits) <= places {
			digits = strings.Repeat("0", places-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-places] + "." + digits[len(digits)-places:]
	}

	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return x
	}
	if neg {
		return -v
	}
	return v
}

// Round2 rounds a currency amount to cents.
func Round2(x float64) float64 { return Round(x, 2) }

// Round4 rounds a position size to four decimals.
func Round4(x float64) float64 { return Round(x, 4) }
