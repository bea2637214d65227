package pkg

import (
	"math/rand"
)

// Uppercase letters and digits without the easily confused 0/O and 1/I.
var couponCodeRunes = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

// RandomCouponCode returns prefix followed by n random code characters.
func RandomCouponCode(prefix string, n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = couponCodeRunes[rand.Intn(len(couponCodeRunes))]
	}
	return prefix + string(b)
}
