package enums

import "fmt"

// TxnType records the direction of milk flow. Sell means the customer
// delivered milk to the business; Purchase means the business delivered
// milk to the customer.
type TxnType string

const (
	TxnSell     TxnType = "Sell"
	TxnPurchase TxnType = "Purchase"
)

var validTxnTypes = []TxnType{
	TxnSell,
	TxnPurchase,
}

// String implements fmt.Stringer.
func (t TxnType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TxnType.
func (t TxnType) IsValid() bool {
	for _, candidate := range validTxnTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTxnType converts raw input into a TxnType.
func ParseTxnType(value string) (TxnType, error) {
	for _, candidate := range validTxnTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
