// Package cart implements the storefront cart engine: the line item
// state, its persisted slot, the projection onto a page surface and the
// translation of row gestures into mutations.
package cart

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "$"

// LineItem is one product entry in the cart. Items have no identity beyond
// their position; two equal items both count.
type LineItem struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// MaxPriceCents bounds a single parsed price ($1,000,000,000.00).
const MaxPriceCents int64 = 100_000_000_000

var amountPattern = regexp.MustCompile(`^(\d+)(?:\.(\d{1,2}))?$`)

// ParsePrice converts a currency literal such as "$1,019.99" into cents.
// The leading currency symbol and any grouping separators are ignored.
// What remains must be a plain decimal amount with at most two fraction
// digits, no larger than MaxPriceCents.
func ParsePrice(price string) (int64, error) {
	s := strings.TrimSpace(price)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '-' && r != '.'
	})
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, errors.Errorf("price %q has no amount", price)
	}
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("price %q is not a decimal amount", price)
	}
	units := strings.TrimLeft(m[1], "0")
	if len(units) > 10 {
		return 0, errors.Errorf("price %q exceeds the maximum", price)
	}
	var cents int64
	if units != "" {
		v, err := strconv.ParseInt(units, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse price %q", price)
		}
		cents = v * 100
	}
	if frac := m[2]; frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		v, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse price %q", price)
		}
		cents += v
	}
	if cents > MaxPriceCents {
		return 0, errors.Errorf("price %q exceeds the maximum", price)
	}
	return cents, nil
}

// FormatPrice renders cents as a currency literal with two decimals.
func FormatPrice(cents int64) string {
	sign := ""
	mag := uint64(cents)
	if cents < 0 {
		sign = "-"
		mag = -mag
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, CurrencySymbol, mag/100, mag%100)
}

// encodeItems serializes the state for the persisted slot.
func encodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// decodeItems parses a slot payload. A null payload decodes to an empty cart;
// records without a name make the whole payload invalid.
func decodeItems(data []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "decode cart slot")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, errors.Errorf("cart slot record %d has no name", i)
		}
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}
