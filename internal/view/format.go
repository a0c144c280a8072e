package view

import (
	"golang.org/x/text/language"
	xmessage "golang.org/x/text/message"
)

// CurrencyMark prefixes every displayed price.
const CurrencyMark = "￥"

var pricePrinter = xmessage.NewPrinter(language.Japanese)

// FormatPrice renders an integer price with locale digit grouping.
func FormatPrice(price int64) string {
	return CurrencyMark + pricePrinter.Sprintf("%d", price)
}
