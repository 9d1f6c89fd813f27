// AngelaMos | 2026
// currency.go

package finance

import "strings"

type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

var currencies = []Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "KES", Name: "Kenyan Shilling", Symbol: "KSh"},
	{Code: "UGX", Name: "Ugandan Shilling", Symbol: "USh"},
	{Code: "TZS", Name: "Tanzanian Shilling", Symbol: "TSh"},
	{Code: "RWF", Name: "Rwandan Franc", Symbol: "FRw"},
	{Code: "NGN", Name: "Nigerian Naira", Symbol: "₦"},
	{Code: "GHS", Name: "Ghanaian Cedi", Symbol: "GH₵"},
	{Code: "ZAR", Name: "South African Rand", Symbol: "R"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "UZS", Name: "Uzbekistani Som", Symbol: "soʻm"},
}

func Currencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

func IsSupportedCurrency(code string) bool {
	for _, c := range currencies {
		if strings.EqualFold(c.Code, code) {
			return true
		}
	}
	return false
}
