package domain

import "github.com/shopspring/decimal"

// ConvertAmount converts an amount between two currencies whose rates are
// expressed relative to the same base currency:
//
//	converted = amount * (toRate / fromRate)
//
// Pure computation, no I/O. A zero fromRate would divide by zero; callers
// must treat a zero or missing rate as "skip this value" and never call
// through with one (see HistoricRateSnapshot.RateFor).
func ConvertAmount(amount, fromRate, toRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(toRate).Div(fromRate)
}

// TaxInclusiveAmount applies a set of percentage tax rates on top of a net
// amount: amount * (1 + sum(rates)/100). Used for expense statistics, which
// report gross values before currency conversion.
func TaxInclusiveAmount(amount decimal.Decimal, taxRates []decimal.Decimal) decimal.Decimal {
	if len(taxRates) == 0 {
		return amount
	}
	sum := decimal.Zero
	for _, r := range taxRates {
		sum = sum.Add(r)
	}
	factor := decimal.NewFromInt(1).Add(sum.Div(decimal.NewFromInt(100)))
	return amount.Mul(factor)
}
