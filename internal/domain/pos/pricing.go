// Package pos reúne los cálculos puros del punto de venta (impuesto, montos, numeración).
package pos

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate tasa fija de impuesto sobre ventas del POS (6.25%).
var TaxRate = decimal.RequireFromString("0.0625")

var hundred = decimal.NewFromInt(100)

// Límites del total cobrable: mínimo de Stripe para USD y rango de NUMERIC(12,2) (máximo exclusivo).
var (
	MinChargeTotal = decimal.RequireFromString("0.50")
	MaxChargeTotal = decimal.New(1, 10)
)

// ErrAmountOutOfRange total fuera de [MinChargeTotal, MaxChargeTotal).
var ErrAmountOutOfRange = errors.New("monto fuera de rango")

// CheckChargeTotal valida un total ya redondeado a centavos.
func CheckChargeTotal(total decimal.Decimal) error {
	if total.LessThan(MinChargeTotal) {
		return fmt.Errorf("%w: el mínimo es %s", ErrAmountOutOfRange, MinChargeTotal.StringFixed(2))
	}
	if total.GreaterThanOrEqual(MaxChargeTotal) {
		return fmt.Errorf("%w: debe ser menor que %s", ErrAmountOutOfRange, MaxChargeTotal.StringFixed(0))
	}
	return nil
}

// SplitTotal calcula tax = total × 6.25% (redondeado a centavos) y amount = total − tax.
// El total se recibe ya con impuesto incluido; amount se obtiene por diferencia.
func SplitTotal(total decimal.Decimal) (amount, tax decimal.Decimal) {
	total = total.Round(2)
	tax = total.Mul(TaxRate).Round(2)
	amount = total.Sub(tax)
	return amount, tax
}

// ToMinorUnits convierte un monto en dólares a centavos (unidad que espera Stripe).
// Rechaza montos que no caben en el rango cobrable en vez de truncar a int64.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() || amount.GreaterThanOrEqual(MaxChargeTotal) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount.String())
	}
	return amount.Mul(hundred).Round(0).IntPart(), nil
}

// LineTotal total de una línea: quantity × unitPrice, a centavos.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// NewTransactionNumber genera el número legible "TXN-<ms en base36>-<4 hex>".
// El sufijo aleatorio evita choques entre instancias dentro del mismo milisegundo.
func NewTransactionNumber(now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "TXN-" + ts + "-" + randomSuffix()
}

func randomSuffix() string {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "0000"
	}
	return strings.ToUpper(hex.EncodeToString(b[:]))
}
