// Package pdf genera el comprobante de venta del POS.
//
// Layout (media carta vertical):
//
//	Farmacia + slug          │  N° transacción + fecha
//	Paciente / método / estado
//	Producto | Cant | P.Unit | Total
//	Subtotal / Impuesto / TOTAL
//	QR del recibo del procesador (si existe)
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmaops-api/internal/application/checkout"
	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	"github.com/jhoicas/pharmaops-api/internal/domain/pos"
)

var _ checkout.ReceiptGenerator = (*ReceiptGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 15, Green: 118, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ReceiptGenerator implementa checkout.ReceiptGenerator con Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// Generate arma el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) Generate(tx *entity.Transaction, tenant *entity.Tenant) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante "+tx.TransactionNumber, true).
		WithAuthor(tenant.Name, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(tx, tenant))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailsRow(tx))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(itemsHeaderRow())
	m.AddRows(itemRows(tx.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(tx))
	m.AddRows(footerRows(tx)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(tx *entity.Transaction, tenant *entity.Tenant) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(tenant.Name, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
			text.New(tenant.Slug, props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{Style: fontstyle.Bold, Size: 7, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(tx.TransactionNumber, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 6}),
			text.New(tx.CreatedAt.Format("2006-01-02 15:04 MST"), props.Text{Size: 7, Align: align.Right, Top: 11, Color: colorGray}),
		),
	)
}

func detailsRow(tx *entity.Transaction) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(
			fmt.Sprintf("Paciente: %s   |   Método: %s   |   Estado: %s", tx.PatientID, tx.PaymentMethod, tx.PaymentStatus),
			props.Text{Size: 8, Top: 2, Color: colorGray},
		)),
	)
}

func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 1}))
	}
	return row.New(6).Add(
		h("Producto", 6, align.Left),
		h("Cant.", 1, align.Center),
		h("P.Unit", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

func itemRows(items []*entity.TransactionItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(6).Add(text.New(it.Name, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(money(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(money(it.Total), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func totalsRow(tx *entity.Transaction) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 8, Align: align.Right, Top: top})
	}
	rate := pos.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(2)
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("Impuesto ("+rate+"%):", 6),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 11, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(money(tx.Amount), 1),
			value(money(tx.Tax), 6),
			text.New(money(tx.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 11, Color: colorPrimary}),
		),
	)
}

func footerRows(tx *entity.Transaction) []core.Row {
	if tx.StripeReceiptURL == nil || *tx.StripeReceiptURL == "" {
		return []core.Row{row.New(8).Add(col.New(12).Add(
			text.New("Gracias por su compra.", props.Text{Size: 8, Align: align.Center, Top: 3, Color: colorGray}),
		))}
	}
	return []core.Row{
		row.New(4),
		row.New(32).Add(
			col.New(4).Add(code.NewQr(*tx.StripeReceiptURL, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("Escanee el código para ver el recibo del pago con tarjeta.", props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
				text.New("Gracias por su compra.", props.Text{Style: fontstyle.Bold, Size: 9, Top: 16, Left: 3, Color: colorPrimary}),
			),
		),
	}
}

// money formato "$1,234.56".
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
