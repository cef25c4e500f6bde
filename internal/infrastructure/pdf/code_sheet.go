// Package pdf genera la hoja imprimible de un lote de códigos de inscripción.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + Programa  │  Lote + Fecha + Cantidad     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  INSTRUCCIONES                                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  GRILLA: [QR + código] x 3 por fila                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"net/url"
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

	"github.com/jhoicas/emed-onboarding/internal/application/codes"
	"github.com/jhoicas/emed-onboarding/internal/domain/entity"
)

var _ codes.CodeSheetPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const codesPerRow = 3

// MarotoPDFGenerator implementa codes.CodeSheetPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateCodeSheetPDF genera el PDF del lote y devuelve sus bytes. Cada QR apunta a
// enrollmentURL?code=<código>; sin enrollmentURL el QR lleva solo el código.
func (g *MarotoPDFGenerator) GenerateCodeSheetPDF(
	ctx context.Context,
	company *entity.Company,
	program *entity.Program,
	batch *entity.CodeBatch,
	list []*entity.EnrollmentCode,
	enrollmentURL string,
) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Códigos de inscripción", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, program, batch, len(list)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(instructionsRow(program, enrollmentURL))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(codeRows(list, enrollmentURL)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company *entity.Company, program *entity.Program, batch *entity.CodeBatch, n int) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(program.Name, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("CÓDIGOS DE INSCRIPCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Lote %s", shortID(batch.ID)), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New(fmt.Sprintf("Emitido: %s   |   %d códigos", batch.CreatedAt.Format("02/01/2006"), n), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func instructionsRow(program *entity.Program, enrollmentURL string) core.Row {
	msg := "Entregue un código a cada empleado. Cada código se puede usar una sola vez."
	if enrollmentURL != "" {
		msg += " Escanee el QR o ingrese el código en " + enrollmentURL + "."
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("INSTRUCCIONES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(msg, props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

// codeRows arma la grilla en el orden de emisión; la última fila se completa con celdas vacías.
func codeRows(list []*entity.EnrollmentCode, enrollmentURL string) []core.Row {
	size := 12 / codesPerRow
	rows := make([]core.Row, 0, len(list)/codesPerRow+1)
	for start := 0; start < len(list); start += codesPerRow {
		cols := make([]core.Col, 0, codesPerRow)
		for i := start; i < start+codesPerRow; i++ {
			if i >= len(list) {
				cols = append(cols, col.New(size))
				continue
			}
			c := list[i]
			cols = append(cols, col.New(size).Add(
				code.NewQr(QRContent(enrollmentURL, c.Code), props.Rect{Percent: 70, Center: true}),
			))
		}
		rows = append(rows, row.New(40).Add(cols...))

		labels := make([]core.Col, 0, codesPerRow)
		for i := start; i < start+codesPerRow; i++ {
			if i >= len(list) {
				labels = append(labels, col.New(size))
				continue
			}
			labels = append(labels, col.New(size).Add(text.New(list[i].Code, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 1,
			})))
		}
		rows = append(rows, row.New(10).Add(labels...))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// QRContent devuelve el contenido del QR de un código.
func QRContent(enrollmentURL, c string) string {
	if enrollmentURL == "" {
		return c
	}
	sep := "?"
	if strings.Contains(enrollmentURL, "?") {
		sep = "&"
	}
	return enrollmentURL + sep + "code=" + url.QueryEscape(c)
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
