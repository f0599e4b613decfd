// Package report renders the complete dashboard as a PDF document.
package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/salesdash/internal/clock"
	dashboarddomain "github.com/smallbiznis/salesdash/internal/dashboard/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const ContentType = "application/pdf"

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Dashboard dashboarddomain.Service
}

type Renderer struct {
	log       *zap.Logger
	clock     clock.Clock
	dashboard dashboarddomain.Service
}

func New(p Params) *Renderer {
	return &Renderer{
		log:       p.Log.Named("report.renderer"),
		clock:     p.Clock,
		dashboard: p.Dashboard,
	}
}

// Render loads the complete dashboard and returns the PDF bytes.
func (r *Renderer) Render(ctx context.Context) ([]byte, error) {
	data, err := r.dashboard.Complete(ctx)
	if err != nil {
		return nil, err
	}

	generatedAt := r.clock.Now().UTC().Format("2006-01-02 15:04 UTC")
	doc, err := Build(data, generatedAt)
	if err != nil {
		r.log.Error("failed to render dashboard report", zap.Error(err))
		return nil, err
	}
	return doc, nil
}

// Build lays out a dashboard payload. It has no data dependencies so the
// CLI and HTTP handler share the exact same document.
func Build(data dashboarddomain.Complete, generatedAt string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Sales Dashboard", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Generated "+generatedAt, props.Text{Size: 9}),
	)

	m.AddRow(20,
		summaryCol("Total sales", money(data.Summary.TotalSales)),
		summaryCol("Total orders", fmt.Sprintf("%d", data.Summary.TotalOrders)),
		summaryCol("Average order value", money(data.Summary.AvgOrderValue)),
	)

	section(m, "Sales by category", "Category")
	for _, c := range data.SalesByCategory {
		tableRow(m, c.Category, money(c.Sales))
	}

	section(m, "Best selling products", "Product")
	for _, p := range data.BestSelling {
		tableRow(m, p.Name, money(p.Sales))
	}

	section(m, "Monthly trend", "Month")
	for _, t := range data.SalesTrend {
		tableRow(m, t.Period, money(t.Sales))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func summaryCol(label, value string) core.Col {
	return col.New(4).Add(
		text.New(label, props.Text{Size: 9}),
		text.New(value, props.Text{Top: 5, Size: 14, Style: fontstyle.Bold}),
	)
}

func section(m core.Maroto, title, label string) {
	m.AddRow(14,
		text.NewCol(12, title, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)
	m.AddRow(8,
		text.NewCol(8, label, props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Sales", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(1, line.NewCol(12))
}

func tableRow(m core.Maroto, label, value string) {
	m.AddRow(7,
		text.NewCol(8, label, props.Text{Size: 9}),
		text.NewCol(4, value, props.Text{Size: 9, Align: align.Right}),
	)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
