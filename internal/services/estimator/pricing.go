package estimator

import (
    "github.com/shopspring/decimal"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
)

var hundred = decimal.NewFromInt(100)

// Rates are the percentages and hourly rate one estimate is priced with.
type Rates struct {
    HourlyRate      float64
    OverheadPercent float64
    RiskPercent     float64
    MarginPercent   float64
    VATPercent      float64
}

func ratesFor(t *reftables.Tables, o *domain.CalibrationOverride, riskPct float64) Rates {
    r := Rates{
        HourlyRate:      t.Pricing.HourlyRate,
        OverheadPercent: t.Pricing.OverheadPercent,
        RiskPercent:     riskPct,
        MarginPercent:   t.Pricing.MarginPercent,
        VATPercent:      t.Pricing.VATPercent,
    }
    if o == nil {
        return r
    }
    if o.HourlyRate != nil {
        r.HourlyRate = *o.HourlyRate
    }
    if o.OverheadPercent != nil {
        r.OverheadPercent = *o.OverheadPercent
    }
    if o.MarginPercent != nil {
        r.MarginPercent = *o.MarginPercent
    }
    if o.VATPercent != nil {
        r.VATPercent = *o.VATPercent
    }
    return r
}

func price(t *reftables.Tables, o *domain.CalibrationOverride, q *quantities, risk domain.RiskAnalysis) domain.ProjectEstimate {
    est := Cascade(q.componentMinutes+q.panelMinutes, q.componentMaterial+q.panelMaterial, ratesFor(t, o, risk.RiskBufferPercent))
    est.Currency = t.Pricing.Currency
    est.RiskAnalysis = risk
    est.Lines = q.lines
    if est.Lines == nil {
        est.Lines = []domain.EstimateLine{}
    }
    return est
}

// Cascade prices minutes and material. Every amount is rounded to øre as it
// is produced and later steps build on the rounded value, so the parts always
// add up to the final amount. Overhead and risk are taken from the subtotal;
// margin from subtotal+overhead+risk; VAT from the sale price.
func Cascade(minutes, material float64, r Rates) domain.ProjectEstimate {
    hours := decimal.NewFromFloat(minutes).Div(decimal.NewFromInt(60))
    mat := decimal.NewFromFloat(material).Round(2)
    labor := hours.Mul(decimal.NewFromFloat(r.HourlyRate)).Round(2)

    subtotal := mat.Add(labor)
    overhead := pct(subtotal, r.OverheadPercent)
    riskAmt := pct(subtotal, r.RiskPercent)
    costBasis := subtotal.Add(overhead).Add(riskAmt)
    margin := pct(costBasis, r.MarginPercent)
    sale := costBasis.Add(margin)
    vat := pct(sale, r.VATPercent)
    final := sale.Add(vat)

    return domain.ProjectEstimate{
        TimeHours:     f(hours.Round(2)),
        MaterialCost:  f(mat),
        HourlyRate:    r.HourlyRate,
        LaborCost:     f(labor),
        Subtotal:      f(subtotal),
        OverheadPct:   r.OverheadPercent,
        OverheadAmt:   f(overhead),
        RiskBufferPct: r.RiskPercent,
        RiskAmount:    f(riskAmt),
        CostBasis:     f(costBasis),
        MarginPct:     r.MarginPercent,
        MarginAmount:  f(margin),
        SaleExVAT:     f(sale),
        VATPct:        r.VATPercent,
        VATAmount:     f(vat),
        FinalAmount:   f(final),
        Lines:         []domain.EstimateLine{},
        Warnings:      []string{},
    }
}

func pct(base decimal.Decimal, percent float64) decimal.Decimal {
    return base.Mul(decimal.NewFromFloat(percent)).Div(hundred).Round(2)
}

func f(d decimal.Decimal) float64 { return d.InexactFloat64() }
