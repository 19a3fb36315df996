// Package estimator composes the electrical calculators into a priced
// project estimate.
package estimator

import (
    "context"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/platform/logger"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
    "github.com/wukjhc-create/elta-crm-sub010/internal/services/electrical"
)

type Service struct {
    tables  *reftables.Store
    limits  electrical.Limits
    advisor ports.RiskAdvisor
    log     *logger.Logger
}

// New wires the estimator. advisor may be nil, in which case risk buffers
// come from the bucket defaults.
func New(tables *reftables.Store, limits electrical.Limits, advisor ports.RiskAdvisor, log *logger.Logger) *Service {
    if log == nil {
        log = logger.Nop()
    }
    return &Service{tables: tables, limits: limits, advisor: advisor, log: log}
}

// Estimate prices one request against the tables current at call time.
// A calibration applied mid-request does not affect it.
func (s *Service) Estimate(ctx context.Context, req domain.EstimateRequest) (domain.ElectricalProjectResult, error) {
    calc := electrical.New(s.tables.Snapshot(), s.limits)
    res, err := CalculateElectricalProject(ctx, calc, req, s.advisor)
    if err != nil {
        return res, err
    }
    s.log.Debug("estimate computed",
        "calculation_id", req.CalculationID,
        "circuits", len(res.Panel.Circuits),
        "compliant", res.Compliance.Compliant,
        "hours", res.Estimate.TimeHours,
        "final_amount", res.Estimate.FinalAmount,
        "risk_source", res.Estimate.RiskAnalysis.RiskBufferSource,
    )
    return res, nil
}

var _ ports.Estimator = (*Service)(nil)
