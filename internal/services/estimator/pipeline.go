package estimator

import (
    "context"
    "fmt"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
    "github.com/wukjhc-create/elta-crm-sub010/internal/services/electrical"
)

// CalculateElectricalProject runs the whole pipeline for one request:
// points → loads → load analysis → panel (with per-circuit cables) →
// compliance → money. Everything is recomputed from the request and the
// calculator's table snapshot; advisor may be nil.
func CalculateElectricalProject(ctx context.Context, calc *electrical.Calculator, req domain.EstimateRequest, advisor ports.RiskAdvisor) (domain.ElectricalProjectResult, error) {
    if err := Validate(req); err != nil {
        return domain.ElectricalProjectResult{}, err
    }
    t := calc.Tables()

    q := takeoff(t, req)
    if err := calc.ValidateLoads(q.loads, req.BuildingType); err != nil {
        return domain.ElectricalProjectResult{}, err
    }

    load := calc.CalculateLoad(q.loads, req.SupplyPhase, req.BuildingType)
    panel := calc.ConfigurePanelFromLoads(q.loads, q.rooms, req.SupplyPhase, req.IsRenovation, electrical.PanelOptions{
        BuildingType:    req.BuildingType,
        ExistingSupplyA: req.ExistingSupplyA,
        Load:            &load,
    })
    compliance := calc.CheckCompliance(panel)

    q.addPanelWork(t, panel)

    warnings := append([]string{}, q.warnings...)
    warnings = append(warnings, load.Warnings...)
    warnings = append(warnings, panel.Notes...)

    risk := assessRisk(t, req, q, panel, compliance)
    if w := chooseRiskBuffer(ctx, req.Overrides, advisor, &risk); w != "" {
        warnings = append(warnings, w)
    }

    est := price(t, req.Overrides, q, risk)
    est.Warnings = warnings

    return domain.ElectricalProjectResult{
        CalculationID: req.CalculationID,
        Loads:         q.loads,
        LoadAnalysis:  load,
        Panel:         panel,
        Compliance:    compliance,
        Estimate:      est,
    }, nil
}

// Validate checks the hard preconditions of an estimate request.
func Validate(req domain.EstimateRequest) error {
    if len(req.Rooms) == 0 {
        return &domain.ValidationError{Field: "rooms", Message: "at least one room is required"}
    }
    if req.SupplyPhase == "" {
        return &domain.ValidationError{Field: "supply_phase", Message: "is required"}
    }
    if !req.SupplyPhase.Valid() {
        return &domain.ValidationError{Field: "supply_phase", Message: fmt.Sprintf("unknown phase %q", req.SupplyPhase)}
    }
    if req.ExistingSupplyA < 0 {
        return &domain.ValidationError{Field: "existing_supply_a", Message: "must not be negative"}
    }
    for i, r := range req.Rooms {
        for j, p := range r.ElectricalPoints {
            field := fmt.Sprintf("rooms[%d].electrical_points[%d]", i, j)
            if p.ComponentCode == "" {
                return &domain.ValidationError{Field: field + ".component_code", Message: "is required"}
            }
            if p.Quantity < 0 {
                return &domain.ValidationError{Field: field + ".quantity", Message: "must not be negative"}
            }
            if p.PowerW < 0 {
                return &domain.ValidationError{Field: field + ".power_w", Message: "must not be negative"}
            }
            if p.Spec != nil {
                if err := p.Spec.Validate(); err != nil {
                    return fmt.Errorf("%s: %w", field, err)
                }
            }
        }
    }
    return validateOverrides(req.Overrides)
}

func validateOverrides(o *domain.CalibrationOverride) error {
    if o == nil {
        return nil
    }
    fields := []struct {
        name string
        v    *float64
    }{
        {"hourly_rate", o.HourlyRate},
        {"overhead_percent", o.OverheadPercent},
        {"risk_buffer_percent", o.RiskBufferPercent},
        {"margin_percent", o.MarginPercent},
        {"vat_percent", o.VATPercent},
        {"building_multiplier", o.BuildingMultiplier},
        {"time_factor", o.TimeFactor},
    }
    for _, f := range fields {
        if f.v != nil && *f.v < 0 {
            return &domain.ValidationError{Field: "overrides." + f.name, Message: "must not be negative"}
        }
    }
    return nil
}

// quantities is the takeoff: loads plus the time and material lines they
// and the panel work cost.
type quantities struct {
    rooms    []domain.Room
    loads    []domain.LoadEntry
    lines    []domain.EstimateLine
    points   int
    wetRooms int
    heavy    bool
    warnings []string

    componentMinutes  float64
    componentMaterial float64
    panelMinutes      float64
    panelMaterial     float64
}

func takeoff(t *reftables.Tables, req domain.EstimateRequest) *quantities {
    q := &quantities{rooms: make([]domain.Room, len(req.Rooms))}
    lineIdx := map[string]int{}
    seq := map[string]int{}

    mult := t.BuildingMultiplier(req.BuildingType)
    if req.BuildingType != "" {
        if _, ok := t.BuildingProfiles[req.BuildingType]; !ok {
            q.warnings = append(q.warnings, fmt.Sprintf("building type %q has no profile, multiplier 1.0 used", req.BuildingType))
        }
    }
    timeFactor := t.Factor(reftables.FactorTime)
    if o := req.Overrides; o != nil {
        if o.BuildingMultiplier != nil {
            mult = *o.BuildingMultiplier
        }
        if o.TimeFactor != nil {
            timeFactor = *o.TimeFactor
        }
    }
    timeMult := mult * timeFactor
    if req.IsRenovation {
        timeMult *= t.Factor(reftables.FactorRenovationTime)
    }
    materialFactor := t.Factor(reftables.FactorMaterial)

    for i, r := range req.Rooms {
        if r.ID == "" {
            r.ID = fmt.Sprintf("room-%d", i+1)
        }
        q.rooms[i] = r
        if tmpl, ok := t.Room(r.RoomType); ok && tmpl.WetArea {
            q.wetRooms++
        }

        for _, p := range r.ElectricalPoints {
            if p.Quantity == 0 {
                continue
            }
            comp, known := t.Component(p.ComponentCode)
            if !known {
                q.warnings = append(q.warnings, fmt.Sprintf("component %q in room %s is not in the reference tables; no time or material counted", p.ComponentCode, r.ID))
                comp = reftables.Component{Name: p.ComponentCode, Unit: "stk", CircuitType: domain.CircuitOther, Phase: 1}
            }
            q.points += p.Quantity
            if comp.CircuitType == domain.CircuitEV || p.ComponentCode == "heat_pump" {
                q.heavy = true
            }

            unitW, phases := comp.PowerW, comp.Phase
            if p.PowerW > 0 {
                unitW = p.PowerW
            }
            if p.Spec != nil {
                unitW = p.Spec.LoadW()
            }
            if ps, ok := p.Spec.(domain.PhasedSpec); ok {
                phases = ps.PhaseCount()
            }
            if unitW > 0 {
                prefix := r.ID + "/" + p.ComponentCode
                for n := 0; n < p.Quantity; n++ {
                    seq[prefix]++
                    q.loads = append(q.loads, domain.LoadEntry{
                        Name:             fmt.Sprintf("%s#%d", prefix, seq[prefix]),
                        PowerW:           unitW,
                        PhaseRequirement: phases,
                        CircuitType:      comp.CircuitType,
                        IsContinuous:     comp.Continuous,
                        DiversityGroup:   comp.DiversityGroup,
                        RoomID:           r.ID,
                        ComponentCode:    p.ComponentCode,
                    })
                }
            }

            qty := float64(p.Quantity)
            minutes := qty * comp.TimeMinutes * timeMult
            material := qty * comp.MaterialCost * materialFactor
            q.componentMinutes += minutes
            q.componentMaterial += material

            idx, ok := lineIdx[p.ComponentCode]
            if !ok {
                idx = len(q.lines)
                lineIdx[p.ComponentCode] = idx
                q.lines = append(q.lines, domain.EstimateLine{Code: p.ComponentCode, Description: comp.Name, Unit: comp.Unit})
            }
            q.lines[idx].Quantity += qty
            q.lines[idx].Minutes += minutes
            q.lines[idx].MaterialCost += material
        }
    }
    return q
}

// addPanelWork prices the board, circuits, RCDs, cable runs and a supply
// upgrade. A request without circuits needs no board.
func (q *quantities) addPanelWork(t *reftables.Tables, panel domain.PanelConfiguration) {
    if len(panel.Circuits) == 0 {
        return
    }
    w := t.PanelWork
    q.panelLine("panel_base", "Tavle og hovedafbryder", 1, "stk", w.Base)
    q.panelLine("circuit", "Gruppe med automatsikring", float64(len(panel.Circuits)), "stk", w.PerCircuit)
    if n := len(panel.RcdGroups); n > 0 {
        q.panelLine("rcd", "HPFI-afbryder", float64(n), "stk", w.PerRCD)
    }

    type run struct {
        mm2   float64
        phase domain.PhaseType
    }
    meters := map[run]float64{}
    var order []run
    for _, ci := range panel.Circuits {
        k := run{ci.CableCrossSectionMM2, ci.Phase}
        if _, ok := meters[k]; !ok {
            order = append(order, k)
        }
        meters[k] += ci.LengthM
    }
    for _, k := range order {
        m := meters[k]
        cores := "3G"
        if k.phase == domain.PhaseThree {
            cores = "5G"
        }
        q.panelLine(fmt.Sprintf("cable_%s%g", cores, k.mm2), fmt.Sprintf("Kabel %s%g mm²", cores, k.mm2), m, "m",
            reftables.WorkItem{Minutes: t.Cable.MinutesPerM, MaterialCost: t.CablePriceFor(k.mm2, k.phase)})
    }

    if panel.UpgradeRequired {
        q.panelLine("supply_upgrade", "Opgradering af stikledning", 1, "stk", w.SupplyUpgrade)
    }
}

func (q *quantities) panelLine(code, desc string, qty float64, unit string, w reftables.WorkItem) {
    line := domain.EstimateLine{
        Code:         code,
        Description:  desc,
        Quantity:     qty,
        Unit:         unit,
        Minutes:      qty * w.Minutes,
        MaterialCost: qty * w.MaterialCost,
    }
    q.panelMinutes += line.Minutes
    q.panelMaterial += line.MaterialCost
    q.lines = append(q.lines, line)
}
