package electrical

import (
    "fmt"
    "math"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
)

type PanelOptions struct {
    BuildingType string
    // ExistingSupplyA overrides the configured existing supply for renovations.
    ExistingSupplyA float64
    // Load reuses an analysis already computed for the same loads.
    Load *domain.LoadAnalysisResult
}

type circuitAcc struct {
    circuit   domain.Circuit
    dedicated bool
}

// ConfigurePanelFromLoads groups loads into circuits, sizes breakers and
// cables, forms RCD groups and counts DIN modules.
//
// A load joins the most recent circuit in the same room with the same
// circuit type and phase as long as the circuit stays under its type's
// current limit; dedicated types always get a circuit of their own. Circuit
// IDs are assigned in order (C1, C2, ...), so equal input gives equal output.
func (c *Calculator) ConfigurePanelFromLoads(loads []domain.LoadEntry, rooms []domain.Room, phase domain.PhaseType, isRenovation bool, opts PanelOptions) domain.PanelConfiguration {
    t := c.tables
    if phase != domain.PhaseThree {
        phase = domain.PhaseSingle
    }
    panel := domain.PanelConfiguration{Phase: phase}

    roomByID := make(map[string]domain.Room, len(rooms))
    for _, r := range rooms {
        roomByID[r.ID] = r
    }

    var circuits []*circuitAcc
    open := map[string]int{}
    for i, l := range loads {
        ct := l.CircuitType
        if !ct.Valid() {
            ct = domain.CircuitOther
        }
        rule := t.Rule(ct)

        loadPhase := domain.PhaseSingle
        if l.PhaseRequirement == 3 {
            if phase == domain.PhaseThree {
                loadPhase = domain.PhaseThree
            } else {
                panel.Notes = append(panel.Notes, fmt.Sprintf(
                    "%s needs a three-phase supply; placed on a single-phase circuit", loadRef(i, l)))
            }
        }
        power := math.Max(l.PowerW, 0)
        current := c.designCurrent(power, loadPhase)

        key := l.RoomID + "|" + string(ct) + "|" + string(loadPhase)
        if !rule.Dedicated {
            if idx, ok := open[key]; ok && circuits[idx].circuit.DesignCurrentA+current <= rule.MaxCurrentA {
                acc := circuits[idx]
                acc.circuit.LoadRefs = append(acc.circuit.LoadRefs, loadRef(i, l))
                acc.circuit.PowerW += power
                acc.circuit.DesignCurrentA += current
                continue
            }
        }

        room := roomByID[l.RoomID]
        circuits = append(circuits, &circuitAcc{
            dedicated: rule.Dedicated,
            circuit: domain.Circuit{
                ID:             fmt.Sprintf("C%d", len(circuits)+1),
                LoadRefs:       []string{loadRef(i, l)},
                RoomID:         l.RoomID,
                RoomType:       room.RoomType,
                CircuitType:    ct,
                Phase:          loadPhase,
                PowerW:         power,
                DesignCurrentA: current,
            },
        })
        if !rule.Dedicated {
            open[key] = len(circuits) - 1
        }
    }

    var rcd *domain.RcdGroup
    for _, acc := range circuits {
        ci := &acc.circuit
        rule := t.Rule(ci.CircuitType)
        tmpl, _ := t.Room(ci.RoomType)

        ci.LengthM = t.DefaultCableLengthM
        if tmpl.DefaultCableLengthM > 0 {
            ci.LengthM = tmpl.DefaultCableLengthM
        }
        if r, ok := roomByID[ci.RoomID]; ok && r.CableLengthM > 0 {
            ci.LengthM = r.CableLengthM
        }
        method := tmpl.InstallationMethod
        if method == "" {
            method = t.DefaultInstallationMethod
        }

        breaker, ok := reftables.NextSize(t.BreakerSizes, math.Max(ci.DesignCurrentA, rule.MinBreakerA))
        if !ok {
            panel.Notes = append(panel.Notes, fmt.Sprintf(
                "%s draws %.1f A, above the largest final-circuit breaker", ci.ID, ci.DesignCurrentA))
        }
        ci.BreakerRatingA = breaker

        v, _ := t.SystemVoltage(ci.Phase)
        cable := c.CalculateCableSize(domain.CableSizingInput{
            CircuitID:          ci.ID,
            PowerW:             ci.PowerW,
            LengthM:            ci.LengthM,
            Voltage:            v,
            InstallationMethod: method,
            CircuitType:        ci.CircuitType,
            Phase:              ci.Phase,
            MinAmpacityA:       breaker,
        })
        ci.CableCrossSectionMM2 = cable.CrossSectionMM2
        panel.Cables = append(panel.Cables, cable)

        ci.RequiresRCD = tmpl.WetArea || tmpl.RequiresRCD || rule.RequiresRCD
        if ci.RequiresRCD {
            if rcd == nil || len(rcd.CircuitIDs) >= c.limits.MaxCircuitsPerRCD {
                panel.RcdGroups = append(panel.RcdGroups, domain.RcdGroup{
                    ID:            fmt.Sprintf("RCD%d", len(panel.RcdGroups)+1),
                    RatingA:       t.RCD.RatingA,
                    SensitivityMA: t.RCD.SensitivityMA,
                })
                rcd = &panel.RcdGroups[len(panel.RcdGroups)-1]
            }
            rcd.CircuitIDs = append(rcd.CircuitIDs, ci.ID)
            ci.RcdGroupID = rcd.ID
        }
        panel.Circuits = append(panel.Circuits, *ci)
    }

    load := opts.Load
    if load == nil {
        la := c.CalculateLoad(loads, phase, opts.BuildingType)
        load = &la
    }
    panel.MainBreakerRatingA = load.MainBreakerRatingA
    panel.DemandLoadW = load.TotalDemandLoadW

    panel.UsedModules, panel.PanelCapacityModules = c.modules(panel)

    if isRenovation {
        panel.ExistingSupplyA = opts.ExistingSupplyA
        if panel.ExistingSupplyA <= 0 {
            panel.ExistingSupplyA = c.limits.ExistingSupplyA
        }
        if panel.MainBreakerRatingA > panel.ExistingSupplyA {
            panel.UpgradeRequired = true
            panel.Notes = append(panel.Notes, fmt.Sprintf(
                "main breaker %.0f A exceeds existing supply %.0f A", panel.MainBreakerRatingA, panel.ExistingSupplyA))
        }
    }
    return panel
}

// modules counts DIN modules in use and rounds capacity up to whole rows
// after the spare allowance.
func (c *Calculator) modules(p domain.PanelConfiguration) (int, int) {
    if len(p.Circuits) == 0 {
        return 0, 0
    }
    m := c.tables.Modules
    used := m.MainSingle
    rcdWidth := m.RCDSingle
    if p.Phase == domain.PhaseThree {
        used = m.MainThree
        rcdWidth = m.RCDThree
    }
    for _, ci := range p.Circuits {
        if ci.Phase == domain.PhaseThree {
            used += m.MCBThree
        } else {
            used += m.MCBSingle
        }
    }
    used += rcdWidth * len(p.RcdGroups)

    need := int(math.Ceil(float64(used) * (1 + m.SpareRatio)))
    row := m.RowModules
    if row <= 0 {
        return used, need
    }
    return used, (need + row - 1) / row * row
}

func loadRef(i int, l domain.LoadEntry) string {
    if l.Name != "" {
        return l.Name
    }
    return fmt.Sprintf("load-%d", i+1)
}
