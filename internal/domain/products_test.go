package domain

import (
    "encoding/json"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestElectricalPointRoundTrip(t *testing.T) {
    specs := map[string]ProductSpec{
        "panel":    PanelSpec{WattagePeakW: 410, Efficiency: 0.21},
        "inverter": InverterSpec{CapacityW: 8000, Efficiency: 0.97, Type: "hybrid"},
        "battery":  BatterySpec{CapacityKWh: 10, MaxChargeW: 5000, Efficiency: 0.95},
        "charger":  ChargerSpec{PowerW: 7400, Phases: 1},
    }
    for kind, spec := range specs {
        t.Run(kind, func(t *testing.T) {
            in := ElectricalPoint{ComponentCode: "x", Quantity: 2, Spec: spec}
            raw, err := json.Marshal(in)
            require.NoError(t, err)

            var doc struct {
                Spec map[string]any `json:"spec"`
            }
            require.NoError(t, json.Unmarshal(raw, &doc))
            assert.Equal(t, kind, doc.Spec["kind"])

            var out ElectricalPoint
            require.NoError(t, json.Unmarshal(raw, &out))
            assert.Equal(t, in, out)
        })
    }
}

func TestElectricalPointWithoutSpec(t *testing.T) {
    for _, doc := range []string{
        `{"component_code": "light_point", "quantity": 1}`,
        `{"component_code": "light_point", "quantity": 1, "spec": null}`,
    } {
        var p ElectricalPoint
        require.NoError(t, json.Unmarshal([]byte(doc), &p), doc)
        assert.Nil(t, p.Spec, doc)
        assert.Equal(t, "light_point", p.ComponentCode)
    }

    raw, err := json.Marshal(ElectricalPoint{ComponentCode: "light_point", Quantity: 1})
    require.NoError(t, err)
    assert.NotContains(t, string(raw), "spec")
}

func TestDecodeProductSpecRejects(t *testing.T) {
    cases := map[string]struct {
        doc   string
        field string
    }{
        "unknown kind":             {`{"kind": "turbine", "power_w": 1}`, "spec.kind"},
        "missing kind":             {`{"power_w": 1}`, "spec.kind"},
        "not an object":            {`[1, 2]`, "spec"},
        "unknown capability":       {`{"kind": "charger", "power_w": 7400, "phases": 1, "voltage": 230}`, "spec"},
        "wrong field type":         {`{"kind": "charger", "power_w": "7400", "phases": 1}`, "spec"},
        "panel wattage":            {`{"kind": "panel", "wattage": 0, "efficiency": 0.2}`, "spec.wattage"},
        "panel efficiency":         {`{"kind": "panel", "wattage": 400, "efficiency": 1.2}`, "spec.efficiency"},
        "inverter capacity":        {`{"kind": "inverter", "capacity": -1, "efficiency": 0.9, "type": "string"}`, "spec.capacity"},
        "inverter type":            {`{"kind": "inverter", "capacity": 5000, "efficiency": 0.9, "type": "central"}`, "spec.type"},
        "inverter efficiency":      {`{"kind": "inverter", "capacity": 5000, "efficiency": 0, "type": "micro"}`, "spec.efficiency"},
        "battery capacity":         {`{"kind": "battery", "capacity_kwh": 0, "max_charge_w": 3000, "efficiency": 0.9}`, "spec.capacity_kwh"},
        "battery charge power":     {`{"kind": "battery", "capacity_kwh": 10, "max_charge_w": 0, "efficiency": 0.9}`, "spec.max_charge_w"},
        "charger power":            {`{"kind": "charger", "power_w": 0, "phases": 3}`, "spec.power_w"},
        "charger phases":           {`{"kind": "charger", "power_w": 11000, "phases": 2}`, "spec.phases"},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            _, err := DecodeProductSpec(json.RawMessage(tc.doc))
            var ve *ValidationError
            require.ErrorAs(t, err, &ve)
            assert.Equal(t, tc.field, ve.Field)
        })
    }
}

func TestElectricalPointRejectsUnknownKeys(t *testing.T) {
    var p ElectricalPoint
    err := json.Unmarshal([]byte(`{"component_code": "light_point", "quantity": 1, "qty": 3}`), &p)
    assert.True(t, IsValidation(err))

    err = json.Unmarshal([]byte(`{"component_code": "ev_charger", "quantity": 1,
        "spec": {"kind": "charger", "power_w": 7400, "phases": 4}}`), &p)
    var ve *ValidationError
    require.ErrorAs(t, err, &ve)
    assert.Equal(t, "spec.phases", ve.Field)
}

func TestChargerSpecCarriesPhases(t *testing.T) {
    var spec ProductSpec = ChargerSpec{PowerW: 7400, Phases: 1}
    ps, ok := spec.(PhasedSpec)
    require.True(t, ok)
    assert.Equal(t, 1, ps.PhaseCount())

    _, ok = ProductSpec(InverterSpec{CapacityW: 1}).(PhasedSpec)
    assert.False(t, ok)
}
