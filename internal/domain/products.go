package domain

import (
    "bytes"
    "encoding/json"
    "fmt"
)

// ElectricalPoint is one installation line in a room: a component code from
// the reference tables times a quantity. PowerW overrides the tabulated power
// per unit; Spec, when set, supplies the power from a product's capabilities.
type ElectricalPoint struct {
    ComponentCode string      `json:"component_code"`
    Quantity      int         `json:"quantity"`
    PowerW        float64     `json:"power_w,omitempty"`
    Spec          ProductSpec `json:"-"`
}

// ProductSpec is the capability set of a concrete product. Each kind carries
// only the fields that make sense for it.
type ProductSpec interface {
    Kind() string
    // LoadW is the electrical load per unit the product puts on the installation.
    LoadW() float64
    Validate() error
}

// PhasedSpec is implemented by products that fix their own supply phases,
// overriding the component default.
type PhasedSpec interface {
    ProductSpec
    PhaseCount() int
}

type PanelSpec struct {
    WattagePeakW float64 `json:"wattage"`
    Efficiency   float64 `json:"efficiency"`
}

func (PanelSpec) Kind() string { return "panel" }

// LoadW is zero: panels feed the installation through the inverter.
func (PanelSpec) LoadW() float64 { return 0 }

func (s PanelSpec) Validate() error {
    if s.WattagePeakW <= 0 {
        return &ValidationError{Field: "spec.wattage", Message: "must be positive"}
    }
    return validEfficiency(s.Efficiency)
}

type InverterSpec struct {
    CapacityW  float64 `json:"capacity"`
    Efficiency float64 `json:"efficiency"`
    Type       string  `json:"type"` // string|hybrid|micro
}

func (InverterSpec) Kind() string     { return "inverter" }
func (s InverterSpec) LoadW() float64 { return s.CapacityW }

func (s InverterSpec) Validate() error {
    if s.CapacityW <= 0 {
        return &ValidationError{Field: "spec.capacity", Message: "must be positive"}
    }
    switch s.Type {
    case "string", "hybrid", "micro":
    default:
        return &ValidationError{Field: "spec.type", Message: fmt.Sprintf("unknown inverter type %q", s.Type)}
    }
    return validEfficiency(s.Efficiency)
}

type BatterySpec struct {
    CapacityKWh float64 `json:"capacity_kwh"`
    MaxChargeW  float64 `json:"max_charge_w"`
    Efficiency  float64 `json:"efficiency"`
}

func (BatterySpec) Kind() string     { return "battery" }
func (s BatterySpec) LoadW() float64 { return s.MaxChargeW }

func (s BatterySpec) Validate() error {
    if s.CapacityKWh <= 0 {
        return &ValidationError{Field: "spec.capacity_kwh", Message: "must be positive"}
    }
    if s.MaxChargeW <= 0 {
        return &ValidationError{Field: "spec.max_charge_w", Message: "must be positive"}
    }
    return validEfficiency(s.Efficiency)
}

type ChargerSpec struct {
    PowerW float64 `json:"power_w"`
    Phases int     `json:"phases"`
}

func (ChargerSpec) Kind() string     { return "charger" }
func (s ChargerSpec) LoadW() float64 { return s.PowerW }
func (s ChargerSpec) PhaseCount() int { return s.Phases }

func (s ChargerSpec) Validate() error {
    if s.PowerW <= 0 {
        return &ValidationError{Field: "spec.power_w", Message: "must be positive"}
    }
    if s.Phases != 1 && s.Phases != 3 {
        return &ValidationError{Field: "spec.phases", Message: "must be 1 or 3"}
    }
    return nil
}

func validEfficiency(e float64) error {
    if e <= 0 || e > 1 {
        return &ValidationError{Field: "spec.efficiency", Message: "must be in (0,1]"}
    }
    return nil
}

// DecodeProductSpec turns a {"kind": ..., ...} document into a validated spec.
func DecodeProductSpec(raw json.RawMessage) (ProductSpec, error) {
    var head struct {
        Kind string `json:"kind"`
    }
    if err := json.Unmarshal(raw, &head); err != nil {
        return nil, &ValidationError{Field: "spec", Message: err.Error()}
    }
    // Each variant is decoded strictly; kind rides along in the wrapper.
    var spec ProductSpec
    switch head.Kind {
    case "panel":
        var s struct {
            Kind string `json:"kind"`
            PanelSpec
        }
        if err := strictUnmarshal(raw, &s); err != nil { return nil, specErr(err) }
        spec = s.PanelSpec
    case "inverter":
        var s struct {
            Kind string `json:"kind"`
            InverterSpec
        }
        if err := strictUnmarshal(raw, &s); err != nil { return nil, specErr(err) }
        spec = s.InverterSpec
    case "battery":
        var s struct {
            Kind string `json:"kind"`
            BatterySpec
        }
        if err := strictUnmarshal(raw, &s); err != nil { return nil, specErr(err) }
        spec = s.BatterySpec
    case "charger":
        var s struct {
            Kind string `json:"kind"`
            ChargerSpec
        }
        if err := strictUnmarshal(raw, &s); err != nil { return nil, specErr(err) }
        spec = s.ChargerSpec
    default:
        return nil, &ValidationError{Field: "spec.kind", Message: fmt.Sprintf("unknown product kind %q", head.Kind)}
    }
    if err := spec.Validate(); err != nil {
        return nil, err
    }
    return spec, nil
}

func specErr(err error) error {
    return &ValidationError{Field: "spec", Message: err.Error()}
}

// strictUnmarshal rejects keys the target does not declare.
func strictUnmarshal(data []byte, v any) error {
    dec := json.NewDecoder(bytes.NewReader(data))
    dec.DisallowUnknownFields()
    return dec.Decode(v)
}

type electricalPointJSON struct {
    ComponentCode string          `json:"component_code"`
    Quantity      int             `json:"quantity"`
    PowerW        float64         `json:"power_w,omitempty"`
    Spec          json.RawMessage `json:"spec,omitempty"`
}

func (p *ElectricalPoint) UnmarshalJSON(data []byte) error {
    var in electricalPointJSON
    if err := strictUnmarshal(data, &in); err != nil {
        return &ValidationError{Field: "electrical_points", Message: err.Error()}
    }
    p.ComponentCode = in.ComponentCode
    p.Quantity = in.Quantity
    p.PowerW = in.PowerW
    p.Spec = nil
    if len(in.Spec) > 0 && string(in.Spec) != "null" {
        spec, err := DecodeProductSpec(in.Spec)
        if err != nil {
            return err
        }
        p.Spec = spec
    }
    return nil
}

func (p ElectricalPoint) MarshalJSON() ([]byte, error) {
    out := electricalPointJSON{ComponentCode: p.ComponentCode, Quantity: p.Quantity, PowerW: p.PowerW}
    if p.Spec != nil {
        body, err := json.Marshal(p.Spec)
        if err != nil {
            return nil, err
        }
        // splice the kind discriminator into the spec document
        var fields map[string]any
        if err := json.Unmarshal(body, &fields); err != nil {
            return nil, err
        }
        fields["kind"] = p.Spec.Kind()
        if out.Spec, err = json.Marshal(fields); err != nil {
            return nil, err
        }
    }
    return json.Marshal(out)
}
