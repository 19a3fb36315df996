package reftables

import (
    _ "embed"
    "fmt"
    "sort"

    "gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Default parses the embedded seed tables.
func Default() (*Tables, error) {
    return Parse(defaultsYAML)
}

// MustDefault is Default for process start and tests.
func MustDefault() *Tables {
    t, err := Default()
    if err != nil {
        panic(err)
    }
    return t
}

// Parse decodes a tables document and checks the invariants the calculators
// rely on (ascending series, factors within range).
func Parse(doc []byte) (*Tables, error) {
    var t Tables
    if err := yaml.Unmarshal(doc, &t); err != nil {
        return nil, fmt.Errorf("decode reference tables: %w", err)
    }
    if err := t.normalize(); err != nil {
        return nil, err
    }
    return &t, nil
}

func (t *Tables) normalize() error {
    if t.Voltage.Single <= 0 || t.Voltage.Three <= 0 {
        return fmt.Errorf("reference tables: voltages must be positive")
    }
    if t.PowerFactor <= 0 || t.PowerFactor > 1 {
        return fmt.Errorf("reference tables: power factor %g out of (0,1]", t.PowerFactor)
    }
    if _, ok := t.Resistivity[t.ConductorMaterial]; !ok {
        return fmt.Errorf("reference tables: no resistivity for conductor %q", t.ConductorMaterial)
    }
    if _, ok := t.Ampacity[t.DefaultInstallationMethod]; !ok {
        return fmt.Errorf("reference tables: default installation method %q has no ampacity table", t.DefaultInstallationMethod)
    }
    for method, tbl := range t.Ampacity {
        sort.Slice(tbl.Sizes, func(i, j int) bool { return tbl.Sizes[i].MM2 < tbl.Sizes[j].MM2 })
        t.Ampacity[method] = tbl
    }
    sort.Slice(t.TemperatureDerating, func(i, j int) bool {
        return t.TemperatureDerating[i].AmbientC < t.TemperatureDerating[j].AmbientC
    })
    sort.Float64s(t.BreakerSizes)
    sort.Float64s(t.MainBreakerSizes)
    sort.Slice(t.Cable.Prices, func(i, j int) bool { return t.Cable.Prices[i].MM2 < t.Cable.Prices[j].MM2 })
    sort.Slice(t.RiskBuckets, func(i, j int) bool { return t.RiskBuckets[i].MaxScore < t.RiskBuckets[j].MaxScore })

    for bt, groups := range t.Diversity {
        for g, f := range groups {
            if f <= 0 || f > 1 {
                return fmt.Errorf("reference tables: diversity %s/%s = %g out of (0,1]", bt, g, f)
            }
        }
    }
    for code, c := range t.Components {
        if !c.CircuitType.Valid() {
            return fmt.Errorf("reference tables: component %s has unknown circuit type %q", code, c.CircuitType)
        }
        if c.Phase == 0 {
            c.Phase = 1
            t.Components[code] = c
        }
    }
    if len(t.RiskBuckets) == 0 {
        return fmt.Errorf("reference tables: no risk buckets")
    }
    return nil
}
