package calendar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRegion is returned when a region name is not recognised
var ErrUnknownRegion = errors.New("unknown region")

// Region selects a holiday table
type Region string

const (
	RegionEnglandWales    Region = "england-wales"
	RegionScotland        Region = "scotland"
	RegionNorthernIreland Region = "northern-ireland"

	DefaultRegion = RegionEnglandWales
)

// Regions returns every supported region in display order
func Regions() []Region {
	return []Region{RegionEnglandWales, RegionScotland, RegionNorthernIreland}
}

// ParseRegion parses a region name (case-insensitive)
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
	}
	return r, nil
}

// Valid reports whether r is one of the supported regions
func (r Region) Valid() bool {
	switch r {
	case RegionEnglandWales, RegionScotland, RegionNorthernIreland:
		return true
	}
	return false
}

// OrDefault returns r, or the default region when r is unknown
func (r Region) OrDefault() Region {
	if r.Valid() {
		return r
	}
	return DefaultRegion
}

// DisplayName returns the human readable name of the region
func (r Region) DisplayName() string {
	switch r {
	case RegionScotland:
		return "Scotland"
	case RegionNorthernIreland:
		return "Northern Ireland"
	default:
		return "England & Wales"
	}
}

// GovUKDivision returns the division key used by the gov.uk bank holidays feed
func (r Region) GovUKDivision() string {
	switch r.OrDefault() {
	case RegionScotland:
		return "scotland"
	case RegionNorthernIreland:
		return "northern-ireland"
	default:
		return "england-and-wales"
	}
}
