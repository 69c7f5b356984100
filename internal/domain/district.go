package domain

import "log/slog"

// DistrictNumberSource records where a district number came from.
type DistrictNumberSource string

const (
	SourceProperty DistrictNumberSource = "property"
	SourceSuffix   DistrictNumberSource = "office_id_suffix"
	SourceNone     DistrictNumberSource = "none"
)

// DistrictNumber is the resolved two-digit number of a district.
type DistrictNumber struct {
	Value    string
	Source   DistrictNumberSource
	Suffix   string // last two characters of the office id
	Mismatch bool   // DISTRICT property disagrees with Suffix
}

// ResolveDistrictNumber derives a district's number. The DISTRICT property is
// canonical and is cross-checked against the office id suffix; when it is
// absent the suffix is used instead.
func ResolveDistrictNumber(d *DistrictFeature) DistrictNumber {
	suffix := ""
	if len(d.OfficeID) >= 2 {
		suffix = NormalizeDistrict(d.OfficeID[len(d.OfficeID)-2:])
	}
	if prop := NormalizeDistrict(d.District); prop != "" {
		return DistrictNumber{
			Value:    prop,
			Source:   SourceProperty,
			Suffix:   suffix,
			Mismatch: suffix != "" && prop != suffix,
		}
	}
	if suffix != "" {
		return DistrictNumber{Value: suffix, Source: SourceSuffix, Suffix: suffix}
	}
	return DistrictNumber{Source: SourceNone}
}

// Label returns the district's two-digit number. Features built without
// NewDistrictFeature are resolved on the fly.
func (d *DistrictFeature) Label() string {
	if d.Number.Source != "" {
		return d.Number.Value
	}
	return ResolveDistrictNumber(d).Value
}

// DistrictNumberOf returns d's district number and logs mismatches and
// suffix fallbacks. The store calls it once per feature at load.
func DistrictNumberOf(d *DistrictFeature, logger *slog.Logger) DistrictNumber {
	n := d.Number
	if n.Source == "" {
		n = ResolveDistrictNumber(d)
	}
	switch {
	case n.Mismatch:
		logger.Warn("district number disagrees with office id",
			"office_id", d.OfficeID,
			"district", n.Value,
			"suffix", n.Suffix,
		)
	case n.Source == SourceSuffix:
		logger.Info("district number taken from office id suffix",
			"office_id", d.OfficeID,
			"district", n.Value,
		)
	case n.Source == SourceNone:
		logger.Warn("district number unavailable", "office_id", d.OfficeID)
	}
	return n
}
