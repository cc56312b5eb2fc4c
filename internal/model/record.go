package model

import "strings"

// DisasterType classifies the event a report describes
type DisasterType string

const (
	DisasterEarthquake DisasterType = "earthquake"
	DisasterFlood      DisasterType = "flood"
	DisasterHurricane  DisasterType = "hurricane"
	DisasterWildfire   DisasterType = "wildfire"
	DisasterTsunami    DisasterType = "tsunami"
	DisasterTornado    DisasterType = "tornado"
	DisasterLandslide  DisasterType = "landslide"
	DisasterDrought    DisasterType = "drought"
	DisasterOther      DisasterType = "other"
	DisasterUnknown    DisasterType = "unknown"
)

// NeedType classifies the primary kind of help requested
type NeedType string

const (
	NeedMedical     NeedType = "medical"
	NeedFood        NeedType = "food"
	NeedWater       NeedType = "water"
	NeedShelter     NeedType = "shelter"
	NeedRescue      NeedType = "rescue"
	NeedEvacuation  NeedType = "evacuation"
	NeedSupplies    NeedType = "supplies"
	NeedInformation NeedType = "information"
	NeedOther       NeedType = "other"
	NeedUnknown     NeedType = "unknown"
)

// Urgency is the triage level assigned by the classifier
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// VulnerableGroup names a population needing special attention
type VulnerableGroup string

const (
	GroupChildren VulnerableGroup = "children"
	GroupElderly  VulnerableGroup = "elderly"
	GroupDisabled VulnerableGroup = "disabled"
	GroupPregnant VulnerableGroup = "pregnant"
	GroupInjured  VulnerableGroup = "injured"
)

// DefaultConfidence is used when the classifier did not report one
const DefaultConfidence = 0.5

// Location is the place a report refers to. Coordinates are pointers so a
// missing value is distinct from zero.
type Location struct {
	RawText   string   `json:"raw_text,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	City      string   `json:"city,omitempty"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// HasNamedPlace reports whether a city or country was named
func (l *Location) HasNamedPlace() bool {
	if l == nil {
		return false
	}
	return strings.TrimSpace(l.City) != "" || strings.TrimSpace(l.Country) != ""
}

// ClassificationRecord is the structured form of a disaster report produced
// by the text classifier. The scoring engine only reads it.
type ClassificationRecord struct {
	RequestID      string `json:"request_id,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	SourcePlatform string `json:"source_platform,omitempty"`
	SourceLanguage string `json:"source_language,omitempty"`
	OriginalText   string `json:"original_text,omitempty"`
	NormalizedText string `json:"normalized_text,omitempty"`

	DisasterType DisasterType `json:"disaster_type,omitempty"`
	NeedType     NeedType     `json:"need_type,omitempty"`
	Urgency      Urgency      `json:"urgency,omitempty"`
	Confidence   *float64     `json:"confidence,omitempty"`

	Location         *Location         `json:"location,omitempty"`
	ContactInfo      string            `json:"contact_info,omitempty"`
	PeopleAffected   *int64            `json:"people_affected,omitempty"`
	VulnerableGroups []VulnerableGroup `json:"vulnerable_groups,omitempty"`
	Flags            []string          `json:"flags,omitempty"`
}

// ConfidenceOrDefault returns the classifier confidence, or DefaultConfidence
// when it is missing
func (r *ClassificationRecord) ConfidenceOrDefault() float64 {
	if r == nil || r.Confidence == nil {
		return DefaultConfidence
	}
	return *r.Confidence
}

// HasContact reports whether contact details were given
func (r *ClassificationRecord) HasContact() bool {
	return r != nil && strings.TrimSpace(r.ContactInfo) != ""
}

// HasImpactData reports whether the record carries a people count or
// vulnerable groups
func (r *ClassificationRecord) HasImpactData() bool {
	if r == nil {
		return false
	}
	if r.PeopleAffected != nil && *r.PeopleAffected > 0 {
		return true
	}
	return len(r.VulnerableGroups) > 0
}

// Clone returns a deep copy so callers can enrich a record without touching
// the original
func (r *ClassificationRecord) Clone() *ClassificationRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Confidence != nil {
		v := *r.Confidence
		c.Confidence = &v
	}
	if r.PeopleAffected != nil {
		v := *r.PeopleAffected
		c.PeopleAffected = &v
	}
	if r.Location != nil {
		loc := *r.Location
		if r.Location.Latitude != nil {
			v := *r.Location.Latitude
			loc.Latitude = &v
		}
		if r.Location.Longitude != nil {
			v := *r.Location.Longitude
			loc.Longitude = &v
		}
		c.Location = &loc
	}
	c.VulnerableGroups = append([]VulnerableGroup(nil), r.VulnerableGroups...)
	c.Flags = append([]string(nil), r.Flags...)
	return &c
}
