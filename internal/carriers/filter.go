package carriers

import "github.com/gestrans/gestrans-backend/pkg/enums"

// Criteria narrows the carrier list. A value of enums.FilterAll, or an empty
// value, disables that dimension.
type Criteria struct {
	Kind            string `json:"tipo"`
	ServiceType     string `json:"tipo_servico"`
	OriginZone      string `json:"origem"`
	DestinationZone string `json:"destino"`
}

// AllCriteria returns criteria that only hide inactive records.
func AllCriteria() Criteria {
	return Criteria{
		Kind:            enums.FilterAll,
		ServiceType:     enums.FilterAll,
		OriginZone:      enums.FilterAll,
		DestinationZone: enums.FilterAll,
	}
}

// Normalized replaces empty dimensions with the sentinel.
func (c Criteria) Normalized() Criteria {
	return Criteria{
		Kind:            orAll(c.Kind),
		ServiceType:     orAll(c.ServiceType),
		OriginZone:      orAll(c.OriginZone),
		DestinationZone: orAll(c.DestinationZone),
	}
}

// Filter returns the active records matching every enabled criterion, in input order.
// Origin and destination are both tested against the same coverage set.
func Filter(records []Carrier, c Criteria) []Carrier {
	c = c.Normalized()
	out := make([]Carrier, 0, len(records))
	for _, rec := range records {
		if matches(rec, c) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec Carrier, c Criteria) bool {
	if !rec.Ativo {
		return false
	}
	if c.Kind != enums.FilterAll && rec.Tipo != c.Kind {
		return false
	}
	if c.ServiceType != enums.FilterAll && !contains(rec.TipoServico, c.ServiceType) {
		return false
	}
	if c.OriginZone != enums.FilterAll && !contains(rec.ZonaCobertura, c.OriginZone) {
		return false
	}
	if c.DestinationZone != enums.FilterAll && !contains(rec.ZonaCobertura, c.DestinationZone) {
		return false
	}
	return true
}

func orAll(v string) string {
	if v == "" {
		return enums.FilterAll
	}
	return v
}
