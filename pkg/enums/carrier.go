package enums

import "fmt"

// FilterAll is the sentinel criterion that disables a filter dimension.
const FilterAll = "Todos"

// CarrierKind distinguishes carriers from freight forwarders.
type CarrierKind string

const (
	CarrierKindTransportador CarrierKind = "Transportador"
	CarrierKindTransitario   CarrierKind = "Transitário"
)

var validCarrierKinds = []CarrierKind{
	CarrierKindTransportador,
	CarrierKindTransitario,
}

// String implements fmt.Stringer.
func (k CarrierKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known CarrierKind.
func (k CarrierKind) IsValid() bool {
	return isOneOf(k, validCarrierKinds)
}

// ParseCarrierKind converts raw input into a CarrierKind.
func ParseCarrierKind(value string) (CarrierKind, error) {
	for _, candidate := range validCarrierKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid carrier kind %q", value)
}

// Scope is a value of the ambito set.
type Scope string

const (
	ScopeNacional      Scope = "Nacional"
	ScopeInternacional Scope = "Internacional"
)

var validScopes = []Scope{ScopeNacional, ScopeInternacional}

func (s Scope) String() string { return string(s) }
func (s Scope) IsValid() bool  { return isOneOf(s, validScopes) }

// Modality is a value of the modalidades set.
type Modality string

const (
	ModalityRodoviario  Modality = "Rodoviário"
	ModalityMaritimo    Modality = "Marítimo"
	ModalityAereo       Modality = "Aéreo"
	ModalityFerroviario Modality = "Ferroviário"
)

var validModalities = []Modality{
	ModalityRodoviario,
	ModalityMaritimo,
	ModalityAereo,
	ModalityFerroviario,
}

func (m Modality) String() string { return string(m) }
func (m Modality) IsValid() bool  { return isOneOf(m, validModalities) }

// ServiceType is a value of the tiposervico set.
type ServiceType string

const (
	ServiceTypeFTL             ServiceType = "FTL"
	ServiceTypeLTL             ServiceType = "LTL"
	ServiceTypeGroupage        ServiceType = "Groupage"
	ServiceTypeExpresso        ServiceType = "Expresso"
	ServiceTypeCargasEspeciais ServiceType = "Cargas Especiais"
)

var validServiceTypes = []ServiceType{
	ServiceTypeFTL,
	ServiceTypeLTL,
	ServiceTypeGroupage,
	ServiceTypeExpresso,
	ServiceTypeCargasEspeciais,
}

func (s ServiceType) String() string { return string(s) }
func (s ServiceType) IsValid() bool  { return isOneOf(s, validServiceTypes) }

// CargoType is a value of the tipocarga set.
type CargoType string

const (
	CargoTypeGeral                CargoType = "Geral"
	CargoTypeFrigorifico          CargoType = "Frigorífico"
	CargoTypeMercadoriasPerigosas CargoType = "Mercadorias Perigosas"
	CargoTypeConteudoSeco         CargoType = "Conteúdo Seco"
	CargoTypeLiquidos             CargoType = "Líquidos"
	CargoTypeOutros               CargoType = "Outros"
)

var validCargoTypes = []CargoType{
	CargoTypeGeral,
	CargoTypeFrigorifico,
	CargoTypeMercadoriasPerigosas,
	CargoTypeConteudoSeco,
	CargoTypeLiquidos,
	CargoTypeOutros,
}

func (c CargoType) String() string { return string(c) }
func (c CargoType) IsValid() bool  { return isOneOf(c, validCargoTypes) }

// CoverageZone is a value of the zonacobertura set.
type CoverageZone string

const (
	ZonePortugal   CoverageZone = "Portugal"
	ZoneEspanha    CoverageZone = "Espanha"
	ZoneFranca     CoverageZone = "França"
	ZoneAlemanha   CoverageZone = "Alemanha"
	ZoneItalia     CoverageZone = "Itália"
	ZoneBelgica    CoverageZone = "Bélgica"
	ZoneLuxemburgo CoverageZone = "Luxemburgo"
	ZoneHolanda    CoverageZone = "Holanda"
	ZoneReinoUnido CoverageZone = "Reino Unido"
	ZoneIrlanda    CoverageZone = "Irlanda"
)

var validCoverageZones = []CoverageZone{
	ZonePortugal,
	ZoneEspanha,
	ZoneFranca,
	ZoneAlemanha,
	ZoneItalia,
	ZoneBelgica,
	ZoneLuxemburgo,
	ZoneHolanda,
	ZoneReinoUnido,
	ZoneIrlanda,
}

func (z CoverageZone) String() string { return string(z) }
func (z CoverageZone) IsValid() bool  { return isOneOf(z, validCoverageZones) }

// Values helpers return the vocabularies in display order.
func CarrierKindValues() []string  { return toStrings(validCarrierKinds) }
func ScopeValues() []string        { return toStrings(validScopes) }
func ModalityValues() []string     { return toStrings(validModalities) }
func ServiceTypeValues() []string  { return toStrings(validServiceTypes) }
func CargoTypeValues() []string    { return toStrings(validCargoTypes) }
func CoverageZoneValues() []string { return toStrings(validCoverageZones) }

func isOneOf[T ~string](value T, valid []T) bool {
	for _, candidate := range valid {
		if candidate == value {
			return true
		}
	}
	return false
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
