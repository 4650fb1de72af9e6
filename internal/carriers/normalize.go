package carriers

import (
	"strings"

	"github.com/gestrans/gestrans-backend/pkg/enums"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NewDraft returns the defaulted record the add form starts from.
func NewDraft() Fields {
	return Fields{
		Tipo:          string(enums.CarrierKindTransportador),
		Pais:          defaultCountry,
		Ativo:         true,
		Ambito:        []string{},
		Modalidades:   []string{},
		TipoServico:   []string{},
		TipoCarga:     []string{},
		ZonaCobertura: []string{},
	}
}

// legacyCargoTypes maps the cargo vocabulary of earlier releases onto the current one.
// Keep in sync with the tipocarga data migration.
var legacyCargoTypes = map[string]string{
	"Palete":           string(enums.CargoTypeOutros),
	"Caixa":            string(enums.CargoTypeOutros),
	"Cargas a granel":  string(enums.CargoTypeOutros),
	"Cargas líquidas":  string(enums.CargoTypeLiquidos),
	"Cargas volumosas": string(enums.CargoTypeOutros),
}

// MigrateCargoTypes rewrites legacy cargo values to the current vocabulary,
// dropping the repeats the mapping can produce. Other values pass through.
func MigrateCargoTypes(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if mapped, ok := legacyCargoTypes[v]; ok {
			v = mapped
		}
		out = Toggle(out, v, true)
	}
	return out
}

// Normalize trims text, upper-cases the name and address fields, fills the
// tipo and pais defaults, migrates legacy cargo values and replaces nil sets
// with empty ones.
func Normalize(f Fields) Fields {
	out := f.Clone()
	out.NIF = strings.TrimSpace(out.NIF)
	out.Nome = upper(strings.TrimSpace(out.Nome))
	out.Tipo = strings.TrimSpace(out.Tipo)
	out.Telefone = strings.TrimSpace(out.Telefone)
	out.Telemovel = strings.TrimSpace(out.Telemovel)
	out.Email = strings.TrimSpace(out.Email)
	out.ContactoPessoa = strings.TrimSpace(out.ContactoPessoa)
	out.Morada = upper(strings.TrimSpace(out.Morada))
	out.CodigoPostal = strings.TrimSpace(out.CodigoPostal)
	out.Localidade = upper(strings.TrimSpace(out.Localidade))
	out.Pais = upper(strings.TrimSpace(out.Pais))
	out.Observacoes = strings.TrimSpace(out.Observacoes)
	out.OutrasZonas = strings.TrimSpace(out.OutrasZonas)
	out.TipoCarga = MigrateCargoTypes(out.TipoCarga)

	if out.Tipo == "" {
		out.Tipo = string(enums.CarrierKindTransportador)
	}
	if out.Pais == "" {
		out.Pais = defaultCountry
	}
	return out
}

// upper applies Portuguese casing rules. Casers are stateful, so one is built per call.
func upper(s string) string {
	return cases.Upper(language.Portuguese).String(s)
}
