package carriers

import (
	"fmt"
	"time"

	"github.com/gestrans/gestrans-backend/pkg/enums"
)

// Canonical field names. They double as JSON keys and column names.
const (
	FieldNIF            = "nif"
	FieldNome           = "nome"
	FieldTipo           = "tipo"
	FieldTelefone       = "telefone"
	FieldTelemovel      = "telemovel"
	FieldEmail          = "email"
	FieldContactoPessoa = "contactopessoa"
	FieldMorada         = "morada"
	FieldCodigoPostal   = "codigopostal"
	FieldLocalidade     = "localidade"
	FieldPais           = "pais"
	FieldAtivo          = "ativo"
	FieldObservacoes    = "observacoes"
	FieldAmbito         = "ambito"
	FieldModalidades    = "modalidades"
	FieldTipoServico    = "tiposervico"
	FieldTipoCarga      = "tipocarga"
	FieldZonaCobertura  = "zonacobertura"
	FieldOutrasZonas    = "outraszonas"
)

const defaultCountry = "PORTUGAL"

// Fields holds every caller-controlled attribute of a carrier record.
type Fields struct {
	NIF            string   `json:"nif" validate:"required,nif"`
	Nome           string   `json:"nome" validate:"nonblank"`
	Tipo           string   `json:"tipo" validate:"required,carrier_kind"`
	Telefone       string   `json:"telefone" validate:"max=12"`
	Telemovel      string   `json:"telemovel" validate:"max=12"`
	Email          string   `json:"email" validate:"omitempty,email"`
	ContactoPessoa string   `json:"contactopessoa"`
	Morada         string   `json:"morada"`
	CodigoPostal   string   `json:"codigopostal"`
	Localidade     string   `json:"localidade"`
	Pais           string   `json:"pais"`
	Ativo          bool     `json:"ativo"`
	Observacoes    string   `json:"observacoes"`
	Ambito         []string `json:"ambito" validate:"unique,dive,ambito"`
	Modalidades    []string `json:"modalidades" validate:"unique,dive,modalidade"`
	TipoServico    []string `json:"tiposervico" validate:"unique,dive,tiposervico"`
	TipoCarga      []string `json:"tipocarga" validate:"unique,dive,tipocarga"`
	ZonaCobertura  []string `json:"zonacobertura" validate:"unique,dive,zonacobertura"`
	OutrasZonas    string   `json:"outraszonas"`
}

// Carrier is a persisted record. ID is opaque and assigned by the store.
type Carrier struct {
	ID string `json:"id"`
	Fields
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Options lists the vocabularies the record form offers.
type Options struct {
	FilterAll     string   `json:"filter_all"`
	Tipos         []string `json:"tipos"`
	Ambito        []string `json:"ambito"`
	Modalidades   []string `json:"modalidades"`
	TipoServico   []string `json:"tiposervico"`
	TipoCarga     []string `json:"tipocarga"`
	ZonaCobertura []string `json:"zonacobertura"`
}

// FormOptions returns the vocabularies in display order.
func FormOptions() Options {
	return Options{
		FilterAll:     enums.FilterAll,
		Tipos:         enums.CarrierKindValues(),
		Ambito:        enums.ScopeValues(),
		Modalidades:   enums.ModalityValues(),
		TipoServico:   enums.ServiceTypeValues(),
		TipoCarga:     enums.CargoTypeValues(),
		ZonaCobertura: enums.CoverageZoneValues(),
	}
}

// vocabulary returns the allowed values of a set field, or false if field is not a set.
func vocabulary(field string) ([]string, bool) {
	switch field {
	case FieldAmbito:
		return enums.ScopeValues(), true
	case FieldModalidades:
		return enums.ModalityValues(), true
	case FieldTipoServico:
		return enums.ServiceTypeValues(), true
	case FieldTipoCarga:
		return enums.CargoTypeValues(), true
	case FieldZonaCobertura:
		return enums.CoverageZoneValues(), true
	}
	return nil, false
}

// Clone returns a copy that shares no slices with f.
func (f Fields) Clone() Fields {
	out := f
	out.Ambito = cloneSet(f.Ambito)
	out.Modalidades = cloneSet(f.Modalidades)
	out.TipoServico = cloneSet(f.TipoServico)
	out.TipoCarga = cloneSet(f.TipoCarga)
	out.ZonaCobertura = cloneSet(f.ZonaCobertura)
	return out
}

// Clone returns a deep copy of the record.
func (c Carrier) Clone() Carrier {
	out := c
	out.Fields = c.Fields.Clone()
	return out
}

// Set assigns a text field by its canonical name and re-normalizes the casing
// of that field. ativo accepts "true"/"false".
func (f *Fields) Set(field, value string) error {
	switch field {
	case FieldNIF:
		f.NIF = value
	case FieldNome:
		f.Nome = upper(value)
	case FieldTipo:
		f.Tipo = value
	case FieldTelefone:
		f.Telefone = value
	case FieldTelemovel:
		f.Telemovel = value
	case FieldEmail:
		f.Email = value
	case FieldContactoPessoa:
		f.ContactoPessoa = value
	case FieldMorada:
		f.Morada = upper(value)
	case FieldCodigoPostal:
		f.CodigoPostal = value
	case FieldLocalidade:
		f.Localidade = upper(value)
	case FieldPais:
		f.Pais = upper(value)
	case FieldObservacoes:
		f.Observacoes = value
	case FieldOutrasZonas:
		f.OutrasZonas = value
	case FieldAtivo:
		switch value {
		case "true":
			f.Ativo = true
		case "false":
			f.Ativo = false
		default:
			return fmt.Errorf("ativo must be true or false, got %q", value)
		}
	default:
		if _, ok := vocabulary(field); ok {
			return fmt.Errorf("%s is a multi-select field; use Toggle", field)
		}
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Toggle adds (checked) or removes (unchecked) value from the named set field.
func (f *Fields) Toggle(field, value string, checked bool) error {
	allowed, ok := vocabulary(field)
	if !ok {
		return fmt.Errorf("%q is not a multi-select field", field)
	}
	set := f.set(field)
	// Values outside the vocabulary may only be unchecked.
	if !contains(allowed, value) && (checked || !contains(*set, value)) {
		return fmt.Errorf("%q is not a valid %s value", value, field)
	}
	*set = Toggle(*set, value, checked)
	return nil
}

// Replace sets the named set field to values in order, dropping repeats.
func (f *Fields) Replace(field string, values []string) error {
	allowed, ok := vocabulary(field)
	if !ok {
		return fmt.Errorf("%q is not a multi-select field", field)
	}
	next := []string{}
	for _, v := range values {
		if !contains(allowed, v) {
			return fmt.Errorf("%q is not a valid %s value", v, field)
		}
		next = Toggle(next, v, true)
	}
	*f.set(field) = next
	return nil
}

func (f *Fields) set(field string) *[]string {
	switch field {
	case FieldAmbito:
		return &f.Ambito
	case FieldModalidades:
		return &f.Modalidades
	case FieldTipoServico:
		return &f.TipoServico
	case FieldTipoCarga:
		return &f.TipoCarga
	case FieldZonaCobertura:
		return &f.ZonaCobertura
	}
	return nil
}

func cloneSet(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
