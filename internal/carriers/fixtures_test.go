package carriers

import "github.com/gestrans/gestrans-backend/pkg/enums"

func validFields(nome string) Fields {
	f := NewDraft()
	f.NIF = "501234567"
	f.Nome = nome
	f.Telefone = "+35121000000"
	f.Email = "geral@example.pt"
	f.Morada = "Rua do Porto, 10"
	f.Localidade = "Lisboa"
	f.Ambito = []string{string(enums.ScopeNacional)}
	f.Modalidades = []string{string(enums.ModalityRodoviario)}
	f.TipoServico = []string{string(enums.ServiceTypeFTL)}
	f.TipoCarga = []string{string(enums.CargoTypeGeral)}
	f.ZonaCobertura = []string{string(enums.ZonePortugal)}
	return f
}

func carrier(id, nome, tipo string, ativo bool, zones ...string) Carrier {
	f := validFields(nome)
	f.Tipo = tipo
	f.Ativo = ativo
	f.ZonaCobertura = zones
	return Carrier{ID: id, Fields: f}
}

func ids(records []Carrier) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}
