package carriers

// Patch is a partial update. Nil members leave the stored value untouched.
type Patch struct {
	NIF            *string   `json:"nif,omitempty"`
	Nome           *string   `json:"nome,omitempty"`
	Tipo           *string   `json:"tipo,omitempty"`
	Telefone       *string   `json:"telefone,omitempty"`
	Telemovel      *string   `json:"telemovel,omitempty"`
	Email          *string   `json:"email,omitempty"`
	ContactoPessoa *string   `json:"contactopessoa,omitempty"`
	Morada         *string   `json:"morada,omitempty"`
	CodigoPostal   *string   `json:"codigopostal,omitempty"`
	Localidade     *string   `json:"localidade,omitempty"`
	Pais           *string   `json:"pais,omitempty"`
	Ativo          *bool     `json:"ativo,omitempty"`
	Observacoes    *string   `json:"observacoes,omitempty"`
	Ambito         *[]string `json:"ambito,omitempty"`
	Modalidades    *[]string `json:"modalidades,omitempty"`
	TipoServico    *[]string `json:"tiposervico,omitempty"`
	TipoCarga      *[]string `json:"tipocarga,omitempty"`
	ZonaCobertura  *[]string `json:"zonacobertura,omitempty"`
	OutrasZonas    *string   `json:"outraszonas,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == (Patch{})
}

// Apply merges the patch onto f and returns the result. f is not modified.
func (p Patch) Apply(f Fields) Fields {
	out := f.Clone()
	setString(&out.NIF, p.NIF)
	setString(&out.Nome, p.Nome)
	setString(&out.Tipo, p.Tipo)
	setString(&out.Telefone, p.Telefone)
	setString(&out.Telemovel, p.Telemovel)
	setString(&out.Email, p.Email)
	setString(&out.ContactoPessoa, p.ContactoPessoa)
	setString(&out.Morada, p.Morada)
	setString(&out.CodigoPostal, p.CodigoPostal)
	setString(&out.Localidade, p.Localidade)
	setString(&out.Pais, p.Pais)
	setString(&out.Observacoes, p.Observacoes)
	setString(&out.OutrasZonas, p.OutrasZonas)
	if p.Ativo != nil {
		out.Ativo = *p.Ativo
	}
	setSet(&out.Ambito, p.Ambito)
	setSet(&out.Modalidades, p.Modalidades)
	setSet(&out.TipoServico, p.TipoServico)
	setSet(&out.TipoCarga, p.TipoCarga)
	setSet(&out.ZonaCobertura, p.ZonaCobertura)
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setSet(dst *[]string, v *[]string) {
	if v != nil {
		*dst = cloneSet(*v)
	}
}
