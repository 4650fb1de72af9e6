package models

import (
	"time"

	"github.com/lib/pq"
)

// Carrier is the row shape of the transportadores table.
type Carrier struct {
	ID             string         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NIF            string         `gorm:"column:nif;not null"`
	Nome           string         `gorm:"column:nome;not null;index:transportadores_nome_idx"`
	Tipo           string         `gorm:"column:tipo;not null"`
	Telefone       string         `gorm:"column:telefone"`
	Telemovel      string         `gorm:"column:telemovel"`
	Email          string         `gorm:"column:email"`
	ContactoPessoa string         `gorm:"column:contactopessoa"`
	Morada         string         `gorm:"column:morada"`
	CodigoPostal   string         `gorm:"column:codigopostal"`
	Localidade     string         `gorm:"column:localidade"`
	Pais           string         `gorm:"column:pais"`
	Ativo          bool           `gorm:"column:ativo;not null"`
	Observacoes    string         `gorm:"column:observacoes"`
	Ambito         pq.StringArray `gorm:"column:ambito;type:text[]"`
	Modalidades    pq.StringArray `gorm:"column:modalidades;type:text[]"`
	TipoServico    pq.StringArray `gorm:"column:tiposervico;type:text[]"`
	TipoCarga      pq.StringArray `gorm:"column:tipocarga;type:text[]"`
	ZonaCobertura  pq.StringArray `gorm:"column:zonacobertura;type:text[]"`
	OutrasZonas    string         `gorm:"column:outraszonas"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Carrier) TableName() string {
	return "transportadores"
}
