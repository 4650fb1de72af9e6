package carriers

import (
	"context"
	"errors"

	"github.com/gestrans/gestrans-backend/pkg/db"
	"github.com/gestrans/gestrans-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// sqlStateInvalidText is raised by Postgres when an id is not a valid uuid.
const sqlStateInvalidText = "22P02"

// Repository stores carriers in the transportadores table through gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to carrier operations.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) ListAll(ctx context.Context) ([]Carrier, error) {
	var rows []models.Carrier
	if err := r.db.WithContext(ctx).Order("nome ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.classify(OpList, "", err)
	}
	out := make([]Carrier, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Carrier, error) {
	var row models.Carrier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, r.classify(OpGet, id, err)
	}
	out := fromModel(&row)
	return &out, nil
}

func (r *Repository) Insert(ctx context.Context, f Fields) (*Carrier, error) {
	row := toModel(uuid.NewString(), f)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, r.classify(OpInsert, "", err)
	}
	out := fromModel(row)
	return &out, nil
}

// Update overwrites every caller-controlled column of the row.
func (r *Repository) Update(ctx context.Context, id string, f Fields) (*Carrier, error) {
	row := toModel(id, f)
	res := r.db.WithContext(ctx).
		Model(&models.Carrier{}).
		Where("id = ?", id).
		Select(updatableColumns).
		Updates(row)
	if res.Error != nil {
		return nil, r.classify(OpUpdate, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundError(OpUpdate, id)
	}
	return r.reload(ctx, OpUpdate, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Carrier{})
	if res.Error != nil {
		return r.classify(OpDelete, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundError(OpDelete, id)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return transportError(OpPing, "", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return transportError(OpPing, "", err)
	}
	return nil
}

func (r *Repository) reload(ctx context.Context, op, id string) (*Carrier, error) {
	var row models.Carrier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, r.classify(op, id, err)
	}
	out := fromModel(&row)
	return &out, nil
}

func (r *Repository) classify(op, id string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFoundError(op, id)
	case id != "" && db.SQLState(err) == sqlStateInvalidText:
		return notFoundError(op, id)
	case db.IsConstraintViolation(err):
		return rejectedError(op, id, err)
	default:
		return transportError(op, id, err)
	}
}

var updatableColumns = []string{
	FieldNIF, FieldNome, FieldTipo, FieldTelefone, FieldTelemovel, FieldEmail,
	FieldContactoPessoa, FieldMorada, FieldCodigoPostal, FieldLocalidade, FieldPais,
	FieldAtivo, FieldObservacoes, FieldAmbito, FieldModalidades, FieldTipoServico,
	FieldTipoCarga, FieldZonaCobertura, FieldOutrasZonas, "updated_at",
}

func toModel(id string, f Fields) *models.Carrier {
	return &models.Carrier{
		ID:             id,
		NIF:            f.NIF,
		Nome:           f.Nome,
		Tipo:           f.Tipo,
		Telefone:       f.Telefone,
		Telemovel:      f.Telemovel,
		Email:          f.Email,
		ContactoPessoa: f.ContactoPessoa,
		Morada:         f.Morada,
		CodigoPostal:   f.CodigoPostal,
		Localidade:     f.Localidade,
		Pais:           f.Pais,
		Ativo:          f.Ativo,
		Observacoes:    f.Observacoes,
		Ambito:         pq.StringArray(cloneSet(f.Ambito)),
		Modalidades:    pq.StringArray(cloneSet(f.Modalidades)),
		TipoServico:    pq.StringArray(cloneSet(f.TipoServico)),
		TipoCarga:      pq.StringArray(cloneSet(f.TipoCarga)),
		ZonaCobertura:  pq.StringArray(cloneSet(f.ZonaCobertura)),
		OutrasZonas:    f.OutrasZonas,
	}
}

func fromModel(row *models.Carrier) Carrier {
	created := row.CreatedAt
	updated := row.UpdatedAt
	return Carrier{
		ID: row.ID,
		Fields: Fields{
			NIF:            row.NIF,
			Nome:           row.Nome,
			Tipo:           row.Tipo,
			Telefone:       row.Telefone,
			Telemovel:      row.Telemovel,
			Email:          row.Email,
			ContactoPessoa: row.ContactoPessoa,
			Morada:         row.Morada,
			CodigoPostal:   row.CodigoPostal,
			Localidade:     row.Localidade,
			Pais:           row.Pais,
			Ativo:          row.Ativo,
			Observacoes:    row.Observacoes,
			Ambito:         cloneSet(row.Ambito),
			Modalidades:    cloneSet(row.Modalidades),
			TipoServico:    cloneSet(row.TipoServico),
			TipoCarga:      MigrateCargoTypes(row.TipoCarga),
			ZonaCobertura:  cloneSet(row.ZonaCobertura),
			OutrasZonas:    row.OutrasZonas,
		},
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}
