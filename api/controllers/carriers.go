package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gestrans/gestrans-backend/api/responses"
	"github.com/gestrans/gestrans-backend/api/validators"
	"github.com/gestrans/gestrans-backend/internal/carriers"
	pkgerrors "github.com/gestrans/gestrans-backend/pkg/errors"
	"github.com/gestrans/gestrans-backend/pkg/logger"
)

const maxCriterionLen = 64

// carrierPayload is the body of create and full-update requests.
type carrierPayload struct {
	NIF            string   `json:"nif"`
	Nome           string   `json:"nome"`
	Tipo           string   `json:"tipo"`
	Telefone       string   `json:"telefone"`
	Telemovel      string   `json:"telemovel"`
	Email          string   `json:"email"`
	ContactoPessoa string   `json:"contactopessoa"`
	Morada         string   `json:"morada"`
	CodigoPostal   string   `json:"codigopostal"`
	Localidade     string   `json:"localidade"`
	Pais           string   `json:"pais"`
	Ativo          *bool    `json:"ativo"`
	Observacoes    string   `json:"observacoes"`
	Ambito         []string `json:"ambito"`
	Modalidades    []string `json:"modalidades"`
	TipoServico    []string `json:"tiposervico"`
	TipoCarga      []string `json:"tipocarga"`
	ZonaCobertura  []string `json:"zonacobertura"`
	OutrasZonas    string   `json:"outraszonas"`
}

// toFields maps the payload onto a draft, so omitted members keep the add-form defaults.
// Full updates must carry ativo; see CarrierUpdate.
func (p carrierPayload) toFields() carriers.Fields {
	f := carriers.NewDraft()
	f.NIF = p.NIF
	f.Nome = p.Nome
	f.Tipo = p.Tipo
	f.Telefone = p.Telefone
	f.Telemovel = p.Telemovel
	f.Email = p.Email
	f.ContactoPessoa = p.ContactoPessoa
	f.Morada = p.Morada
	f.CodigoPostal = p.CodigoPostal
	f.Localidade = p.Localidade
	f.Pais = p.Pais
	if p.Ativo != nil {
		f.Ativo = *p.Ativo
	}
	f.Observacoes = p.Observacoes
	f.OutrasZonas = p.OutrasZonas
	for _, set := range []struct {
		dst *[]string
		src []string
	}{
		{&f.Ambito, p.Ambito},
		{&f.Modalidades, p.Modalidades},
		{&f.TipoServico, p.TipoServico},
		{&f.TipoCarga, p.TipoCarga},
		{&f.ZonaCobertura, p.ZonaCobertura},
	} {
		if set.src != nil {
			*set.dst = set.src
		}
	}
	return f
}

// CarrierList returns the filtered active carriers, or every record with ?all=true.
func CarrierList(svc carriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "carrier service unavailable"))
			return
		}

		all, err := validators.ParseQueryBool(r, "all", false)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var records []carriers.Carrier
		if all {
			records, err = svc.ListAll(ctx)
		} else {
			records, err = svc.List(ctx, criteriaFromQuery(r))
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// CarrierOptions returns the form vocabularies.
func CarrierOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, carriers.FormOptions())
	}
}

func CarrierGet(svc carriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := carrierScope(r, logg)
		rec, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// CarrierCreate validates and inserts a new carrier.
func CarrierCreate(svc carriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload carrierPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rec, err := svc.Create(ctx, payload.toFields())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithCarrierID(ctx, rec.ID), "carrier.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rec)
	}
}

// CarrierUpdate replaces every field of the carrier.
func CarrierUpdate(svc carriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := carrierScope(r, logg)
		var payload carrierPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.Ativo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ativo is required on a full update").
				WithDetails(carriers.FieldErrors{carriers.FieldAtivo: "is required"}))
			return
		}
		rec, err := svc.Update(ctx, id, payload.toFields())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// CarrierPatch merges the provided members onto the stored carrier.
func CarrierPatch(svc carriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := carrierScope(r, logg)
		var patch carriers.Patch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rec, err := svc.Patch(ctx, id, patch)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// CarrierDeactivate hides the carrier from filtered views without deleting it.
func CarrierDeactivate(svc carriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := carrierScope(r, logg)
		rec, err := svc.Deactivate(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(ctx, "carrier.deactivated")
		}
		responses.WriteSuccess(w, rec)
	}
}

func CarrierDelete(svc carriers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, id := carrierScope(r, logg)
		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(ctx, "carrier.deleted")
		}
		responses.WriteNoContent(w)
	}
}

func carrierScope(r *http.Request, logg *logger.Logger) (ctx context.Context, id string) {
	ctx = r.Context()
	id = strings.TrimSpace(chi.URLParam(r, "carrierId"))
	if logg != nil && id != "" {
		ctx = logg.WithCarrierID(ctx, id)
	}
	return ctx, id
}

func criteriaFromQuery(r *http.Request) carriers.Criteria {
	return carriers.Criteria{
		Kind:            validators.QueryValue(r, "tipo", maxCriterionLen),
		ServiceType:     validators.QueryValue(r, "tipo_servico", maxCriterionLen),
		OriginZone:      validators.QueryValue(r, "origem", maxCriterionLen),
		DestinationZone: validators.QueryValue(r, "destino", maxCriterionLen),
	}
}
