package carriers

import (
	"context"
	"reflect"
	"testing"
)

// runStoreContract checks the behavior every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("insert then list round-trips fields", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		in := validFields("ALFA TRANSPORTES")
		in.Tipo = "Transitário"
		in.Telemovel = "912345678"
		in.ContactoPessoa = "Maria"
		in.CodigoPostal = "1000-001"
		in.Observacoes = "cargas ao sábado"
		in.Modalidades = []string{"Marítimo", "Aéreo"}
		in.TipoCarga = []string{"Frigorífico", "Líquidos"}
		in.ZonaCobertura = []string{"Espanha", "Portugal"}
		in.OutrasZonas = "Marrocos"

		created, err := store.Insert(ctx, in)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if created.ID == "" {
			t.Fatal("expected store-assigned id")
		}

		all, err := store.ListAll(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected 1 record, got %d", len(all))
		}
		if all[0].ID != created.ID {
			t.Fatalf("id mismatch %q vs %q", all[0].ID, created.ID)
		}
		if !reflect.DeepEqual(all[0].Fields, in) {
			t.Fatalf("fields did not round-trip\nwant %+v\n got %+v", in, all[0].Fields)
		}
	})

	t.Run("list is ordered by nome and keeps inactive", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for _, nome := range []string{"GAMA", "ALFA", "BETA"} {
			f := validFields(nome)
			f.Ativo = nome != "BETA"
			if _, err := store.Insert(ctx, f); err != nil {
				t.Fatalf("insert %s: %v", nome, err)
			}
		}
		all, err := store.ListAll(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var names []string
		for _, rec := range all {
			names = append(names, rec.Nome)
		}
		if want := []string{"ALFA", "BETA", "GAMA"}; !reflect.DeepEqual(names, want) {
			t.Fatalf("expected %v, got %v", want, names)
		}
		if all[1].Ativo {
			t.Fatal("inactive record should be listed with ativo=false")
		}
		if got := Filter(all, AllCriteria()); len(got) != 2 {
			t.Fatalf("inactive record should be filtered out, got %d", len(got))
		}
	})

	t.Run("store rejects bad rows", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		noName := validFields("")
		if _, err := store.Insert(ctx, noName); !IsKind(err, KindRejected) {
			t.Fatalf("expected rejected for missing nome, got %v", err)
		}
		badNIF := validFields("ALFA")
		badNIF.NIF = "12AB"
		if _, err := store.Insert(ctx, badNIF); !IsKind(err, KindRejected) {
			t.Fatalf("expected rejected for bad nif, got %v", err)
		}
	})

	t.Run("update changes only the edited field", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		created, err := store.Insert(ctx, validFields("ALFA"))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}

		edited := created.Fields.Clone()
		edited.Tipo = "Transitário"
		updated, err := store.Update(ctx, created.ID, edited)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.ID != created.ID || updated.Tipo != "Transitário" {
			t.Fatalf("unexpected update result %+v", updated)
		}

		all, err := store.ListAll(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		want := created.Fields.Clone()
		want.Tipo = "Transitário"
		if len(all) != 1 || !reflect.DeepEqual(all[0].Fields, want) {
			t.Fatalf("unexpected stored record %+v", all)
		}
	})

	t.Run("get update delete report not found", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		missing := "00000000-0000-0000-0000-000000000000"

		if _, err := store.Get(ctx, missing); !IsKind(err, KindNotFound) {
			t.Fatalf("expected not found on get, got %v", err)
		}
		if _, err := store.Update(ctx, missing, validFields("ALFA")); !IsKind(err, KindNotFound) {
			t.Fatalf("expected not found on update, got %v", err)
		}
		if err := store.Delete(ctx, missing); !IsKind(err, KindNotFound) {
			t.Fatalf("expected not found on delete, got %v", err)
		}
	})

	t.Run("delete removes and get finds inactive", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		f := validFields("ALFA")
		f.Ativo = false
		created, err := store.Insert(ctx, f)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, err := store.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get inactive: %v", err)
		}
		if got.Ativo {
			t.Fatal("expected inactive record")
		}
		if err := store.Delete(ctx, created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := store.Get(ctx, created.ID); !IsKind(err, KindNotFound) {
			t.Fatalf("expected not found after delete, got %v", err)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := newStore(t).Ping(context.Background()); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}
