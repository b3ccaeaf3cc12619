package schema

import "testing"

func TestSnapshotFilterIsCaseInsensitive(t *testing.T) {
	snapshot := Snapshot{
		DatabaseName: "pagila",
		Tables: []Table{
			{Name: "actor"}, {Name: "film"}, {Name: "film_actor"}, {Name: "payment"},
		},
	}

	filtered := snapshot.Filter("FILM")
	names := filtered.TableNames()
	if len(names) != 2 || names[0] != "film" || names[1] != "film_actor" {
		t.Fatalf("Filter() names = %v", names)
	}
	if filtered.DatabaseName != "pagila" {
		t.Fatalf("DatabaseName = %q", filtered.DatabaseName)
	}
	if got := snapshot.Filter("  "); len(got.Tables) != 4 {
		t.Fatalf("empty filter kept %d tables", len(got.Tables))
	}
}

func TestSnapshotTableLookup(t *testing.T) {
	snapshot := Snapshot{Tables: []Table{{Name: "actor", Columns: []Column{{Name: "actor_id"}}}}}
	if _, ok := snapshot.Table("film"); ok {
		t.Fatal("unexpected table film")
	}
	table, ok := snapshot.Table("actor")
	if !ok || len(table.Columns) != 1 {
		t.Fatalf("Table(actor) = %#v, %v", table, ok)
	}
}

func TestColumnRequirement(t *testing.T) {
	if got := (Column{Nullable: false}).Requirement(); got != "Required" {
		t.Fatalf("Requirement() = %q", got)
	}
	if got := (Column{Nullable: true}).Requirement(); got != "Optional" {
		t.Fatalf("Requirement() = %q", got)
	}
}
