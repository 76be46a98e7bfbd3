package dtb

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecord_RowComposition(t *testing.T) {
	group := &Group{Name: Some("group_name"), Note: Some("group_note")}
	team := &Team{Name: Some("team_name"), Note: Some("team_note"), Group: group}
	player := &Player{
		RegistrationNumber: Some("123456789"),
		Name:               Some("player_name"),
		Surname:            Some("player_surname"),
		DateOfBirth:        Some("01.01.1900"),
		Note:               Some("player_note"),
		Team:               team,
	}

	tests := []struct {
		name string
		rec  Record
		kind Kind
		want []string
	}{
		{"group", group, KindGroup, []string{"group_name", "group_note"}},
		{"team", team, KindTeam, []string{"group_name", "group_note", "team_name", "team_note"}},
		{"player", player, KindPlayer, []string{
			"group_name", "group_note", "team_name", "team_note",
			"123456789", "player_name", "player_surname", "01.01.1900", "player_note",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.rec.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", tt.rec.Kind(), tt.kind)
			}
			if diff := cmp.Diff(tt.want, tt.rec.Row()); diff != "" {
				t.Errorf("Row() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecord_RowDoesNotAliasOwner(t *testing.T) {
	group := &Group{Name: Some("g"), Note: Some("n")}
	team := &Team{Name: Some("t"), Group: group}

	row := team.Row()
	row[0] = "changed"

	if group.Row()[0] != "g" {
		t.Errorf("mutating a team row must not affect the group row")
	}
}

func TestRecord_AbsentFieldsKeepColumns(t *testing.T) {
	player := &Player{
		Surname: Some("s"),
		Team:    &Team{Group: &Group{}},
	}

	want := []string{"", "", "", "", "", "", "s", "", ""}
	if diff := cmp.Diff(want, player.Row()); diff != "" {
		t.Errorf("Row() mismatch (-want +got):\n%s", diff)
	}
}

func TestHeader(t *testing.T) {
	want := []string{
		"Název, Oddíl", "Poznámka, Oddíl",
		"Název, Družstvo", "Poznámka, Družstvo",
		"Reg. číslo, Hráč", "Jméno, Hráč", "Příjmení, Hráč", "Datum nar., Hráč", "Poznámka, Hráč",
	}
	if diff := cmp.Diff(want, Header()); diff != "" {
		t.Errorf("Header() mismatch (-want +got):\n%s", diff)
	}

	if n := len(GroupHeader()) + len(TeamHeader()) + len(PlayerHeader()); n != len(Header()) {
		t.Errorf("per-kind headers add up to %d columns, full header has %d", n, len(Header()))
	}

	h := GroupHeader()
	h[0] = "changed"
	if GroupHeader()[0] != "Název, Oddíl" {
		t.Errorf("GroupHeader must return a copy")
	}
}

func TestField(t *testing.T) {
	if None().String() != "" || None().Valid {
		t.Errorf("None() should be absent and render empty")
	}
	if f := Some(""); !f.Valid || f.String() != "" {
		t.Errorf("Some(\"\") should be present and render empty")
	}
	if None() == Some("") {
		t.Errorf("absent and empty fields must differ")
	}
	if got := Some("x").GoString(); got != `"x"` {
		t.Errorf("GoString() = %s, want \"x\"", got)
	}
}
