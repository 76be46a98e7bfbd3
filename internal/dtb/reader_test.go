package dtb

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustRead(t *testing.T, r *Reader, line string, mode Mode) Record {
	t.Helper()
	rec, err := r.Read(line, mode)
	if err != nil {
		t.Fatalf("Read(%q, %s) failed: %v", line, mode, err)
	}
	return rec
}

func TestReader_ReadOnePlayer(t *testing.T) {
	r := NewReader()

	group := mustRead(t, r, "group_name - group_note\n", Strict).(*Group)
	if diff := cmp.Diff(&Group{Name: Some("group_name"), Note: Some("group_note")}, group); diff != "" {
		t.Errorf("group mismatch (-want +got):\n%s", diff)
	}

	team := mustRead(t, r, "\tteam_name - team_note\n", Strict).(*Team)
	if team.Name != Some("team_name") || team.Note != Some("team_note") {
		t.Errorf("unexpected team fields: %s", team)
	}
	if team.Group != group {
		t.Errorf("team.Group = %p, want the group just read (%p)", team.Group, group)
	}

	player := mustRead(t, r, "\t\t123456789 - player_surname player_name, 01.01.1900 , player_note\n", Strict).(*Player)
	want := &Player{
		RegistrationNumber: Some("123456789"),
		Name:               Some("player_name"),
		Surname:            Some("player_surname"),
		DateOfBirth:        Some("01.01.1900"),
		Note:               Some("player_note"),
		Team:               team,
	}
	if diff := cmp.Diff(want, player); diff != "" {
		t.Errorf("player mismatch (-want +got):\n%s", diff)
	}
	if player.Team != team {
		t.Errorf("player.Team is not the team just read")
	}
}

func TestReader_RegistrationNumberKeepsLeadingZeros(t *testing.T) {
	r := NewReader()
	mustRead(t, r, "group_name - group_note\n", Strict)
	mustRead(t, r, "\tteam_name - team_note\n", Strict)

	player := mustRead(t, r, "\t\t000000001 - player_surname player_name, 01.01.1900 , player_note\n", Strict).(*Player)
	if player.RegistrationNumber != Some("000000001") {
		t.Errorf("registration number = %#v, want \"000000001\"", player.RegistrationNumber)
	}
}

func TestReader_GroupWhitespace(t *testing.T) {
	tests := []struct {
		line string
		name string
		note string
	}{
		{"group_name - group_note     \n", "group_name", "group_note     "},
		{"group_name -     group_note\n", "group_name", "    group_note"},
		{"group_name -     group_note     \n", "group_name", "    group_note     "},
		{"group_name     - group_note\n", "group_name    ", "group_note"},
		{"group_name     - group_note     \n", "group_name    ", "group_note     "},
		{"group_name     -     group_note     \n", "group_name    ", "    group_note     "},
		{"a - b - c\n", "a - b", "c"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			group := mustRead(t, NewReader(), tt.line, Strict).(*Group)
			if group.Name != Some(tt.name) {
				t.Errorf("name = %#v, want %q", group.Name, tt.name)
			}
			if group.Note != Some(tt.note) {
				t.Errorf("note = %#v, want %q", group.Note, tt.note)
			}
		})
	}
}

func TestReader_MorePlayersAndTeams(t *testing.T) {
	r := NewReader()
	group := mustRead(t, r, "group_name - group_note\n", Strict)

	team1 := mustRead(t, r, "\tteam_name_1 - team_note\n", Strict).(*Team)
	p1 := mustRead(t, r, "\t\t1 - player_surname player_name, 01.01.1900 , player_note\n", Strict).(*Player)
	p2 := mustRead(t, r, "\t\t2 - player_surname player_name, 01.01.1900 , player_note\n", Strict).(*Player)

	team2 := mustRead(t, r, "\tteam_name_2 - team_note\n", Strict).(*Team)
	p3 := mustRead(t, r, "\t\t3 - player_surname player_name, 01.01.1900 , player_note\n", Strict).(*Player)

	if p1.Team != team1 || p2.Team != team1 {
		t.Errorf("first two players should belong to team 1")
	}
	if p3.Team != team2 {
		t.Errorf("third player should belong to team 2")
	}
	if team1.Group != group || team2.Group != group {
		t.Errorf("both teams should belong to the only group")
	}
	if r.CurrentTeam() != team2 {
		t.Errorf("current team should be team 2")
	}
}

func TestReader_HierarchyErrors(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		reason Reason
	}{
		{
			name:   "team before any group",
			lines:  []string{"\tteam - note\n"},
			reason: ReasonTeamWithoutGroup,
		},
		{
			name:   "player before anything",
			lines:  []string{"\t\t1 - s n, 01.01.2000 , x\n"},
			reason: ReasonPlayerWithoutTeam,
		},
		{
			name:   "player after group without team",
			lines:  []string{"group - note\n", "\t\t1 - s n, 01.01.2000 , x\n"},
			reason: ReasonPlayerWithoutTeam,
		},
		{
			name: "new group clears current team",
			lines: []string{
				"group1 - note\n",
				"\tteam1 - note\n",
				"\t\t1 - s n, 01.01.2000 , x\n",
				"group2 - note\n",
				"\t\t2 - s n, 01.01.2000 , x\n",
			},
			reason: ReasonPlayerWithoutTeam,
		},
	}

	for _, tt := range tests {
		for _, mode := range []Mode{Strict, Loose} {
			t.Run(tt.name+"/"+mode.String(), func(t *testing.T) {
				r := NewReader()
				last := len(tt.lines) - 1
				for _, line := range tt.lines[:last] {
					mustRead(t, r, line, mode)
				}

				rec, err := r.Read(tt.lines[last], mode)
				if rec != nil {
					t.Errorf("expected no record, got %v", rec)
				}
				var invalid *InvalidInputError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected *InvalidInputError, got %v", err)
				}
				if invalid.Reason != tt.reason {
					t.Errorf("reason = %s, want %s", invalid.Reason, tt.reason)
				}
				if invalid.Line != tt.lines[last] {
					t.Errorf("error line = %q, want %q", invalid.Line, tt.lines[last])
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("errors.Is(err, ErrInvalidInput) = false")
				}
			})
		}
	}
}

func TestReader_GroupResetsTeam(t *testing.T) {
	r := NewReader()
	mustRead(t, r, "group1 - note\n", Strict)
	mustRead(t, r, "\tteam1 - note\n", Strict)
	group2 := mustRead(t, r, "group2 - note\n", Strict)

	if r.CurrentTeam() != nil {
		t.Errorf("current team should be cleared by a new group")
	}
	if r.CurrentGroup() != group2 {
		t.Errorf("current group should be group2")
	}

	r.Reset()
	if r.CurrentGroup() != nil || r.CurrentTeam() != nil {
		t.Errorf("Reset should clear all state")
	}
}

func TestReader_EmptyRecords(t *testing.T) {
	lines := []string{"- \n", "\t- \n", "\t\t-  ,  , \n"}

	for _, mode := range []Mode{Strict, Loose} {
		t.Run(mode.String(), func(t *testing.T) {
			r := NewReader()
			wantLen := []int{2, 4, 9}
			for i, line := range lines {
				row := mustRead(t, r, line, mode).Row()
				if len(row) != wantLen[i] {
					t.Fatalf("row length = %d, want %d", len(row), wantLen[i])
				}
				for j, cell := range row {
					if cell != "" {
						t.Errorf("line %q cell %d = %q, want empty", line, j, cell)
					}
				}
			}
		})
	}
}

func TestReader_EmptyFieldsAreAbsent(t *testing.T) {
	r := NewReader()
	group := mustRead(t, r, "- \n", Strict).(*Group)
	team := mustRead(t, r, "\t- \n", Strict).(*Team)
	player := mustRead(t, r, "\t\t-  ,  , \n", Strict).(*Player)

	for name, f := range map[string]Field{
		"group name":          group.Name,
		"group note":          group.Note,
		"team name":           team.Name,
		"team note":           team.Note,
		"registration number": player.RegistrationNumber,
		"player name":         player.Name,
		"surname":             player.Surname,
		"date of birth":       player.DateOfBirth,
		"player note":         player.Note,
	} {
		if f.Valid {
			t.Errorf("%s = %#v, want None", name, f)
		}
	}
}

func TestReader_EmptyRegistrationNumberIsPresent(t *testing.T) {
	r := NewReader()
	mustRead(t, r, "g - \n", Strict)
	mustRead(t, r, "\tt - \n", Strict)

	player := mustRead(t, r, "\t\t - s n, 1.1.2000 , x\n", Strict).(*Player)
	if player.RegistrationNumber != Some("") {
		t.Errorf("registration number = %#v, want present empty string", player.RegistrationNumber)
	}
}

func TestReader_StrictRejectsMissingSpace(t *testing.T) {
	lines := []string{
		"-\n",
		"\t-\n",
		"group_name -\n",
		"\tteam_name -group_note\n",
		"\t\t-  , , \n",
		"\t\t- s n, 1.1.2000 ,\n",
		"\t\t- s n 1.1.2000 , x\n",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			r := NewReader()
			mustRead(t, r, "g - \n", Loose)
			mustRead(t, r, "\tt - \n", Loose)
			// Leave the hierarchy in place between the loose and strict attempts.
			strict := *r

			if _, err := strict.Read(line, Strict); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("strict Read(%q) error = %v, want invalid input", line, err)
			}
			if _, err := r.Read(line, Loose); err != nil {
				t.Errorf("loose Read(%q) failed: %v", line, err)
			}
		})
	}
}

func TestReader_LoosePlayers(t *testing.T) {
	tests := []struct {
		line string
		want []string // reg, name, surname, dob, note
	}{
		{
			line: "\t\t123456789 - player_surname1 player_name1, 01.01.1900 ,\n",
			want: []string{"123456789", "player_name1", "player_surname1", "01.01.1900", ""},
		},
		{
			line: "\t\t123456789 - player_surname2 player_name2, 01.01.1900     ,\n",
			want: []string{"123456789", "player_name2", "player_surname2", "01.01.1900", ""},
		},
		{
			line: "\t\t- player_surname3 player_name3 \n",
			want: []string{"", "player_name3", "player_surname3", "", ""},
		},
		{
			line: "\t\t- player_surname4 player_name4, , \n",
			want: []string{"", "player_name4", "player_surname4", "", ""},
		},
		{
			line: "\t\t123456789 - player_surname player_name, 01.01.1900 , player_note\n",
			want: []string{"123456789", "player_name", "player_surname", "01.01.1900", "player_note"},
		},
		{
			line: "\t\t7 - Novák Jan Karel,01.02.2003 ,note\n",
			want: []string{"7", "Jan Karel", "Novák", "01.02.2003", "note"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			r := NewReader()
			mustRead(t, r, "group_name -\n", Loose)
			mustRead(t, r, "\tteam_name -\n", Loose)

			row := mustRead(t, r, tt.line, Loose).Row()
			if diff := cmp.Diff(tt.want, row[4:]); diff != "" {
				t.Errorf("player cells mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReader_UnknownLines(t *testing.T) {
	lines := []string{
		"group_name - group_note",
		"\t\t\tdeep - note\n",
		"no separator here\n",
		"\t\tabc - s n, 1.1.2000 , x\n",
		"\t\t1 - s,n, 1.1.2000 , x\n",
		"first\nsecond - note\n",
		"\n",
	}

	for _, line := range lines {
		for _, mode := range []Mode{Strict, Loose} {
			t.Run(mode.String()+"/"+line, func(t *testing.T) {
				r := NewReader()
				mustRead(t, r, "g - \n", Strict)
				mustRead(t, r, "\tt - \n", Strict)

				_, err := r.Read(line, mode)
				var invalid *InvalidInputError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected *InvalidInputError, got %v", err)
				}
				if invalid.Reason != ReasonUnknownLine {
					t.Errorf("reason = %s, want %s", invalid.Reason, ReasonUnknownLine)
				}
			})
		}
	}
}

func TestReader_FailureKeepsState(t *testing.T) {
	r := NewReader()
	group := mustRead(t, r, "g - \n", Strict)
	team := mustRead(t, r, "\tt - \n", Strict)

	if _, err := r.Read("garbage\n", Strict); err == nil {
		t.Fatalf("expected garbage line to fail")
	}
	if r.CurrentGroup() != group || r.CurrentTeam() != team {
		t.Errorf("a rejected line must not change the reader state")
	}
}

func TestReader_IndependentInstances(t *testing.T) {
	a := NewReader()
	b := NewReader()
	mustRead(t, a, "g - \n", Strict)
	mustRead(t, a, "\tt - \n", Strict)

	if _, err := b.Read("\t\t1 - s n, 1.1.2000 , x\n", Strict); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("a fresh reader must not see another reader's team, got %v", err)
	}
}
