// =============================================================================
// DTB to X Converter - Record Model
// =============================================================================
//
// This file defines the three record kinds found in a DTB file and how each
// of them flattens into a row of cells for tabular output.
//
// HIERARCHY:
//   Group                      <- top-level, no leading tab
//   └── Team                   <- one leading tab, owned by the last Group
//       └── Player             <- two leading tabs, owned by the last Team
//
// FLATTENED ROWS:
//   Group  : [name, note]
//   Team   : Group row + [name, note]
//   Player : Team row + [registration number, name, surname, birth date, note]
//
// =============================================================================

package dtb

import "fmt"

// =============================================================================
// OPTIONAL FIELDS
// =============================================================================

// Field is an optional text value read from a DTB line.
// Valid is false when the grammar did not capture the field at all, which is
// distinct from a captured empty string.
type Field struct {
	Value string
	Valid bool
}

// Some returns a present Field holding value.
func Some(value string) Field {
	return Field{Value: value, Valid: true}
}

// None returns an absent Field.
func None() Field {
	return Field{}
}

// String returns the cell text: the value, or "" when absent.
func (f Field) String() string {
	if !f.Valid {
		return ""
	}
	return f.Value
}

// GoString makes absent fields visible in test failures and debug logs.
func (f Field) GoString() string {
	if !f.Valid {
		return "None"
	}
	return fmt.Sprintf("%q", f.Value)
}

// =============================================================================
// RECORD KINDS
// =============================================================================

// Kind identifies which of the three DTB record shapes a record has.
type Kind int

const (
	KindGroup Kind = iota
	KindTeam
	KindPlayer
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindTeam:
		return "team"
	case KindPlayer:
		return "player"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Record is implemented by *Group, *Team and *Player.
type Record interface {
	// Kind reports the record shape.
	Kind() Kind

	// Row flattens the record together with its owner chain.
	Row() []string
}

// =============================================================================
// HEADER LABELS
// =============================================================================

// Column labels for spreadsheet output, in the original tool's language.
var (
	groupHeader  = []string{"Název, Oddíl", "Poznámka, Oddíl"}
	teamHeader   = []string{"Název, Družstvo", "Poznámka, Družstvo"}
	playerHeader = []string{"Reg. číslo, Hráč", "Jméno, Hráč", "Příjmení, Hráč", "Datum nar., Hráč", "Poznámka, Hráč"}
)

// GroupHeader returns the column labels contributed by a Group.
func GroupHeader() []string { return append([]string(nil), groupHeader...) }

// TeamHeader returns the column labels contributed by a Team.
func TeamHeader() []string { return append([]string(nil), teamHeader...) }

// PlayerHeader returns the column labels contributed by a Player.
func PlayerHeader() []string { return append([]string(nil), playerHeader...) }

// Header returns the full output header: Group, then Team, then Player labels.
func Header() []string {
	header := make([]string, 0, len(groupHeader)+len(teamHeader)+len(playerHeader))
	header = append(header, groupHeader...)
	header = append(header, teamHeader...)
	header = append(header, playerHeader...)
	return header
}

// =============================================================================
// GROUP
// =============================================================================

// Group contains teams. It is the top-level record of a DTB file.
type Group struct {
	Name Field
	Note Field
}

func (g *Group) Kind() Kind { return KindGroup }

func (g *Group) Row() []string {
	return []string{g.Name.String(), g.Note.String()}
}

func (g *Group) String() string {
	return fmt.Sprintf("Group(%#v, %#v)", g.Name, g.Note)
}

// =============================================================================
// TEAM
// =============================================================================

// Team belongs to a single group and contains players.
type Team struct {
	Name  Field
	Note  Field
	Group *Group
}

func (t *Team) Kind() Kind { return KindTeam }

func (t *Team) Row() []string {
	return append(t.Group.Row(), t.Name.String(), t.Note.String())
}

func (t *Team) String() string {
	return fmt.Sprintf("Team(%#v, %#v, %s)", t.Name, t.Note, t.Group)
}

// =============================================================================
// PLAYER
// =============================================================================

// Player belongs to a single team.
//
// The DTB line lists the surname before the given name; the row lists the
// given name first.
type Player struct {
	RegistrationNumber Field
	Name               Field
	Surname            Field
	DateOfBirth        Field
	Note               Field
	Team               *Team
}

func (p *Player) Kind() Kind { return KindPlayer }

func (p *Player) Row() []string {
	return append(p.Team.Row(),
		p.RegistrationNumber.String(),
		p.Name.String(),
		p.Surname.String(),
		p.DateOfBirth.String(),
		p.Note.String(),
	)
}

func (p *Player) String() string {
	return fmt.Sprintf("Player(%#v, %#v, %#v, %#v, %#v, %s)",
		p.RegistrationNumber, p.Name, p.Surname, p.DateOfBirth, p.Note, p.Team)
}
