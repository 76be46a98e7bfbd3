// =============================================================================
// DTB to X Converter - Line Reader
// =============================================================================
//
// The Reader turns single DTB lines into records. It remembers the most
// recently read Group and Team and uses them as owners for the records that
// follow, so lines must be fed in document order.
//
// STATE TRANSITIONS:
//   Group line  : current group = new group, current team = none
//   Team line   : requires a current group; current team = new team
//   Player line : requires a current team; no state change
//
// CLASSIFICATION:
//   The number of leading tabs selects the line kind (0 group, 1 team,
//   2 player). The kind's scanner then decides whether the rest of the line
//   is well formed for the requested Mode.
//
// A Reader is not safe for concurrent use. Use one Reader per input stream.
//
// =============================================================================

package dtb

import (
	"strings"

	"github.com/rs/zerolog"
)

// Reader reads DTB records line by line.
type Reader struct {
	currentGroup *Group
	currentTeam  *Team

	logger zerolog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger makes the Reader log every record at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a Reader with no current group or team.
func NewReader(opts ...Option) *Reader {
	r := &Reader{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CurrentGroup returns the group that the next team will belong to, or nil.
func (r *Reader) CurrentGroup() *Group { return r.currentGroup }

// CurrentTeam returns the team that the next player will belong to, or nil.
func (r *Reader) CurrentTeam() *Team { return r.currentTeam }

// Reset forgets the current group and team.
func (r *Reader) Reset() {
	r.currentGroup = nil
	r.currentTeam = nil
}

// Read parses a single DTB line, including its trailing newline.
//
// It returns a *Group, *Team or *Player, or an *InvalidInputError when the
// line has an unknown shape or lacks its owning record.
func (r *Reader) Read(line string, mode Mode) (Record, error) {
	body, ok := strings.CutSuffix(line, "\n")
	if !ok {
		return nil, r.fail(line, ReasonUnknownLine, "missing line terminator")
	}
	if strings.Contains(body, "\n") {
		return nil, r.fail(line, ReasonUnknownLine, "embedded newline")
	}

	tabs := len(body) - len(strings.TrimLeft(body, "\t"))
	body = body[tabs:]

	switch tabs {
	case 0:
		return r.readGroup(line, body, mode)
	case 1:
		return r.readTeam(line, body, mode)
	case 2:
		return r.readPlayer(line, body, mode)
	default:
		return nil, r.fail(line, ReasonUnknownLine, "too many leading tabs")
	}
}

func (r *Reader) readGroup(line, body string, mode Mode) (Record, error) {
	name, note, detail, ok := scanNamed(body, mode)
	if !ok {
		return nil, r.fail(line, ReasonUnknownLine, detail)
	}

	group := &Group{Name: name, Note: note}
	r.currentGroup = group
	r.currentTeam = nil

	r.logger.Debug().Stringer("group", group).Msg("read group")
	return group, nil
}

func (r *Reader) readTeam(line, body string, mode Mode) (Record, error) {
	name, note, detail, ok := scanNamed(body, mode)
	if !ok {
		return nil, r.fail(line, ReasonUnknownLine, detail)
	}
	if r.currentGroup == nil {
		return nil, r.fail(line, ReasonTeamWithoutGroup, "")
	}

	team := &Team{Name: name, Note: note, Group: r.currentGroup}
	r.currentTeam = team

	r.logger.Debug().Stringer("team", team).Msg("read team")
	return team, nil
}

func (r *Reader) readPlayer(line, body string, mode Mode) (Record, error) {
	fields, detail, ok := scanPlayer(body, mode)
	if !ok {
		return nil, r.fail(line, ReasonUnknownLine, detail)
	}
	if r.currentTeam == nil {
		return nil, r.fail(line, ReasonPlayerWithoutTeam, "")
	}

	player := &Player{
		RegistrationNumber: fields.registrationNumber,
		Name:               fields.name,
		Surname:            fields.surname,
		DateOfBirth:        fields.dateOfBirth,
		Note:               fields.note,
		Team:               r.currentTeam,
	}

	r.logger.Debug().Stringer("player", player).Msg("read player")
	return player, nil
}

func (r *Reader) fail(line string, reason Reason, detail string) error {
	err := &InvalidInputError{Line: line, Reason: reason, Detail: detail}
	r.logger.Debug().Err(err).Msg("rejected line")
	return err
}
