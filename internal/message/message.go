// internal/message/message.go
// Wire format of the race protocol: strict decoding of client commands and
// constructors for the messages the server sends back.
package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Inbound actions.
const (
	ActionRegister = "register"
	ActionStart    = "start"
	ActionReady    = "ready"
)

// Outbound discriminators.
const (
	ActionNewTeam = "new_team"
	TypePing      = "ping"
)

// TimestampLayout renders the wall-clock time of a result as HH:MM:SS.
const TimestampLayout = "15:04:05"

var (
	ErrMalformed     = errors.New("malformed message")
	ErrMissingField  = errors.New("missing required field")
	ErrUnknownAction = errors.New("unknown action")
)

// Command is one decoded client message. It is one of Register, Start or Ready.
type Command interface {
	Action() string
}

// Register announces a team joining the race.
type Register struct {
	TeamName string
}

// Start starts the race clock. The sender becomes the manager.
type Start struct{}

// Ready reports that a team finished.
type Ready struct {
	Team string
}

func (Register) Action() string { return ActionRegister }
func (Start) Action() string    { return ActionStart }
func (Ready) Action() string    { return ActionReady }

type envelope struct {
	Action *string `json:"action"`
}

type registerPayload struct {
	Action   string  `json:"action"`
	TeamName *string `json:"teamName"`
}

type startPayload struct {
	Action string `json:"action"`
}

type readyPayload struct {
	Action string  `json:"action"`
	Team   *string `json:"team"`
}

// Decode parses one client message. Anything that is not exactly one of the
// three inbound shapes is rejected: ErrUnknownAction for a well-formed message
// with an action the server does not know, ErrMalformed or ErrMissingField
// otherwise.
func Decode(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Action == nil {
		return nil, fmt.Errorf("%w: action", ErrMissingField)
	}

	switch *env.Action {
	case ActionRegister:
		var p registerPayload
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		if p.TeamName == nil || strings.TrimSpace(*p.TeamName) == "" {
			return nil, fmt.Errorf("%w: teamName", ErrMissingField)
		}
		return Register{TeamName: *p.TeamName}, nil

	case ActionStart:
		var p startPayload
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		return Start{}, nil

	case ActionReady:
		var p readyPayload
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		if p.Team == nil || strings.TrimSpace(*p.Team) == "" {
			return nil, fmt.Errorf("%w: team", ErrMissingField)
		}
		return Ready{Team: *p.Team}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, *env.Action)
	}
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	return nil
}

// NewTeamMessage is broadcast when a team registers.
type NewTeamMessage struct {
	Action   string `json:"action"`
	TeamName string `json:"teamName"`
}

// StartMessage is broadcast when the race starts.
type StartMessage struct {
	Action string `json:"action"`
}

// ReadyMessage carries one team's result.
type ReadyMessage struct {
	Action string      `json:"action"`
	Data   ReadyResult `json:"data"`
}

type ReadyResult struct {
	Team      string  `json:"team"`
	Timestamp string  `json:"timestamp"`
	TimeTaken float64 `json:"timeTaken"`
}

// PingMessage is the keepalive signal.
type PingMessage struct {
	Type string `json:"type"`
}

func NewTeam(teamName string) NewTeamMessage {
	return NewTeamMessage{Action: ActionNewTeam, TeamName: teamName}
}

func RaceStarted() StartMessage {
	return StartMessage{Action: ActionStart}
}

func Result(result ReadyResult) ReadyMessage {
	return ReadyMessage{Action: ActionReady, Data: result}
}

func Ping() PingMessage {
	return PingMessage{Type: TypePing}
}
