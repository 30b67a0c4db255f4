package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ValidShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Command
	}{
		{name: "register", in: `{"action":"register","teamName":"Alpha"}`, want: Register{TeamName: "Alpha"}},
		{name: "start", in: `{"action":"start"}`, want: Start{}},
		{name: "ready", in: `{"action":"ready","team":"B"}`, want: Ready{Team: "B"}},
		{name: "field order does not matter", in: `{"team":"C","action":"ready"}`, want: Ready{Team: "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, tt.want.Action(), cmd.Action())
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "not json", in: `not json`, wantErr: ErrMalformed},
		{name: "json array", in: `["register"]`, wantErr: ErrMalformed},
		{name: "action not a string", in: `{"action":42}`, wantErr: ErrMalformed},
		{name: "missing action", in: `{"teamName":"Alpha"}`, wantErr: ErrMissingField},
		{name: "register without teamName", in: `{"action":"register"}`, wantErr: ErrMissingField},
		{name: "register with blank teamName", in: `{"action":"register","teamName":"  "}`, wantErr: ErrMissingField},
		{name: "register with numeric teamName", in: `{"action":"register","teamName":7}`, wantErr: ErrMalformed},
		{name: "ready without team", in: `{"action":"ready"}`, wantErr: ErrMissingField},
		{name: "ready with wrong field", in: `{"action":"ready","teamName":"B"}`, wantErr: ErrMalformed},
		{name: "start with extra field", in: `{"action":"start","force":true}`, wantErr: ErrMalformed},
		{name: "unknown action", in: `{"action":"finish"}`, wantErr: ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode([]byte(tt.in))
			assert.Nil(t, cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOutboundWireFormat(t *testing.T) {
	tests := []struct {
		name string
		msg  interface{}
		want string
	}{
		{name: "new team", msg: NewTeam("Alpha"), want: `{"action":"new_team","teamName":"Alpha"}`},
		{name: "start", msg: RaceStarted(), want: `{"action":"start"}`},
		{name: "ping", msg: Ping(), want: `{"type":"ping"}`},
		{
			name: "ready",
			msg:  Result(ReadyResult{Team: "B", Timestamp: "09:15:02", TimeTaken: 2.345}),
			want: `{"action":"ready","data":{"team":"B","timestamp":"09:15:02","timeTaken":2.345}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}
