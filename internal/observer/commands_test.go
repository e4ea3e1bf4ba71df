package observer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/drifter/internal/model"
)

type recordingCommander struct {
	chased       []uuid.UUID
	patrols      int
	investigated []model.Location
}

func (r *recordingCommander) ForceChase(id uuid.UUID) bool {
	r.chased = append(r.chased, id)
	return true
}

func (r *recordingCommander) ForcePatrol() {
	r.patrols++
}

func (r *recordingCommander) InvestigatePosition(at model.Location) bool {
	r.investigated = append(r.investigated, at)
	return false
}

func TestParseCommand(t *testing.T) {
	target := uuid.New()

	agentID, fn, err := parseCommand([]byte(`{"type":"forceChase","agentId":3,"target":"` + target.String() + `"}`))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), agentID)
	rec := &recordingCommander{}
	fn(rec)
	assert.Equal(t, []uuid.UUID{target}, rec.chased)

	agentID, fn, err = parseCommand([]byte(`{"type":"forcePatrol","agentId":4}`))
	require.NoError(t, err)
	assert.Equal(t, uint32(4), agentID)
	fn(rec)
	assert.Equal(t, 1, rec.patrols)

	_, fn, err = parseCommand([]byte(`{"type":"investigate","agentId":4,"position":[1,2]}`))
	require.NoError(t, err)
	fn(rec)
	assert.Equal(t, []model.Location{model.NewLocation(1, 2, 0)}, rec.investigated)
}

func TestParseCommand_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"not json", `chase!`, "decoding command"},
		{"missing agent", `{"type":"forcePatrol"}`, "agentId is required"},
		{"bad target", `{"type":"forceChase","agentId":1,"target":"bob"}`, "invalid target"},
		{"missing position", `{"type":"investigate","agentId":1}`, "position is required"},
		{"unknown type", `{"type":"dance","agentId":1}`, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fn, err := parseCommand([]byte(tt.payload))
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Nil(t, fn)
		})
	}
}
