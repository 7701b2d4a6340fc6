package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/engine"
	"github.com/talgya/simbot/internal/nav"
	"github.com/talgya/simbot/internal/tasks"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	plan, err := nav.PlanByID(nav.PlanCottage)
	require.NoError(t, err)
	return &Server{Sim: engine.NewSimulation(plan, 1, 1)}
}

func TestTasksFilterEncodesEmptyAsArray(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/tasks?robot=nobody", nil)
	s.handleTasks(rec, req)

	// An empty filter result is an empty JSON array, never null.
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestTasksFilterSelectsByRobot(t *testing.T) {
	s := newTestServer(t)
	_, task := s.Sim.SubmitCommand("clean the kitchen", agents.RobotSim)
	require.NotNil(t, task)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/tasks?robot=sim", nil)
	s.handleTasks(rec, req)

	var got []tasks.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, agents.RobotSim, got[0].AssignedTo)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/tasks?robot=chef", nil)
	s.handleTasks(rec, req)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
