package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora-node/lib/logger"
	"agora-node/lib/test_utils"
	"agora-node/modules/api"
	"agora-node/modules/conviction"
	"agora-node/modules/db/agora/members"
	"agora-node/modules/db/agora/proposals"
	"agora-node/modules/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*httptest.Server, *test_utils.MockProposalsDb) {
	membersDb := test_utils.NewMockMembersDb(members.Member{
		Id: "alice", Username: "alice", WeightScore: 500,
	})
	proposalsDb := test_utils.NewMockProposalsDb(proposals.Proposal{
		Id: "p1", AuthorId: "bob", Title: "proposal p1", Status: proposals.StatusVoting,
	})
	votesDb := test_utils.NewMockVotesDb()
	activityDb := test_utils.NewMockActivityDb()
	m := metrics.New()

	engine := conviction.New(
		logger.NilLogger{},
		conviction.NewEngineConfig(),
		membersDb,
		proposalsDb,
		votesDb,
		activityDb,
		m,
	)

	apiServer := api.New(engine, proposalsDb, activityDb, m, ":0")
	require.NoError(t, apiServer.Init())

	server := httptest.NewServer(apiServer.Handler())
	t.Cleanup(server.Close)
	return server, proposalsDb
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestCastEndpoint(t *testing.T) {
	server, _ := setup(t)

	resp := postJSON(t, server.URL+"/api/v1/votes", map[string]string{
		"member_id":   "alice",
		"proposal_id": "p1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	result := map[string]string{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result["vote_id"])

	// Second cast for the same pair conflicts.
	dup := postJSON(t, server.URL+"/api/v1/votes", map[string]string{
		"member_id":   "alice",
		"proposal_id": "p1",
	})
	defer dup.Body.Close()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
}

func TestCastValidationErrors(t *testing.T) {
	server, proposalsDb := setup(t)

	// Missing fields rejected before touching the engine.
	resp := postJSON(t, server.URL+"/api/v1/votes", map[string]string{"member_id": "alice"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown proposal.
	resp = postJSON(t, server.URL+"/api/v1/votes", map[string]string{
		"member_id":   "alice",
		"proposal_id": "ghost",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Proposal not open for voting.
	proposalsDb.SetStatus("p1", proposals.StatusDiscussion)
	resp = postJSON(t, server.URL+"/api/v1/votes", map[string]string{
		"member_id":   "alice",
		"proposal_id": "p1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestWithdrawEndpoint(t *testing.T) {
	server, _ := setup(t)

	// Nothing staked yet.
	resp := postJSON(t, server.URL+"/api/v1/votes/withdraw", map[string]string{
		"member_id":   "alice",
		"proposal_id": "p1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cast := postJSON(t, server.URL+"/api/v1/votes", map[string]string{
		"member_id":   "alice",
		"proposal_id": "p1",
	})
	defer cast.Body.Close()
	require.Equal(t, http.StatusCreated, cast.StatusCode)

	resp = postJSON(t, server.URL+"/api/v1/votes/withdraw", map[string]string{
		"member_id":   "alice",
		"proposal_id": "p1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListProposalsAndMetrics(t *testing.T) {
	server, _ := setup(t)

	resp, err := http.Get(server.URL + "/api/v1/proposals")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	listing := []proposals.Proposal{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing, 1)
	assert.Equal(t, "p1", listing[0].Id)

	scrape, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer scrape.Body.Close()
	assert.Equal(t, http.StatusOK, scrape.StatusCode)
}
