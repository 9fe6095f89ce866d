//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubjectLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	access, _, _ := ts.signUp(t)

	id := ts.createSubject(t, access, "Linear Algebra")

	for _, name := range []string{"Vectors", "Matrices", "Eigenvalues"} {
		status, body := ts.doJSON(t, http.MethodPost, "/subjects/"+id+"/topics", map[string]any{
			"name": name,
		}, access)
		require.Equal(t, http.StatusOK, status, "add topic response: %v", body)
	}

	// Mark the first two done.
	for _, idx := range []int{0, 1} {
		status, _ := ts.doJSON(t, http.MethodPost, "/subjects/"+id+"/topics/toggle", map[string]any{
			"index": idx,
		}, access)
		require.Equal(t, http.StatusOK, status)
	}

	subjects := ts.listSubjects(t, access)
	require.Len(t, subjects, 1)
	subj := subjects[0]
	require.Equal(t, "Linear Algebra", subj["name"])
	require.Equal(t, float64(2), subj["completed"])
	require.Equal(t, float64(3), subj["total"])
	require.Equal(t, float64(67), subj["percent"])

	topics, _ := subj["topics"].([]any)
	require.Len(t, topics, 3)
	first, _ := topics[0].(map[string]any)
	require.Equal(t, "Vectors", first["name"])
	require.Equal(t, true, first["done"])

	// Remove the middle topic; order of the rest is preserved.
	status, _ := ts.doJSON(t, http.MethodPost, "/subjects/"+id+"/topics/remove", map[string]any{
		"index": 1,
	}, access)
	require.Equal(t, http.StatusOK, status)

	subjects = ts.listSubjects(t, access)
	topics, _ = subjects[0]["topics"].([]any)
	require.Len(t, topics, 2)
	second, _ := topics[1].(map[string]any)
	require.Equal(t, "Eigenvalues", second["name"])

	// Delete the subject.
	status, _ = ts.doJSON(t, http.MethodDelete, "/subjects/"+id, nil, access)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, ts.listSubjects(t, access))
}

func TestSubjectCreate_BlankNameRejected(t *testing.T) {
	ts := setupTestServer(t)
	access, _, _ := ts.signUp(t)

	status, _ := ts.doJSON(t, http.MethodPost, "/subjects", map[string]any{"name": "   "}, access)
	require.Equal(t, http.StatusBadRequest, status)
	require.Empty(t, ts.listSubjects(t, access))
}

func TestToggleTopic_OutOfRangeIsNoOp(t *testing.T) {
	ts := setupTestServer(t)
	access, _, _ := ts.signUp(t)

	id := ts.createSubject(t, access, "Chemistry")
	status, _ := ts.doJSON(t, http.MethodPost, "/subjects/"+id+"/topics", map[string]any{"name": "Acids"}, access)
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.doJSON(t, http.MethodPost, "/subjects/"+id+"/topics/toggle", map[string]any{"index": 5}, access)
	require.Equal(t, http.StatusOK, status)

	subjects := ts.listSubjects(t, access)
	topics, _ := subjects[0]["topics"].([]any)
	first, _ := topics[0].(map[string]any)
	require.Equal(t, false, first["done"])
}

func TestTopicMutation_UnknownSubject(t *testing.T) {
	ts := setupTestServer(t)
	access, _, _ := ts.signUp(t)

	status, _ := ts.doJSON(t, http.MethodPost,
		"/subjects/00000000-0000-0000-0000-000000000001/topics",
		map[string]any{"name": "Orphan"}, access)
	require.Equal(t, http.StatusNotFound, status)
}

func TestSubjects_ScopedPerOwner(t *testing.T) {
	ts := setupTestServer(t)

	alice, _, _ := ts.signUp(t)
	bob, _, _ := ts.signUp(t)

	aliceID := ts.createSubject(t, alice, "Alice's Subject")
	ts.createSubject(t, bob, "Bob's Subject")

	subjects := ts.listSubjects(t, alice)
	require.Len(t, subjects, 1)
	require.Equal(t, "Alice's Subject", subjects[0]["name"])

	// Bob cannot mutate or delete Alice's subject.
	status, _ := ts.doJSON(t, http.MethodPost, "/subjects/"+aliceID+"/topics", map[string]any{"name": "Stolen"}, bob)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = ts.doJSON(t, http.MethodDelete, "/subjects/"+aliceID, nil, bob)
	require.Equal(t, http.StatusNotFound, status)

	subjects = ts.listSubjects(t, alice)
	require.Empty(t, subjects[0]["topics"])
}
