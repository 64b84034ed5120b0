// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package opsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// newTestClient creates a Client backed by the given httptest.Server.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL: server.URL,
		Session: Session{
			UserID: 77,
			Token:  "test-token",
			APIKey: "test-key",
		},
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{Session: Session{Token: "t"}})
	if err == nil {
		t.Fatal("expected error for missing base URL")
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://ops.example.test"})
	if err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestAuthHeaderInjection(t *testing.T) {
	var receivedAuth, receivedKey string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedAuth = request.Header.Get("Authorization")
		receivedKey = request.Header.Get("X-Api-Key")
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"tickets":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.ListTickets(context.Background(), TicketFilter{}); err != nil {
		t.Fatalf("ListTickets: %v", err)
	}

	if receivedAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", receivedAuth, "Bearer test-token")
	}
	if receivedKey != "test-key" {
		t.Errorf("X-Api-Key = %q, want %q", receivedKey, "test-key")
	}
}

func TestListTicketsCanonicalizesStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/tickets/filter" {
			t.Errorf("path = %q", request.URL.Path)
		}
		if got := request.URL.Query().Get("status"); got != "pending" {
			t.Errorf("status query = %q", got)
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"tickets":[
			{"id":7,"title":"Replace signage","status":"Pending","priority":"urgent",
			 "assignees":[{"user_id":3,"display_name":"Dana Reyes"}],
			 "followups":[{"user_id":77}]},
			{"id":10,"title":"Legacy import","status":"on_hold","priority":"low"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	tickets, err := client.ListTickets(context.Background(), TicketFilter{Status: "pending"})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("got %d tickets, want 2", len(tickets))
	}

	first := tickets[0]
	if first.Status != ticket.StatusPending {
		t.Errorf("status = %v, want pending (case-insensitive parse)", first.Status)
	}
	if first.Priority != ticket.PriorityUrgent {
		t.Errorf("priority = %v, want urgent", first.Priority)
	}
	if !first.FollowedBy(77) {
		t.Error("followups not mapped to follower set")
	}
	if len(first.Assignees) != 1 || first.Assignees[0].DisplayName != "Dana Reyes" {
		t.Errorf("assignees = %+v", first.Assignees)
	}

	legacy := tickets[1]
	if legacy.Status != ticket.StatusUnknown || legacy.RawStatus != "on_hold" {
		t.Errorf("legacy record = %+v, want unknown status with raw preserved", legacy)
	}
}

func TestUpdateTicketStatusBody(t *testing.T) {
	var receivedPath string
	var receivedBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedPath = request.URL.Path
		if request.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", request.Method)
		}
		json.NewDecoder(request.Body).Decode(&receivedBody)
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.UpdateTicketStatus(context.Background(), 42, ticket.StatusInProgress, 77)
	if err != nil {
		t.Fatalf("UpdateTicketStatus: %v", err)
	}

	if receivedPath != "/ticket/42" {
		t.Errorf("path = %q", receivedPath)
	}
	if receivedBody["status"] != "in_progress" {
		t.Errorf("status = %v", receivedBody["status"])
	}
	if receivedBody["updated_by"] != float64(77) {
		t.Errorf("updated_by = %v", receivedBody["updated_by"])
	}
}

func TestUpdateTicketStatusServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
		writer.Write([]byte(`{"message":"database unavailable"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	err := client.UpdateTicketStatus(context.Background(), 42, ticket.StatusInProgress, 77)
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
	if !IsServerError(err) {
		t.Errorf("IsServerError(%v) = false", err)
	}
	if IsNotFound(err) {
		t.Error("500 misclassified as not-found")
	}
}

func TestAssignTicketBody(t *testing.T) {
	var receivedBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", request.Method)
		}
		json.NewDecoder(request.Body).Decode(&receivedBody)
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.AssignTicket(context.Background(), 42, []int{3, 9}, 77); err != nil {
		t.Fatalf("AssignTicket: %v", err)
	}

	ids, ok := receivedBody["assignee_user_ids"].([]any)
	if !ok || len(ids) != 2 {
		t.Fatalf("assignee_user_ids = %v", receivedBody["assignee_user_ids"])
	}
	if receivedBody["updated_by"] != float64(77) {
		t.Errorf("updated_by = %v", receivedBody["updated_by"])
	}
}

func TestFollowMutationsAreMultipart(t *testing.T) {
	var addField, removeField string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if err := request.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart body: %v", err)
			writer.WriteHeader(http.StatusBadRequest)
			return
		}
		addField = request.FormValue("followup_user_ids_add")
		removeField = request.FormValue("followup_user_ids_remove")
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server)
	if err := client.AddFollower(context.Background(), 5, 77); err != nil {
		t.Fatalf("AddFollower: %v", err)
	}
	if addField != "77" {
		t.Errorf("followup_user_ids_add = %q, want 77", addField)
	}

	if err := client.RemoveFollower(context.Background(), 5, 77); err != nil {
		t.Fatalf("RemoveFollower: %v", err)
	}
	if removeField != "77" {
		t.Errorf("followup_user_ids_remove = %q, want 77", removeField)
	}
}

func TestSearchTeamEscapesQuery(t *testing.T) {
	var receivedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedQuery = request.URL.Query().Get("query")
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"members":[
			{"user_id":3,"first_name":"Dana","last_name":"Reyes","username":"dreyes","email":"dana@clinic.test"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	candidates, err := client.SearchTeam(context.Background(), "dana r")
	if err != nil {
		t.Fatalf("SearchTeam: %v", err)
	}
	if receivedQuery != "dana r" {
		t.Errorf("query = %q", receivedQuery)
	}
	if len(candidates) != 1 || candidates[0].DisplayName() != "Dana Reyes" {
		t.Errorf("candidates = %+v", candidates)
	}
}

func TestSearchTeamZeroMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"members":null}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)
	candidates, err := client.SearchTeam(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("SearchTeam: %v", err)
	}
	if candidates == nil || len(candidates) != 0 {
		t.Errorf("candidates = %#v, want empty non-nil slice", candidates)
	}
}

func TestAPIErrorMessageParsing(t *testing.T) {
	err := parseAPIError(404, []byte(`{"message":"ticket not found"}`))
	if err.Message != "ticket not found" {
		t.Errorf("Message = %q", err.Message)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound = false for 404")
	}

	raw := parseAPIError(502, []byte(`upstream gone`))
	if raw.Message != "upstream gone" {
		t.Errorf("Message = %q, want verbatim body", raw.Message)
	}
}
