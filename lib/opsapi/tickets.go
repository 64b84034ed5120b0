// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package opsapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

// TicketFilter narrows the ticket listing. Zero-value fields are
// omitted from the query string.
type TicketFilter struct {
	Status   string
	Priority string
	Category string
}

// queryParams renders the filter as a URL query string, without the
// leading "?".
func (filter TicketFilter) queryParams() string {
	values := url.Values{}
	if filter.Status != "" {
		values.Set("status", filter.Status)
	}
	if filter.Priority != "" {
		values.Set("priority", filter.Priority)
	}
	if filter.Category != "" {
		values.Set("category", filter.Category)
	}
	return values.Encode()
}

// ticketRecord is the wire shape of a backend ticket.
type ticketRecord struct {
	ID        int              `json:"id"`
	Title     string           `json:"title"`
	Status    string           `json:"status"`
	Priority  string           `json:"priority"`
	Category  string           `json:"category"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
	Assignees []assigneeRecord `json:"assignees"`
	Followups []followupRecord `json:"followups"`
}

type assigneeRecord struct {
	UserID      int    `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type followupRecord struct {
	UserID int `json:"user_id"`
}

// toDomain canonicalizes a wire record. Unrecognized status strings
// map to ticket.StatusUnknown with the raw value preserved; the board
// hides such tickets instead of failing the whole listing.
func (record ticketRecord) toDomain() ticket.Ticket {
	status, ok := ticket.ParseStatus(record.Status)
	rawStatus := ""
	if !ok {
		rawStatus = record.Status
	}
	priority, _ := ticket.ParsePriority(record.Priority)

	result := ticket.Ticket{
		ID:        record.ID,
		Title:     record.Title,
		Status:    status,
		RawStatus: rawStatus,
		Priority:  priority,
		Category:  record.Category,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	for _, assignee := range record.Assignees {
		result.Assignees = append(result.Assignees, ticket.Assignee{
			UserID:      assignee.UserID,
			DisplayName: assignee.DisplayName,
		})
	}
	for _, followup := range record.Followups {
		result.Followers = append(result.Followers, followup.UserID)
	}
	return result
}

// ListTickets fetches the filtered ticket listing.
func (client *Client) ListTickets(ctx context.Context, filter TicketFilter) ([]ticket.Ticket, error) {
	path := "/tickets/filter"
	if query := filter.queryParams(); query != "" {
		path += "?" + query
	}

	var response struct {
		Tickets []ticketRecord `json:"tickets"`
	}
	if err := client.get(ctx, path, &response); err != nil {
		return nil, err
	}

	tickets := make([]ticket.Ticket, 0, len(response.Tickets))
	for _, record := range response.Tickets {
		tickets = append(tickets, record.toDomain())
	}
	return tickets, nil
}

// UpdateTicketStatus persists a status transition. The backend
// records updatedBy for audit. Validation of the transition happens
// upstream in the lifecycle machine; this is a plain write.
func (client *Client) UpdateTicketStatus(ctx context.Context, ticketID int, status ticket.Status, updatedBy int) error {
	body := map[string]any{
		"status":     status.String(),
		"updated_by": updatedBy,
	}
	return client.patch(ctx, fmt.Sprintf("/ticket/%d", ticketID), body, nil)
}

// AssignTicket replaces a ticket's assignee set with userIDs.
func (client *Client) AssignTicket(ctx context.Context, ticketID int, userIDs []int, updatedBy int) error {
	body := map[string]any{
		"assignee_user_ids": userIDs,
		"updated_by":        updatedBy,
	}
	return client.patch(ctx, fmt.Sprintf("/ticket/%d", ticketID), body, nil)
}

// AddFollower subscribes userID to a ticket's notifications. The
// backend expects this particular mutation as a multipart form.
func (client *Client) AddFollower(ctx context.Context, ticketID, userID int) error {
	return client.patchFollowers(ctx, ticketID, "followup_user_ids_add", userID)
}

// RemoveFollower unsubscribes userID from a ticket's notifications.
func (client *Client) RemoveFollower(ctx context.Context, ticketID, userID int) error {
	return client.patchFollowers(ctx, ticketID, "followup_user_ids_remove", userID)
}

// patchFollowers sends the multipart follow/unfollow mutation with a
// single form field naming the affected user.
func (client *Client) patchFollowers(ctx context.Context, ticketID int, field string, userID int) error {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	if err := writer.WriteField(field, strconv.Itoa(userID)); err != nil {
		return fmt.Errorf("opsapi: building multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("opsapi: building multipart body: %w", err)
	}

	path := fmt.Sprintf("/ticket/%d", ticketID)
	_, err := client.doRaw(ctx, http.MethodPatch, path, &buffer, writer.FormDataContentType())
	return err
}
