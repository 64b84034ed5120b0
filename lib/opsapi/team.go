// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package opsapi

import (
	"context"
	"net/url"

	"github.com/clinicdesk/clinicdesk/lib/remotesearch"
)

// SearchTeam queries the clinic team directory. The query is the
// settled autocomplete text; the coordinator upstream guarantees it
// is non-blank. Zero matches return an empty slice, not an error.
func (client *Client) SearchTeam(ctx context.Context, query string) ([]remotesearch.Candidate, error) {
	path := "/clinic_team/search?query=" + url.QueryEscape(query)

	var response struct {
		Members []remotesearch.Candidate `json:"members"`
	}
	if err := client.get(ctx, path, &response); err != nil {
		return nil, err
	}
	if response.Members == nil {
		return []remotesearch.Candidate{}, nil
	}
	return response.Members, nil
}
