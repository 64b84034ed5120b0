// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/clinicdesk/clinicdesk/lib/config"
	"github.com/clinicdesk/clinicdesk/lib/opsapi"
)

// runLogin prompts for credentials, verifies them against the backend
// with a listing call, and persists the session.
func runLogin(args []string) error {
	flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to config file (default: $CLINICDESK_CONFIG)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotenv(); err != nil {
		return err
	}
	configuration, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Fprint(os.Stderr, "User ID: ")
	userLine, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading user ID: %w", err)
	}
	userID, err := strconv.Atoi(strings.TrimSpace(userLine))
	if err != nil {
		return fmt.Errorf("user ID must be a number: %w", err)
	}

	fmt.Fprint(os.Stderr, "API token: ")
	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return fmt.Errorf("empty token")
	}

	client, err := opsapi.NewClient(opsapi.Config{
		BaseURL: configuration.BaseURL,
		Session: opsapi.Session{
			UserID: userID,
			Token:  token,
			APIKey: configuration.APIKey,
		},
	})
	if err != nil {
		return err
	}

	// Verify the credentials before persisting them.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.ListTickets(ctx, opsapi.TicketFilter{}); err != nil {
		if opsapi.IsUnauthorized(err) {
			return fmt.Errorf("backend rejected the credentials: %w", err)
		}
		return fmt.Errorf("verifying credentials: %w", err)
	}

	if err := config.SaveSession(config.Session{UserID: userID, Token: token}); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "login saved")
	return nil
}
