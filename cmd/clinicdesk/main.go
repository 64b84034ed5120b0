// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Command clinicdesk is the terminal client for the clinic ops
// backend. Run without arguments it opens the interactive ticket
// board; "clinicdesk login" stores the credentials the board uses.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/clinicdesk/clinicdesk/lib/boardui"
	"github.com/clinicdesk/clinicdesk/lib/config"
	"github.com/clinicdesk/clinicdesk/lib/lifecycle"
	"github.com/clinicdesk/clinicdesk/lib/opsapi"
	"github.com/clinicdesk/clinicdesk/lib/remotesearch"
	"github.com/clinicdesk/clinicdesk/lib/ticket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "login" {
		return runLogin(args[1:])
	}
	return runBoard(args)
}

// runBoard opens the interactive board TUI.
func runBoard(args []string) error {
	flagSet := pflag.NewFlagSet("clinicdesk", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to config file (default: $CLINICDESK_CONFIG)")
	statusFilter := flagSet.String("status", "", "server-side status filter (pending, in_progress, completed)")
	priorityFilter := flagSet.String("priority", "", "server-side priority filter (low, high, urgent)")
	categoryFilter := flagSet.String("category", "", "server-side category filter")
	logOutput := flagSet.String("log-output", "", "write JSON log records to this file")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if err := config.LoadDotenv(); err != nil {
		return err
	}
	configuration, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	session, err := config.LoadSession()
	if err != nil {
		return err
	}

	if *logOutput == "" {
		*logOutput = configuration.LogFile
	}
	logger, closeLog, err := buildLogger(*logOutput)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := opsapi.NewClient(opsapi.Config{
		BaseURL: configuration.BaseURL,
		Session: opsapi.Session{
			UserID: session.UserID,
			Token:  session.Token,
			APIKey: configuration.APIKey,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	source := &clientSource{
		client: client,
		filter: opsapi.TicketFilter{
			Status:   *statusFilter,
			Priority: *priorityFilter,
			Category: *categoryFilter,
		},
	}
	machine := lifecycle.NewMachine(client, session.UserID, logger)

	model := boardui.NewModel(boardui.Options{
		Source:          source,
		Machine:         machine,
		RefreshInterval: configuration.RefreshInterval(),
		Logger:          logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = program.Run()
	return err
}

// buildLogger returns a JSON file logger, or a discard logger when no
// path is configured. Logging to stderr would corrupt the alt screen.
func buildLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	logger := slog.New(slog.NewJSONHandler(file, nil))
	return logger, func() { file.Close() }, nil
}

// clientSource adapts the ops API client to the board's Source
// interface, baking in the server-side listing filter.
type clientSource struct {
	client *opsapi.Client
	filter opsapi.TicketFilter
}

func (source *clientSource) Tickets(ctx context.Context) ([]ticket.Ticket, error) {
	return source.client.ListTickets(ctx, source.filter)
}

func (source *clientSource) SearchTeam(ctx context.Context, query string) ([]remotesearch.Candidate, error) {
	return source.client.SearchTeam(ctx, query)
}

func (source *clientSource) AssignTicket(ctx context.Context, ticketID int, userIDs []int, updatedBy int) error {
	return source.client.AssignTicket(ctx, ticketID, userIDs, updatedBy)
}
