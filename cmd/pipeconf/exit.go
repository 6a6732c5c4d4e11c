package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"pipeconf"
)

// Exit codes, one per error kind, so scripts can branch on the failure
// class without parsing stderr.
const (
	exitOK          = 0
	exitFailure     = 1
	exitNotFound    = 2
	exitParse       = 3
	exitCycle       = 4
	exitNoMigration = 5
	exitValidation  = 6
)

func exitCode(err error) int {
	var (
		parseErr      *pipeconf.ParseError
		cycleErr      *pipeconf.CycleError
		migrationErr  *pipeconf.NoMigrationPathError
		validationErr *pipeconf.ValidationError
	)
	switch {
	case errors.Is(err, pipeconf.ErrNotFound), errors.Is(err, pipeconf.ErrUnknownBase):
		return exitNotFound
	case errors.As(err, &parseErr):
		return exitParse
	case errors.As(err, &cycleErr), errors.Is(err, pipeconf.ErrChainTooDeep):
		return exitCycle
	case errors.As(err, &migrationErr):
		return exitNoMigration
	case errors.As(err, &validationErr):
		return exitValidation
	}
	return exitFailure
}

func renderError(err error) string {
	var validationErr *pipeconf.ValidationError
	if errors.As(err, &validationErr) {
		return renderViolations(validationErr)
	}
	return "Error: " + err.Error()
}

func renderViolations(err *pipeconf.ValidationError) string {
	bold := color.New(color.Bold)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", err.Error())
	for _, v := range err.Violations {
		fmt.Fprintf(&sb, "  %s: %s\n", bold.Sprint(v.Path), v.Reason)
	}
	return strings.TrimRight(sb.String(), "\n")
}
