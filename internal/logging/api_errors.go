// Copyright (c) 2025 MyBlog
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pterm/pterm"
)

// APIErrorType represents the category of an API error response
type APIErrorType int

const (
	APIErrorUnknown APIErrorType = iota
	APIErrorValidation
	APIErrorAuth
	APIErrorForbidden
	APIErrorNotFound
	APIErrorServer
)

// ParseAPIError categorizes an API error by status code
func ParseAPIError(status int) APIErrorType {
	switch {
	case status == http.StatusBadRequest:
		return APIErrorValidation
	case status == http.StatusUnauthorized:
		return APIErrorAuth
	case status == http.StatusForbidden:
		return APIErrorForbidden
	case status == http.StatusNotFound:
		return APIErrorNotFound
	case status >= 500:
		return APIErrorServer
	}
	return APIErrorUnknown
}

// FormatAPIError formats an API error response in a user-friendly way
func FormatAPIError(status int, detail string) string {
	errType := ParseAPIError(status)

	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Request Failed"))
	builder.WriteString("\n\n")

	switch errType {
	case APIErrorValidation:
		builder.WriteString("The blog rejected the request.\n")
	case APIErrorAuth:
		builder.WriteString("The blog did not accept your credentials.\n")
		builder.WriteString("This usually happens when:\n")
		builder.WriteString("  • The username or password is wrong\n")
		builder.WriteString("  • Your token has expired\n")
	case APIErrorForbidden:
		builder.WriteString("You are not allowed to do that.\n")
		builder.WriteString("Only the author of a post can edit or delete it.\n")
	case APIErrorNotFound:
		builder.WriteString("The blog could not find what you asked for.\n")
	case APIErrorServer:
		builder.WriteString("The blog server encountered an internal error.\n")
		builder.WriteString("This is not a problem with your setup. Please try again later.\n")
	default:
		builder.WriteString(fmt.Sprintf("The blog answered with status %d.\n", status))
	}

	builder.WriteString("\n")

	if errType == APIErrorAuth {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please run 'myblog login' and try again"))
		builder.WriteString("\n")
	}

	if strings.TrimSpace(detail) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Details: " + Mask(detail)))
	}

	return builder.String()
}

// PresentAPIError displays a formatted API error
func PresentAPIError(status int, detail string) {
	fmt.Println()
	fmt.Println(FormatAPIError(status, detail))
	fmt.Println()
}
