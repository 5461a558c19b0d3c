package core

// Error codes shown to users, grouped by category. Users quote the code to
// support; support looks it up here.
//
//	DB001   database unreachable
//	DB002   connection interrupted
//	DB003   query timed out
//	DB004   table behind the page missing
//	QRY001  date filter not in yyyy/MM/dd form
//	QRY002  stored record is not valid JSON
//	PAG001  cursor no longer valid
//	PAG002  no next page
//	PAG003  no previous page
//	EXP001  spreadsheet could not be produced
//	EXP002  too many exports in progress
//	TBL001  page not configured
//	TBL002  column toggle names no column of the page
//	TBL003  column toggle is not true or false
//	RATE001 too many requests
//	ERR000  anything else

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/fulfillment/internal/grid"
)

// UserMessage is what an end user sees for a failed operation.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

var (
	msgConnRefused   = UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB001"}
	msgConnReset     = UserMessage{"Database connection was interrupted", "Please try again", "DB002"}
	msgTimeout       = UserMessage{"The query took too long", "Narrow the date range or try again later", "DB003"}
	msgMissingTable  = UserMessage{"The data behind this page is unavailable", "Contact support", "DB004"}
	msgInvalidDate   = UserMessage{"Invalid date filter", "Use the YYYY/MM/DD format", "QRY001"}
	msgDecode        = UserMessage{"A stored record could not be read", "Contact support with the page you were viewing", "QRY002"}
	msgInvalidCursor = UserMessage{"The page link is no longer valid", "Return to the first page and try again", "PAG001"}
	msgNextDisabled  = UserMessage{"There is no next page", "You are already on the last page", "PAG002"}
	msgPrevDisabled  = UserMessage{"There is no previous page", "You are already on the first page", "PAG003"}
	msgExportFailed  = UserMessage{"Export failed", "Please try again", "EXP001"}
	msgExportBusy    = UserMessage{"Too many exports in progress", "Please wait a moment and try again", "EXP002"}
	msgUnknownPage   = UserMessage{"Page not found", "Pick a page from the navigation", "TBL001"}
	msgUnknownColumn = UserMessage{"Column not found", "Reload the page to refresh the column list", "TBL002"}
	msgBadToggle     = UserMessage{"Invalid column setting", "Reload the page and try again", "TBL003"}
	msgRateLimited   = UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}
	msgUnknown       = UserMessage{"An unexpected error occurred", "Please try again or contact support", "ERR000"}
)

// sentinels are matched with errors.Is before any text matching.
var sentinels = []struct {
	target error
	msg    UserMessage
}{
	{ErrInvalidCursor, msgInvalidCursor},
	{grid.ErrNextDisabled, msgNextDisabled},
	{grid.ErrPreviousDisabled, msgPrevDisabled},
	{grid.ErrInvalidDate, msgInvalidDate},
	{ErrTooManyExports, msgExportBusy},
	{ErrUnknownPage, msgUnknownPage},
	{context.DeadlineExceeded, msgTimeout},
	{syscall.ECONNREFUSED, msgConnRefused},
	{syscall.ECONNRESET, msgConnReset},
}

// patterns cover errors that arrive as text only: callers outside this
// package and driver messages. Lowercase; first match wins.
var patterns = []struct {
	substr string
	msg    UserMessage
}{
	{"invalid cursor", msgInvalidCursor},
	{"decode record", msgDecode},
	{"export:", msgExportFailed},
	{"unknown column", msgUnknownColumn},
	{"invalid column visibility", msgBadToggle},
	{"rate limit", msgRateLimited},
	{"connection refused", msgConnRefused},
	{"connection reset", msgConnReset},
	{"deadline exceeded", msgTimeout},
	{"timeout", msgTimeout},
	{"does not exist", msgMissingTable},
}

// MapError converts a technical error to the message shown to users. Known
// sentinels win over PostgreSQL error codes, which win over substring
// matches on the error text. Unmatched errors get ERR000; nil gets the zero
// UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinels {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "3F000": // undefined_table, invalid_schema_name
			return msgMissingTable
		case "57014": // query_canceled, raised by statement_timeout
			return msgTimeout
		}
	}

	text := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(text, p.substr) {
			return p.msg
		}
	}
	return msgUnknown
}

// FormatUserError renders err as "Message (Code: XXX). Action", or "" for nil.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != msgUnknown.Code
}
