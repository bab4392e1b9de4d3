// Package cli holds the terminal-facing pieces of the readinglist command.
//
// Printer renders books as plain columns, JSON, YAML or a user-supplied
// template with sprig functions. RenderDetails draws key/value tables for
// auth status. RunWithSpinner wraps slow calls, and ReadlinePrompter asks
// for values the user left off the command line.
//
// BrowserNavigator carries out the redirects the dispatcher asks for, and
// CallbackServer receives the sign-in redirect during "auth login".
//
// Translate turns pipeline errors into AuthRequiredError, AuthExpiredError,
// AccessDeniedError, AuthFailedError or ConnectionError, which the root
// command maps to exit codes.
package cli
