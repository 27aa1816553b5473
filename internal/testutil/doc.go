// Package testutil contains helper builders and test doubles used across
// tests to reduce boilerplate when constructing workflow states and agent
// rosters. These helpers are intentionally minimal and are not intended for
// production usage.
package testutil
