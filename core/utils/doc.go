// Package utils provides small string helpers shared by the provider clients and
// the sync mappers: rune-safe truncation to column limits and blank-value defaults.
package utils
