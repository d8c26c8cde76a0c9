// Package directory defines the external directory and calendar provider consumed
// by the sync engine.
//
// The Provider interface has three operations: list every user, list the events of
// one user and a cheap check answering whether a user has any event at all. Two
// implementations live in sub-packages:
//
//   - graph: Microsoft Graph SDK with an Azure client-secret credential.
//   - google: Google Workspace (Admin SDK directory + Calendar API) with domain-wide delegation.
//
// Provider clients are built once at startup (see cmd) and passed explicitly to
// the services that need them.
package directory
