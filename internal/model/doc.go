// Package model defines the shared record types for the Remote ID serial
// cache: exact serial records, serial range records, the lookup result
// envelope, and the classifier that splits raw registry serial values into
// exact and range forms.
//
// Records move between the registry client (parse), the store (persist),
// and the resolver (read) without translation, so the field set here is the
// single source of truth for what a compliance record carries.
package model
