// Package content describes the three public content collections of the
// site (projects, partners and certificates): their record types, how a
// JSON payload is validated and normalized into a record, how list
// requests are sorted, and how stored rich text is sanitized before it is
// served.
package content
