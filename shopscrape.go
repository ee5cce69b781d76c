// Package shopscrape extracts structured product records from paginated
// e-commerce search listings and their linked detail pages.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package shopscrape
