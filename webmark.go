// Package webmark discovers, fetches, and converts web pages into clean
// markdown. It maps the reachable URL set of a site via sitemaps and
// breadth-first link traversal, then crawls the result at bounded
// concurrency with content caching, resumable progress, and retry of
// transient fetch failures.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, rod/, goquery/, fs/).
package webmark
