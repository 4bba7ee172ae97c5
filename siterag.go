// Package siterag provides retrieval-augmented question answering over a
// single organization's website. It crawls the site, extracts visible text,
// chunks and embeds it into a persistent vector index, and answers questions
// by retrieving the nearest chunks and forwarding them to a language model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, ollama/).
package siterag
