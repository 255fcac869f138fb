package config

//go:generate go tool go-enum --marshal --names --values

// Specification of how rule selector filter is interpreted.
// ENUM(none, substring, regexp)
type SelectorKind int

// How stylesheets found in archives are written out.
// ENUM(repack, extract)
type ArchiveMode int
