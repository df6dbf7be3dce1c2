// Package dump converts plugins to and from a structural document that can
// be written as YAML or CBOR, edited, and reloaded.
//
// A document mirrors the plugin tree one to one. Payloads and labels keep
// the state they had when dumped: unresolved values are stored as bytes,
// resolved ones as fields, components, and typed labels. Reloading a dump
// and encoding it reproduces the original wire bytes, except that resolved
// compressed records are re-compressed.
//
//	p, _ := esx.ReadFile("Skyrim.esm")
//	p.Process()
//	_ = dump.WriteFile("Skyrim.yaml", dump.FromPlugin(p))
package dump
