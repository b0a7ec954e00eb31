// Package document defines the page Draft (a header slot, an ordered body and
// a footer slot) together with the operations that edit it. Every operation is
// copy-on-write: callers receive a new Draft and the input is never mutated,
// so a Draft value can be handed to a renderer or a persistence adapter while
// the editor keeps working on its own copy.
//
// Block properties are addressed with dot paths ("logo.text", "nav.0.href").
// A path patch rebuilds only the nested chain it names; sibling fields keep
// their identity. Typed property shapes for the built-in block types live in
// props.go and are checked by Decode at the persistence boundary.
package document
