// Package dedup removes redundant property declarations from stylesheet
// rules.
//
// For every rule only the declaration the browser cascade would use is
// kept for each property name: the last !important declaration when there
// is one, otherwise the last declaration. Property names are compared
// ignoring ASCII case (custom properties exactly), vendor prefixed
// properties are tracked separately from their unprefixed counterparts. Rules left without declarations are
// removed unless Options.PreserveEmpty is set. Options.Selector restricts
// which rules are touched at all.
//
// The transform mutates the tree in place, it is synchronous and keeps no
// state between rules.
package dedup
