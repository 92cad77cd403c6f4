// Package pull holds the pieces shared by the sync and async sequence
// engines: the tagged pull result, reduction seeds with an explicit presence
// flag, and limit coercion for Take and Drop.
//
// A pull either yields an element or reports exhaustion together with the
// sequence's final value:
//
//	r := pull.Yield(42)          // {Value: 42}
//	r = pull.Exhausted[int]("ok") // {Done: true, Final: "ok"}
//
// A final value is carried through every stage untouched. It is nil when the
// producer has none.
package pull
