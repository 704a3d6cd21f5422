// Package sanitize recovers bare source code from a raw model answer.
//
// Models asked for "only code" still wrap their output in markdown fences or
// open with a chat preamble such as "Here is the corrected code:". [Clean]
// removes those wrappers with an ordered list of [Steps]:
//
//  1. trim removes surrounding whitespace.
//  2. preamble drops one leading line that matches a known chat phrase.
//  3. fence drops the outermost opening and closing fence lines.
//
// The list is applied repeatedly until the text stops changing, so Clean is
// idempotent. Fences nested inside the code are left alone; only the
// outermost markers are removed on each pass, and a pass that uncovers a new
// outer fence removes that one too.
//
// The heuristic is approximate. A source file whose first line reads like a
// preamble ("The config:" with no comment marker) or whose last line is a
// bare fence is stripped as if the model had added it.
package sanitize
