// Package scan lists the source files under a project root that are
// eligible for fixing: files whose extension is in an allow-set, outside
// any directory whose name is in a deny-set, and not matched by an
// exclude glob.
package scan
