// Package gitctx drives the git repository a history scan runs against.
//
// Two backends implement [Repo]: [Git] shells out to the git binary, and
// [GoGit] uses go-git for hosts without one. [Open] picks a backend by name;
// "auto" prefers the git binary when it is on PATH.
//
// Every operation is synchronous. Checkout mutates the shared working tree,
// so callers must finish reading one commit's files before checking out the
// next.
package gitctx
