// Package fuzztests houses Go fuzz harnesses that exercise the recipe
// parsing pipeline (source -> lexer -> parser -> analysis). Its goal is to
// smoke test robustness and guard against panics, hangs or allocator
// explosions on arbitrary inputs.
//
// The harnesses build the parsing pipeline once with every language
// extension enabled and the bundled unit converter, then feed it
// engine-mutated byte sequences. Parse results are discarded; only
// crash/hang freedom and output determinism are checked. Only this one
// configuration is fuzzed; the cross-product of extension flags is not.
//
// Does not: generate corpora, write files, or run the CLI.
package fuzztests
