// Package ast holds the cooklang parse tree.
//
// The tree stays close to the source: every node carries the span it was
// parsed from, text keeps its original fragments (including soft breaks
// from multiline steps), and quantities keep their scalable form. The
// analysis pass turns this into the cooked recipe model.
package ast
