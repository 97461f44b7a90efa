// Package normalisers converts knowledge files into plain text before
// they are chunked. Each normaliser handles a set of file extensions and
// is selected through the Registry.
package normalisers
